package seed

import (
	"fmt"
	"log"

	"atelier/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInCategory is a permanent blog category created on every seed run.
type BuiltInCategory struct {
	Name string
	Slug string
}

// BuiltInCategories defines the permanent blog categories.
var BuiltInCategories = []BuiltInCategory{
	{Name: "Engineering", Slug: "engineering"},
	{Name: "Career", Slug: "career"},
	{Name: "Open Source", Slug: "open-source"},
	{Name: "Tooling", Slug: "tooling"},
	{Name: "Notes", Slug: "notes"},
}

var builtInTags = []string{
	"go", "postgres", "redis", "docker", "kubernetes",
	"testing", "performance", "security", "frontend", "devlog",
}

var skillGroups = map[string][]string{
	"Languages": {"Go", "TypeScript", "SQL", "Python"},
	"Backend":   {"PostgreSQL", "Redis", "RabbitMQ", "gRPC"},
	"Infra":     {"Docker", "Kubernetes", "Terraform", "AWS"},
}

// Seeder orchestrates seeding presets against a database.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder with default factory options.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, SeedOptions{})}
}

// NewSeederWithOptions creates a Seeder with explicit factory options.
func NewSeederWithOptions(db *gorm.DB, opts SeedOptions) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// Factory exposes the underlying factory for callers that need one-off
// entities on top of a preset.
func (s *Seeder) Factory() *Factory {
	return s.factory
}

// ClearAll truncates all seeded tables. PostgreSQL only.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE
		reactions, comments, blog_tags, blogs, tags, categories,
		direct_messages, conversations,
		projects, skills, experiences, educations, testimonials,
		contact_messages, users
	RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// Categories seeds the permanent blog categories, upserting by slug.
func Categories(db *gorm.DB) error {
	for _, item := range BuiltInCategories {
		category := models.Category{Name: item.Name, Slug: item.Slug}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).Create(&category).Error
		if err != nil {
			return fmt.Errorf("seed category %q: %w", item.Slug, err)
		}
	}
	return nil
}

// SeedUsers creates the site owner plus a population of regular users.
// The owner is always first and carries the admin role.
func (s *Seeder) SeedUsers(count int) (owner *models.User, users []*models.User, err error) {
	owner, err = s.factory.CreateUser(func(u *models.User) {
		u.Username = "owner"
		u.Email = "owner@example.com"
		u.Role = models.RoleAdmin
		u.Bio = "Site owner."
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create owner: %w", err)
	}

	users = make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			log.Printf("Failed to create user %d: %v", i, err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}
	log.Printf("✓ %d users created (plus owner)", len(users))
	return owner, users, nil
}

// SeedBlogs creates published and draft posts for the owner, with comments
// and reactions from the user population.
func (s *Seeder) SeedBlogs(owner *models.User, users []*models.User, count int) ([]*models.Blog, error) {
	tags := make([]*models.Tag, 0, len(builtInTags))
	for _, name := range builtInTags {
		tag, err := s.factory.CreateTag(name)
		if err != nil {
			return nil, fmt.Errorf("create tag %q: %w", name, err)
		}
		tags = append(tags, tag)
	}

	var categories []models.Category
	if err := s.db.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	blogs := make([]*models.Blog, 0, count)
	for i := 0; i < count; i++ {
		draft := i%5 == 4 // every fifth post stays unpublished
		blog, err := s.factory.CreateBlog(owner, func(b *models.Blog) {
			if draft {
				b.Published = false
			}
			if len(categories) > 0 {
				id := categories[gofakeit.Number(0, len(categories)-1)].ID
				b.CategoryID = &id
			}
		})
		if err != nil {
			return nil, fmt.Errorf("create blog: %w", err)
		}

		// attach 1-3 tags
		if len(tags) > 0 {
			n := gofakeit.Number(1, 3)
			picked := make([]models.Tag, 0, n)
			for j := 0; j < n; j++ {
				picked = append(picked, *tags[gofakeit.Number(0, len(tags)-1)])
			}
			if err := s.db.Model(blog).Association("Tags").Replace(picked); err != nil {
				return nil, fmt.Errorf("attach tags: %w", err)
			}
		}

		if blog.Published && len(users) > 0 {
			for j := 0; j < gofakeit.Number(0, 5); j++ {
				commenter := users[gofakeit.Number(0, len(users)-1)]
				if _, err := s.factory.CreateComment(commenter, blog); err != nil {
					return nil, fmt.Errorf("create comment: %w", err)
				}
			}
			// reactions are unique per (blog, user); walk a shuffled prefix
			order := indexRange(len(users))
			gofakeit.ShuffleInts(order)
			limit := gofakeit.Number(0, 8)
			for j, idx := range order {
				if j >= limit {
					break
				}
				if err := s.factory.CreateReaction(users[idx], blog); err != nil {
					return nil, fmt.Errorf("create reaction: %w", err)
				}
			}
		}

		blogs = append(blogs, blog)
	}

	log.Printf("✓ %d blog posts created", len(blogs))
	return blogs, nil
}

// SeedPortfolio populates projects, skills, experiences, education, and
// testimonials with demo content.
func (s *Seeder) SeedPortfolio() error {
	for i := 0; i < 6; i++ {
		featured := i < 2
		if _, err := s.factory.CreateProject(func(p *models.Project) {
			p.Featured = featured
			p.SortOrder = i
		}); err != nil {
			return fmt.Errorf("create project: %w", err)
		}
	}

	for category, names := range skillGroups {
		for i, name := range names {
			if _, err := s.factory.CreateSkill(name, category, func(sk *models.Skill) {
				sk.SortOrder = i
			}); err != nil {
				return fmt.Errorf("create skill %q: %w", name, err)
			}
		}
	}

	for i := 0; i < 3; i++ {
		current := i == 0
		if _, err := s.factory.CreateExperience(func(e *models.Experience) {
			e.Current = current
		}); err != nil {
			return fmt.Errorf("create experience: %w", err)
		}
	}

	if _, err := s.factory.CreateEducation(); err != nil {
		return fmt.Errorf("create education: %w", err)
	}

	for i := 0; i < 4; i++ {
		approved := i < 3 // leave one pending for the admin inbox
		if _, err := s.factory.CreateTestimonial(func(t *models.Testimonial) {
			t.Approved = approved
		}); err != nil {
			return fmt.Errorf("create testimonial: %w", err)
		}
	}

	log.Println("✓ portfolio content created")
	return nil
}

// SeedConversations creates direct conversations between the owner and a
// sample of users, each with a short message history.
func (s *Seeder) SeedConversations(owner *models.User, users []*models.User, count int) error {
	if count > len(users) {
		count = len(users)
	}
	for i := 0; i < count; i++ {
		peer := users[i]
		conv, err := s.factory.CreateConversation(owner, peer)
		if err != nil {
			return fmt.Errorf("create conversation: %w", err)
		}
		for j := 0; j < gofakeit.Number(2, 8); j++ {
			sender := owner
			if j%2 == 0 {
				sender = peer
			}
			if _, err := s.factory.CreateDirectMessage(conv, sender); err != nil {
				return fmt.Errorf("create message: %w", err)
			}
		}
	}
	log.Printf("✓ %d conversations created", count)
	return nil
}

// SeedContactInbox creates a handful of contact messages, some unread.
func (s *Seeder) SeedContactInbox(count int) error {
	for i := 0; i < count; i++ {
		read := i%2 == 0
		if _, err := s.factory.CreateContactMessage(func(m *models.ContactMessage) {
			m.IsRead = read
		}); err != nil {
			return fmt.Errorf("create contact message: %w", err)
		}
	}
	log.Printf("✓ %d contact messages created", count)
	return nil
}

// ApplyPreset runs a named end-to-end seeding scenario.
func (s *Seeder) ApplyPreset(name string) error {
	switch name {
	case "Showcase":
		return s.showcase(10, 20)
	case "MegaPopulated":
		return s.showcase(200, 100)
	default:
		return fmt.Errorf("unknown preset: %s", name)
	}
}

func (s *Seeder) showcase(numUsers, numBlogs int) error {
	owner, users, err := s.SeedUsers(numUsers)
	if err != nil {
		return err
	}
	if err := Categories(s.db); err != nil {
		return err
	}
	if _, err := s.SeedBlogs(owner, users, numBlogs); err != nil {
		return err
	}
	if err := s.SeedPortfolio(); err != nil {
		return err
	}
	if err := s.SeedConversations(owner, users, numUsers/2); err != nil {
		return err
	}
	return s.SeedContactInbox(6)
}

func indexRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
