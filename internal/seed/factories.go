// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"atelier/internal/models"
	"atelier/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions controls factory behaviour across a seeding run.
type SeedOptions struct {
	// DryRun skips all DB writes and assigns synthetic IDs instead.
	DryRun bool
	// SkipBcrypt stores plaintext passwords. Dev fast mode only.
	SkipBcrypt bool
	// MaxDays bounds how far back generated created_at values spread.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Factory{db: db, opts: opts, rng: rng, nextID: 1000}
}

// pastTimestamp returns a created_at spread over the configured window.
func (f *Factory) pastTimestamp() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour -
		time.Duration(minsBack)*time.Minute)
}

func (f *Factory) persist(value any, kind string) error {
	if f.opts.DryRun {
		log.Printf("[dry-run] create %s (no DB write)", kind)
		return nil
	}
	return f.db.Create(value).Error
}

func (f *Factory) syntheticID() uint {
	f.nextID++
	return f.nextID
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:      gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:         gofakeit.Email(),
		Provider:      models.ProviderCredentials,
		Role:          models.RoleUser,
		EmailVerified: true,
		Bio:           gofakeit.Sentence(10),
		Avatar:        fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		CreatedAt:     f.pastTimestamp(),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		user.ID = f.syntheticID()
		log.Printf("[dry-run] CreateUser: %s <%s>", user.Username, user.Email)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateBlog constructs and persists a published blog post authored by the
// given user. Pass overrides to produce drafts or set category/tags.
func (f *Factory) CreateBlog(author *models.User, overrides ...func(*models.Blog)) (*models.Blog, error) {
	title := strings.TrimSuffix(gofakeit.Sentence(6), ".")
	createdAt := f.pastTimestamp()
	publishedAt := createdAt.Add(time.Duration(f.rng.Intn(48)) * time.Hour)

	blog := &models.Blog{
		Title:       title,
		Slug:        fmt.Sprintf("%s-%d", validation.Slugify(title), gofakeit.Number(100, 999)),
		Summary:     gofakeit.Sentence(14),
		Content:     gofakeit.Paragraph(3, 5, 8, "\n\n"),
		CoverURL:    fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", gofakeit.UUID()),
		Published:   true,
		PublishedAt: &publishedAt,
		ViewCount:   uint(f.rng.Intn(5000)),
		AuthorID:    author.ID,
		CreatedAt:   createdAt,
	}

	for _, override := range overrides {
		override(blog)
	}
	if !blog.Published {
		blog.PublishedAt = nil
	}

	if f.opts.DryRun {
		blog.ID = f.syntheticID()
		log.Printf("[dry-run] CreateBlog: author=%d slug=%q published=%v", blog.AuthorID, blog.Slug, blog.Published)
		return blog, nil
	}

	if err := f.db.Create(blog).Error; err != nil {
		return nil, err
	}
	return blog, nil
}

// CreateComment constructs and persists a comment on the provided blog
// authored by the provided user.
func (f *Factory) CreateComment(user *models.User, blog *models.Blog, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content:   gofakeit.Sentence(8),
		UserID:    user.ID,
		BlogID:    blog.ID,
		CreatedAt: f.pastTimestamp(),
	}

	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		comment.ID = f.syntheticID()
		return comment, nil
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateReaction persists a reaction from `user` on `blog`. The type is
// random unless overridden.
func (f *Factory) CreateReaction(user *models.User, blog *models.Blog, overrides ...func(*models.Reaction)) error {
	types := []string{models.ReactionLike, models.ReactionLove, models.ReactionInsight}
	reaction := &models.Reaction{
		UserID:    user.ID,
		BlogID:    blog.ID,
		Type:      types[f.rng.Intn(len(types))],
		CreatedAt: f.pastTimestamp(),
	}
	for _, override := range overrides {
		override(reaction)
	}
	return f.persist(reaction, "reaction")
}

// CreateCategory persists a blog category with a slug derived from the name.
func (f *Factory) CreateCategory(name string) (*models.Category, error) {
	category := &models.Category{
		Name: name,
		Slug: validation.Slugify(name),
	}
	if f.opts.DryRun {
		category.ID = f.syntheticID()
		return category, nil
	}
	if err := f.db.Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// CreateTag persists a blog tag with a slug derived from the name.
func (f *Factory) CreateTag(name string) (*models.Tag, error) {
	tag := &models.Tag{
		Name: name,
		Slug: validation.Slugify(name),
	}
	if f.opts.DryRun {
		tag.ID = f.syntheticID()
		return tag, nil
	}
	if err := f.db.Create(tag).Error; err != nil {
		return nil, err
	}
	return tag, nil
}

// CreateProject constructs and persists a portfolio project.
func (f *Factory) CreateProject(overrides ...func(*models.Project)) (*models.Project, error) {
	name := gofakeit.AppName()
	project := &models.Project{
		Title:       name,
		Slug:        fmt.Sprintf("%s-%d", validation.Slugify(name), gofakeit.Number(100, 999)),
		Description: gofakeit.Paragraph(1, 3, 6, "\n"),
		TechStack:   "Go, PostgreSQL, Redis",
		RepoURL:     fmt.Sprintf("https://github.com/%s/%s", gofakeit.Username(), validation.Slugify(name)),
		LiveURL:     gofakeit.URL(),
		ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%s/800/450", gofakeit.UUID()),
		Featured:    f.rng.Float32() < 0.3,
		SortOrder:   f.rng.Intn(20),
		CreatedAt:   f.pastTimestamp(),
	}

	for _, override := range overrides {
		override(project)
	}

	if f.opts.DryRun {
		project.ID = f.syntheticID()
		return project, nil
	}

	if err := f.db.Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// CreateSkill constructs and persists a skill entry.
func (f *Factory) CreateSkill(name, category string, overrides ...func(*models.Skill)) (*models.Skill, error) {
	skill := &models.Skill{
		Name:      name,
		Category:  category,
		Level:     50 + f.rng.Intn(51),
		SortOrder: f.rng.Intn(20),
	}
	for _, override := range overrides {
		override(skill)
	}
	if f.opts.DryRun {
		skill.ID = f.syntheticID()
		return skill, nil
	}
	if err := f.db.Create(skill).Error; err != nil {
		return nil, err
	}
	return skill, nil
}

// CreateExperience constructs and persists a work-history entry.
func (f *Factory) CreateExperience(overrides ...func(*models.Experience)) (*models.Experience, error) {
	start := time.Now().AddDate(-1-f.rng.Intn(6), -f.rng.Intn(12), 0)
	end := start.AddDate(1+f.rng.Intn(3), f.rng.Intn(12), 0)
	exp := &models.Experience{
		Company:     gofakeit.Company(),
		Title:       gofakeit.JobTitle(),
		Location:    fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.StateAbr()),
		StartDate:   start,
		EndDate:     &end,
		Description: gofakeit.Paragraph(1, 2, 8, "\n"),
	}
	for _, override := range overrides {
		override(exp)
	}
	if exp.Current {
		exp.EndDate = nil
	}
	if f.opts.DryRun {
		exp.ID = f.syntheticID()
		return exp, nil
	}
	if err := f.db.Create(exp).Error; err != nil {
		return nil, err
	}
	return exp, nil
}

// CreateEducation constructs and persists a study-history entry.
func (f *Factory) CreateEducation(overrides ...func(*models.Education)) (*models.Education, error) {
	startYear := time.Now().Year() - 4 - f.rng.Intn(10)
	edu := &models.Education{
		Institution: fmt.Sprintf("%s University", gofakeit.City()),
		Degree:      "B.Sc.",
		Field:       "Computer Science",
		StartYear:   startYear,
		EndYear:     startYear + 4,
		Description: gofakeit.Sentence(12),
	}
	for _, override := range overrides {
		override(edu)
	}
	if f.opts.DryRun {
		edu.ID = f.syntheticID()
		return edu, nil
	}
	if err := f.db.Create(edu).Error; err != nil {
		return nil, err
	}
	return edu, nil
}

// CreateTestimonial constructs and persists a testimonial. Generated
// testimonials are approved unless overridden.
func (f *Factory) CreateTestimonial(overrides ...func(*models.Testimonial)) (*models.Testimonial, error) {
	t := &models.Testimonial{
		AuthorName:  gofakeit.Name(),
		AuthorTitle: gofakeit.JobTitle(),
		Content:     gofakeit.Paragraph(1, 2, 10, " "),
		AvatarURL:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Approved:    true,
		CreatedAt:   f.pastTimestamp(),
	}
	for _, override := range overrides {
		override(t)
	}
	if f.opts.DryRun {
		t.ID = f.syntheticID()
		return t, nil
	}
	if err := f.db.Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// CreateConversation persists a direct conversation between two users. The
// pair is stored in canonical order to satisfy the uniqueness constraint.
func (f *Factory) CreateConversation(a, b *models.User) (*models.Conversation, error) {
	ua, ub := models.CanonicalPair(a.ID, b.ID)
	conv := &models.Conversation{
		UserAID:       ua,
		UserBID:       ub,
		LastMessageAt: f.pastTimestamp(),
	}
	if f.opts.DryRun {
		conv.ID = f.syntheticID()
		return conv, nil
	}
	if err := f.db.Create(conv).Error; err != nil {
		return nil, err
	}
	return conv, nil
}

// CreateDirectMessage constructs and persists a message in the provided
// conversation from the provided sender, then bumps last_message_at.
func (f *Factory) CreateDirectMessage(conversation *models.Conversation, sender *models.User, overrides ...func(*models.DirectMessage)) (*models.DirectMessage, error) {
	message := &models.DirectMessage{
		ConversationID: conversation.ID,
		SenderID:       sender.ID,
		Content:        gofakeit.Sentence(10),
		CreatedAt:      f.pastTimestamp(),
	}

	for _, override := range overrides {
		override(message)
	}

	if f.opts.DryRun {
		message.ID = f.syntheticID()
		return message, nil
	}

	if err := f.db.Create(message).Error; err != nil {
		return nil, err
	}
	if message.CreatedAt.After(conversation.LastMessageAt) {
		err := f.db.Model(&models.Conversation{}).
			Where("id = ?", conversation.ID).
			Update("last_message_at", message.CreatedAt).Error
		if err != nil {
			return nil, err
		}
		conversation.LastMessageAt = message.CreatedAt
	}
	return message, nil
}

// CreateContactMessage constructs and persists an inbound contact message.
func (f *Factory) CreateContactMessage(overrides ...func(*models.ContactMessage)) (*models.ContactMessage, error) {
	msg := &models.ContactMessage{
		Reference: gofakeit.UUID(),
		Name:      gofakeit.Name(),
		Email:     gofakeit.Email(),
		Subject:   strings.TrimSuffix(gofakeit.Sentence(4), "."),
		Message:   gofakeit.Paragraph(1, 2, 8, " "),
		CreatedAt: f.pastTimestamp(),
	}
	for _, override := range overrides {
		override(msg)
	}
	if f.opts.DryRun {
		msg.ID = f.syntheticID()
		return msg, nil
	}
	if err := f.db.Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}
