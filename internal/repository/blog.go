package repository

import (
	"context"
	"errors"

	"atelier/internal/cache"
	"atelier/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlogFilter narrows blog listings. Zero values mean "no filter".
type BlogFilter struct {
	PublishedOnly bool
	CategorySlug  string
	TagSlug       string
	Search        string
}

// BlogRepository defines persistence operations for blog posts and their
// comments, reactions, tags, and categories.
type BlogRepository interface {
	Create(ctx context.Context, blog *models.Blog) error
	GetBySlug(ctx context.Context, slug string) (*models.Blog, error)
	GetByID(ctx context.Context, id uint) (*models.Blog, error)
	Update(ctx context.Context, blog *models.Blog) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter BlogFilter, limit, offset int) ([]models.Blog, int64, error)
	IncrementViews(ctx context.Context, id uint) error

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id uint) (*models.Comment, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id uint) error
	ListComments(ctx context.Context, blogID uint, limit, offset int) ([]models.Comment, error)

	UpsertReaction(ctx context.Context, reaction *models.Reaction) error
	DeleteReaction(ctx context.Context, blogID, userID uint) error
	ReactionCounts(ctx context.Context, blogID uint) (map[string]int64, error)

	ListTags(ctx context.Context) ([]models.Tag, error)
	GetOrCreateTag(ctx context.Context, name, slug string) (*models.Tag, error)
	ReplaceTags(ctx context.Context, blog *models.Blog, tags []models.Tag) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
}

type blogRepository struct {
	db *gorm.DB
}

// NewBlogRepository returns a new BlogRepository implementation.
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) Create(ctx context.Context, blog *models.Blog) error {
	if err := r.db.WithContext(ctx).Create(blog).Error; err != nil {
		if models.IsUniqueViolation(err) {
			return models.NewConflictError("A post with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blogRepository) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	var blog models.Blog
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Where("slug = ?", slug).
		First(&blog).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Blog", slug)
		}
		return nil, models.NewInternalError(err)
	}
	return &blog, nil
}

func (r *blogRepository) GetByID(ctx context.Context, id uint) (*models.Blog, error) {
	var blog models.Blog
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Blog", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &blog, nil
}

func (r *blogRepository) Update(ctx context.Context, blog *models.Blog) error {
	// Capture the stored slug first: a rename must evict the copy cached
	// under the old slug, not just the new one.
	var prev models.Blog
	if err := r.db.WithContext(ctx).Select("slug").First(&prev, blog.ID).Error; err != nil &&
		!errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewInternalError(err)
	}

	if err := r.db.WithContext(ctx).Save(blog).Error; err != nil {
		if models.IsUniqueViolation(err) {
			return models.NewConflictError("A post with this slug already exists")
		}
		return models.NewInternalError(err)
	}

	cache.InvalidateBlog(ctx, blog.Slug)
	if prev.Slug != "" && prev.Slug != blog.Slug {
		cache.InvalidateBlog(ctx, prev.Slug)
	}
	return nil
}

func (r *blogRepository) Delete(ctx context.Context, id uint) error {
	blog, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Blog{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBlog(ctx, blog.Slug)
	return nil
}

func (r *blogRepository) List(ctx context.Context, filter BlogFilter, limit, offset int) ([]models.Blog, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Blog{})

	if filter.PublishedOnly {
		q = q.Where("blogs.published = ?", true)
	}
	if filter.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = blogs.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.TagSlug != "" {
		q = q.Joins("JOIN blog_tags ON blog_tags.blog_id = blogs.id").
			Joins("JOIN tags ON tags.id = blog_tags.tag_id").
			Where("tags.slug = ?", filter.TagSlug)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("blogs.title LIKE ? OR blogs.summary LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var blogs []models.Blog
	if err := q.
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Order("blogs.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&blogs).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return blogs, total, nil
}

func (r *blogRepository) IncrementViews(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Model(&models.Blog{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blogRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blogRepository) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *blogRepository) UpdateComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blogRepository) DeleteComment(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blogRepository) ListComments(ctx context.Context, blogID uint, limit, offset int) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Where("blog_id = ?", blogID).
		Preload("User").
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// UpsertReaction keeps at most one reaction per user per post. Re-reacting
// with a different type overwrites the old one in place.
func (r *blogRepository) UpsertReaction(ctx context.Context, reaction *models.Reaction) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "blog_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"type", "created_at"}),
		}).
		Create(reaction).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blogRepository) DeleteReaction(ctx context.Context, blogID, userID uint) error {
	if err := r.db.WithContext(ctx).
		Where("blog_id = ? AND user_id = ?", blogID, userID).
		Delete(&models.Reaction{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blogRepository) ReactionCounts(ctx context.Context, blogID uint) (map[string]int64, error) {
	type row struct {
		Type  string
		Count int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Select("type, COUNT(*) as count").
		Where("blog_id = ?", blogID).
		Group("type").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Type] = rw.Count
	}
	return counts, nil
}

func (r *blogRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *blogRepository) GetOrCreateTag(ctx context.Context, name, slug string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}

	tag = models.Tag{Name: name, Slug: slug}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&tag).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if tag.ID == 0 {
		if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&tag).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	return &tag, nil
}

func (r *blogRepository) ReplaceTags(ctx context.Context, blog *models.Blog, tags []models.Tag) error {
	if err := r.db.WithContext(ctx).Model(blog).Association("Tags").Replace(tags); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blogRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

func (r *blogRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if models.IsUniqueViolation(err) {
			return models.NewConflictError("A category with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blogRepository) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Category", slug)
		}
		return nil, models.NewInternalError(err)
	}
	return &category, nil
}
