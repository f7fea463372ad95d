package service

import (
	"context"
	"strings"
	"time"

	"atelier/internal/cache"
	"atelier/internal/models"
	"atelier/internal/repository"
	"atelier/internal/validation"
)

const (
	maxCommentLen  = 2000
	maxTagsPerPost = 10
)

// BlogService provides blog post, comment, and reaction logic.
type BlogService struct {
	blogRepo repository.BlogRepository
}

// BlogInput carries the writable fields of a post.
type BlogInput struct {
	Title        string
	Slug         string
	Summary      string
	Content      string
	CoverURL     string
	Published    bool
	CategorySlug string
	Tags         []string
}

// NewBlogService returns a new BlogService.
func NewBlogService(blogRepo repository.BlogRepository) *BlogService {
	return &BlogService{blogRepo: blogRepo}
}

// CreateBlog creates a post. An empty slug is derived from the title.
func (s *BlogService) CreateBlog(ctx context.Context, authorID uint, in BlogInput) (*models.Blog, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}

	slug := in.Slug
	if slug == "" {
		slug = validation.Slugify(in.Title)
	}
	if err := validation.ValidateSlug(slug); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	blog := &models.Blog{
		Title:     in.Title,
		Slug:      slug,
		Summary:   in.Summary,
		Content:   in.Content,
		CoverURL:  in.CoverURL,
		Published: in.Published,
		AuthorID:  authorID,
	}
	if in.Published {
		now := time.Now().UTC()
		blog.PublishedAt = &now
	}

	if err := s.resolveCategory(ctx, blog, in.CategorySlug); err != nil {
		return nil, err
	}
	if err := s.blogRepo.Create(ctx, blog); err != nil {
		return nil, err
	}
	if err := s.applyTags(ctx, blog, in.Tags); err != nil {
		return nil, err
	}
	return s.blogRepo.GetByID(ctx, blog.ID)
}

// UpdateBlog replaces the writable fields of a post.
func (s *BlogService) UpdateBlog(ctx context.Context, id uint, in BlogInput) (*models.Blog, error) {
	blog, err := s.blogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		blog.Title = in.Title
	}
	if in.Slug != "" && in.Slug != blog.Slug {
		if err := validation.ValidateSlug(in.Slug); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		blog.Slug = in.Slug
	}
	if in.Summary != "" {
		blog.Summary = in.Summary
	}
	if in.Content != "" {
		blog.Content = in.Content
	}
	if in.CoverURL != "" {
		blog.CoverURL = in.CoverURL
	}
	if in.Published && !blog.Published {
		now := time.Now().UTC()
		blog.PublishedAt = &now
	}
	blog.Published = in.Published

	if err := s.resolveCategory(ctx, blog, in.CategorySlug); err != nil {
		return nil, err
	}
	if err := s.blogRepo.Update(ctx, blog); err != nil {
		return nil, err
	}
	if in.Tags != nil {
		if err := s.applyTags(ctx, blog, in.Tags); err != nil {
			return nil, err
		}
	}
	return s.blogRepo.GetByID(ctx, blog.ID)
}

func (s *BlogService) DeleteBlog(ctx context.Context, id uint) error {
	return s.blogRepo.Delete(ctx, id)
}

// GetBlog returns a post by slug. Unpublished posts are hidden unless the
// caller is an admin. A public read counts as a view; the cached copy may
// lag on view count until the next invalidation.
func (s *BlogService) GetBlog(ctx context.Context, slug string, admin bool) (*models.Blog, error) {
	var blog models.Blog
	var err error

	if admin {
		var b *models.Blog
		b, err = s.blogRepo.GetBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		blog = *b
	} else {
		err = cache.Aside(ctx, cache.BlogKey(slug), &blog, cache.BlogTTL, func() error {
			b, ferr := s.blogRepo.GetBySlug(ctx, slug)
			if ferr != nil {
				return ferr
			}
			blog = *b
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if !blog.Published && !admin {
		return nil, models.NewNotFoundError("Blog", slug)
	}

	if !admin {
		if err := s.blogRepo.IncrementViews(ctx, blog.ID); err == nil {
			blog.ViewCount++
		}
	}

	counts, err := s.blogRepo.ReactionCounts(ctx, blog.ID)
	if err != nil {
		return nil, err
	}
	blog.ReactionCounts = counts
	return &blog, nil
}

// ListBlogs returns a page of posts. Non-admin callers only see published
// posts regardless of the filter.
func (s *BlogService) ListBlogs(ctx context.Context, filter repository.BlogFilter, admin bool, limit, offset int) ([]models.Blog, int64, error) {
	if !admin {
		filter.PublishedOnly = true
	}
	return s.blogRepo.List(ctx, filter, limit, offset)
}

// AddComment attaches a comment to a published post.
func (s *BlogService) AddComment(ctx context.Context, blogID, userID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	blog, err := s.blogRepo.GetByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if !blog.Published {
		return nil, models.NewNotFoundError("Blog", blogID)
	}

	comment := &models.Comment{BlogID: blog.ID, UserID: userID, Content: content}
	if err := s.blogRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// UpdateComment edits a comment's content. Only the comment's author or an
// admin may edit it.
func (s *BlogService) UpdateComment(ctx context.Context, commentID, actorID uint, admin bool, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	comment, err := s.blogRepo.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actorID && !admin {
		return nil, models.NewForbiddenError("You cannot edit this comment")
	}

	comment.Content = content
	if err := s.blogRepo.UpdateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment. Only the comment's author or an admin
// may delete it.
func (s *BlogService) DeleteComment(ctx context.Context, commentID, actorID uint, admin bool) error {
	comment, err := s.blogRepo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actorID && !admin {
		return models.NewForbiddenError("You cannot delete this comment")
	}
	return s.blogRepo.DeleteComment(ctx, commentID)
}

func (s *BlogService) ListComments(ctx context.Context, blogID uint, limit, offset int) ([]models.Comment, error) {
	blog, err := s.blogRepo.GetByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if !blog.Published {
		return nil, models.NewNotFoundError("Blog", blogID)
	}
	return s.blogRepo.ListComments(ctx, blog.ID, limit, offset)
}

// React records the caller's reaction, replacing any previous one.
func (s *BlogService) React(ctx context.Context, blogID, userID uint, reactionType string) (map[string]int64, error) {
	switch reactionType {
	case models.ReactionLike, models.ReactionLove, models.ReactionInsight:
	default:
		return nil, models.NewValidationError("Unknown reaction type")
	}

	blog, err := s.blogRepo.GetByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if !blog.Published {
		return nil, models.NewNotFoundError("Blog", blogID)
	}

	reaction := &models.Reaction{BlogID: blog.ID, UserID: userID, Type: reactionType}
	if err := s.blogRepo.UpsertReaction(ctx, reaction); err != nil {
		return nil, err
	}
	return s.blogRepo.ReactionCounts(ctx, blog.ID)
}

// Unreact removes the caller's reaction if present.
func (s *BlogService) Unreact(ctx context.Context, blogID, userID uint) (map[string]int64, error) {
	blog, err := s.blogRepo.GetByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if err := s.blogRepo.DeleteReaction(ctx, blog.ID, userID); err != nil {
		return nil, err
	}
	return s.blogRepo.ReactionCounts(ctx, blog.ID)
}

func (s *BlogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.blogRepo.ListTags(ctx)
}

func (s *BlogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.blogRepo.ListCategories(ctx)
}

// CreateCategory adds a category. An empty slug is derived from the name.
func (s *BlogService) CreateCategory(ctx context.Context, name, slug string) (*models.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, models.NewValidationError("Category name is required")
	}
	if slug == "" {
		slug = validation.Slugify(name)
	}
	if err := validation.ValidateSlug(slug); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	category := &models.Category{Name: name, Slug: slug}
	if err := s.blogRepo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// CreateTag adds a tag explicitly. Tags also come into existence when posts
// use them, so an existing slug returns the existing tag instead of a conflict.
func (s *BlogService) CreateTag(ctx context.Context, name, slug string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("Tag name is required")
	}
	if slug == "" {
		slug = validation.Slugify(name)
	}
	if err := validation.ValidateSlug(slug); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return s.blogRepo.GetOrCreateTag(ctx, name, slug)
}

func (s *BlogService) resolveCategory(ctx context.Context, blog *models.Blog, categorySlug string) error {
	if categorySlug == "" {
		return nil
	}
	category, err := s.blogRepo.GetCategoryBySlug(ctx, categorySlug)
	if err != nil {
		return err
	}
	blog.CategoryID = &category.ID
	return nil
}

func (s *BlogService) applyTags(ctx context.Context, blog *models.Blog, names []string) error {
	if names == nil {
		return nil
	}
	if len(names) > maxTagsPerPost {
		return models.NewValidationError("Too many tags (max 10)")
	}

	tags := make([]models.Tag, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		slug := validation.Slugify(name)
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}

		tag, err := s.blogRepo.GetOrCreateTag(ctx, name, slug)
		if err != nil {
			return err
		}
		tags = append(tags, *tag)
	}
	return s.blogRepo.ReplaceTags(ctx, blog, tags)
}
