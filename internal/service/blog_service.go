package service

import (
	"context"
	"strings"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/repository"

	"go.uber.org/zap"
)

const (
	relatedPostCount  = 3
	featuredPostCount = 5
	popularPostCount  = 5
)

type BlogQuery struct {
	CategorySlug string
	TagSlug      string
	Featured     *bool
	Search       string
	Ordering     string
	Limit        int
	Offset       int
}

type BlogInput struct {
	Title           string
	Slug            string
	Excerpt         string
	Content         string
	FeaturedImage   string
	Status          models.BlogStatus
	IsFeatured      bool
	MetaDescription string
	CategoryIDs     []uint
	TagIDs          []uint
}

type BlogDetail struct {
	Post        *models.Blog
	ReadingTime int
	Related     []models.Blog
}

// ArchiveMonth counts published posts in one calendar month.
type ArchiveMonth struct {
	Month time.Time
	Count int
}

type BlogService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewBlogService(repo *repository.Repository, log *zap.Logger) *BlogService {
	return &BlogService{repo: repo, log: log}
}

func (s *BlogService) List(ctx context.Context, q BlogQuery) ([]models.Blog, int64, error) {
	if q.Limit <= 0 {
		q.Limit = repository.BlogPageSize
	}
	return s.repo.Blogs.List(ctx, repository.BlogListFilter{
		CategorySlug:  q.CategorySlug,
		TagSlug:       q.TagSlug,
		Featured:      q.Featured,
		Search:        q.Search,
		Ordering:      q.Ordering,
		IncludeDrafts: IsStaff(ctx),
		Limit:         q.Limit,
		Offset:        q.Offset,
	})
}

// GetBySlug counts a view and attaches up to three related posts: shared category first,
// then shared tag, then the most recent posts.
func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*BlogDetail, error) {
	b, err := s.repo.Blogs.GetBySlug(ctx, slug, !IsStaff(ctx))
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBlogNotFound
	}
	if err := s.repo.Blogs.IncrementViews(ctx, b.ID); err != nil {
		return nil, err
	}
	b.ViewCount++

	related, err := s.related(ctx, b)
	if err != nil {
		return nil, err
	}
	return &BlogDetail{Post: b, ReadingTime: b.ReadingTime(), Related: related}, nil
}

func (s *BlogService) related(ctx context.Context, b *models.Blog) ([]models.Blog, error) {
	out := make([]models.Blog, 0, relatedPostCount)
	exclude := []uint{b.ID}
	add := func(list []models.Blog) {
		for _, p := range list {
			out = append(out, p)
			exclude = append(exclude, p.ID)
		}
	}

	byCat, err := s.repo.Blogs.RelatedByCategories(ctx, b.CategoryIDs(), exclude, relatedPostCount)
	if err != nil {
		return nil, err
	}
	add(byCat)
	if len(out) < relatedPostCount {
		byTag, err := s.repo.Blogs.RelatedByTags(ctx, b.TagIDs(), exclude, relatedPostCount-len(out))
		if err != nil {
			return nil, err
		}
		add(byTag)
	}
	if len(out) < relatedPostCount {
		recent, err := s.repo.Blogs.Recent(ctx, exclude, relatedPostCount-len(out))
		if err != nil {
			return nil, err
		}
		add(recent)
	}
	return out, nil
}

func (s *BlogService) Featured(ctx context.Context) ([]models.Blog, error) {
	return s.repo.Blogs.Featured(ctx, featuredPostCount)
}

func (s *BlogService) SingleFeatured(ctx context.Context) (*models.Blog, error) {
	list, err := s.repo.Blogs.Featured(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNoFeaturedPost
	}
	return &list[0], nil
}

func (s *BlogService) Popular(ctx context.Context) ([]models.Blog, error) {
	return s.repo.Blogs.Popular(ctx, popularPostCount)
}

// Archive groups published posts by month, newest month first.
func (s *BlogService) Archive(ctx context.Context) ([]ArchiveMonth, error) {
	dates, err := s.repo.Blogs.PublishedDates(ctx)
	if err != nil {
		return nil, err
	}
	var out []ArchiveMonth
	for _, d := range dates {
		m := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
		if n := len(out); n > 0 && out[n-1].Month.Equal(m) {
			out[n-1].Count++
			continue
		}
		out = append(out, ArchiveMonth{Month: m, Count: 1})
	}
	return out, nil
}

func (s *BlogService) Categories(ctx context.Context) ([]models.BlogCategory, error) {
	return s.repo.BlogTaxonomy.ListCategories(ctx)
}

func (s *BlogService) Tags(ctx context.Context) ([]models.BlogTag, error) {
	return s.repo.BlogTaxonomy.ListTags(ctx)
}

func (s *BlogService) Category(ctx context.Context, slug string) (*models.BlogCategory, error) {
	c, err := s.repo.BlogTaxonomy.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

func (s *BlogService) Tag(ctx context.Context, slug string) (*models.BlogTag, error) {
	t, err := s.repo.BlogTaxonomy.GetTagBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTagNotFound
	}
	return t, nil
}

func (s *BlogService) CreateCategory(ctx context.Context, name, description string) (*models.BlogCategory, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Msg: "category name is required", Fields: []string{"name"}}
	}
	c := &models.BlogCategory{Name: name, Description: strings.TrimSpace(description)}
	if err := s.repo.BlogTaxonomy.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *BlogService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := requireStaff(ctx); err != nil {
		return err
	}
	ok, err := s.repo.BlogTaxonomy.DeleteCategory(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *BlogService) CreateTag(ctx context.Context, name string) (*models.BlogTag, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Msg: "tag name is required", Fields: []string{"name"}}
	}
	t := &models.BlogTag{Name: name}
	if err := s.repo.BlogTaxonomy.CreateTag(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *BlogService) DeleteTag(ctx context.Context, id uint) error {
	if _, err := requireStaff(ctx); err != nil {
		return err
	}
	ok, err := s.repo.BlogTaxonomy.DeleteTag(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTagNotFound
	}
	return nil
}

func (s *BlogService) validate(ctx context.Context, in *BlogInput) ([]models.BlogCategory, []models.BlogTag, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := missingFields("blog post is incomplete", map[string]string{
		"title":   in.Title,
		"content": in.Content,
	}, []string{"title", "content"}); err != nil {
		return nil, nil, err
	}
	if in.Status == "" {
		in.Status = models.BlogDraft
	}
	if in.Status != models.BlogDraft && in.Status != models.BlogPublished {
		return nil, nil, &ValidationError{Msg: "invalid blog post", Fields: []string{"status"}}
	}
	if len([]rune(in.MetaDescription)) > models.MetaDescriptionMaxLen {
		return nil, nil, &ValidationError{Msg: "invalid blog post", Fields: []string{"meta_description"}}
	}

	cats, err := s.repo.BlogTaxonomy.CategoriesByIDs(ctx, in.CategoryIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(cats) != len(uniqueIDs(in.CategoryIDs)) {
		return nil, nil, &ValidationError{Msg: "unknown blog category", Fields: []string{"category_ids"}}
	}
	tags, err := s.repo.BlogTaxonomy.TagsByIDs(ctx, in.TagIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(tags) != len(uniqueIDs(in.TagIDs)) {
		return nil, nil, &ValidationError{Msg: "unknown blog tag", Fields: []string{"tag_ids"}}
	}
	return cats, tags, nil
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func fillBlog(b *models.Blog, in BlogInput, cats []models.BlogCategory, tags []models.BlogTag) {
	b.Title = in.Title
	if slug := strings.TrimSpace(in.Slug); slug != "" {
		b.Slug = slug
	}
	b.Excerpt = in.Excerpt
	b.Content = in.Content
	b.FeaturedImage = in.FeaturedImage
	b.Status = in.Status
	b.IsFeatured = in.IsFeatured
	b.MetaDescription = in.MetaDescription
	b.Categories = cats
	b.Tags = tags
}

func (s *BlogService) Create(ctx context.Context, in BlogInput) (*models.Blog, error) {
	uid, err := requireStaff(ctx)
	if err != nil {
		return nil, err
	}
	cats, tags, err := s.validate(ctx, &in)
	if err != nil {
		return nil, err
	}
	b := &models.Blog{AuthorID: &uid}
	fillBlog(b, in, cats, tags)
	if err := s.repo.Blogs.Create(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info("blog post created", zap.Uint("id", b.ID), zap.String("slug", b.Slug))
	return b, nil
}

func (s *BlogService) Update(ctx context.Context, id uint, in BlogInput) (*models.Blog, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	b, err := s.repo.Blogs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBlogNotFound
	}
	cats, tags, err := s.validate(ctx, &in)
	if err != nil {
		return nil, err
	}
	fillBlog(b, in, cats, tags)
	if err := s.repo.Blogs.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BlogService) Delete(ctx context.Context, id uint) error {
	if _, err := requireStaff(ctx); err != nil {
		return err
	}
	ok, err := s.repo.Blogs.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBlogNotFound
	}
	return nil
}
