package handlers

import (
	"context"
	"net/http"

	"github.com/emrahsandernet/kasarcim/internal/dto"
	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BlogService interface {
	List(ctx context.Context, q service.BlogQuery) ([]models.Blog, int64, error)
	GetBySlug(ctx context.Context, slug string) (*service.BlogDetail, error)
	Featured(ctx context.Context) ([]models.Blog, error)
	SingleFeatured(ctx context.Context) (*models.Blog, error)
	Popular(ctx context.Context) ([]models.Blog, error)
	Archive(ctx context.Context) ([]service.ArchiveMonth, error)
	Categories(ctx context.Context) ([]models.BlogCategory, error)
	Tags(ctx context.Context) ([]models.BlogTag, error)
	Category(ctx context.Context, slug string) (*models.BlogCategory, error)
	Tag(ctx context.Context, slug string) (*models.BlogTag, error)
	CreateCategory(ctx context.Context, name, description string) (*models.BlogCategory, error)
	DeleteCategory(ctx context.Context, id uint) error
	CreateTag(ctx context.Context, name string) (*models.BlogTag, error)
	DeleteTag(ctx context.Context, id uint) error
	Create(ctx context.Context, in service.BlogInput) (*models.Blog, error)
	Update(ctx context.Context, id uint, in service.BlogInput) (*models.Blog, error)
	Delete(ctx context.Context, id uint) error
}

type BlogHandler struct {
	blog BlogService
	log  *zap.Logger
}

func NewBlogHandler(blog BlogService, log *zap.Logger) *BlogHandler {
	return &BlogHandler{blog: blog, log: log}
}

type blogListQuery struct {
	Category string `form:"category"`
	Tag      string `form:"tag"`
	Featured *bool  `form:"featured"`
	Search   string `form:"search"`
	Ordering string `form:"ordering"`
	pageQuery
}

// ListPosts godoc
// @Summary Published posts
// @Description Staff also see drafts.
// @Tags blog
// @Produce json
// @Param category query string false "Category slug"
// @Param tag query string false "Tag slug"
// @Param featured query bool false "Only featured posts"
// @Param search query string false "Search in title, excerpt and content"
// @Param ordering query string false "published_at, view_count, title with optional - prefix"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.Page[dto.BlogPostResponse]
// @Router /api/blog/posts [get]
func (h *BlogHandler) ListPosts(c *gin.Context) {
	var q blogListQuery
	if !bindQuery(c, h.log, &q) {
		return
	}
	items, total, err := h.blog.List(c.Request.Context(), service.BlogQuery{
		CategorySlug: q.Category,
		TagSlug:      q.Tag,
		Featured:     q.Featured,
		Search:       q.Search,
		Ordering:     q.Ordering,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(dto.NewBlogPosts(items), total))
}

// GetPost godoc
// @Summary A post with reading time and related posts
// @Description Counts one view.
// @Tags blog
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} dto.BlogDetailResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/blog/posts/{slug} [get]
func (h *BlogHandler) GetPost(c *gin.Context) {
	d, err := h.blog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBlogDetail(d))
}

// Featured godoc
// @Summary Featured posts
// @Tags blog
// @Produce json
// @Success 200 {array} dto.BlogPostResponse
// @Router /api/blog/posts/featured [get]
func (h *BlogHandler) Featured(c *gin.Context) {
	h.postList(c, h.blog.Featured)
}

// Popular godoc
// @Summary Most viewed posts
// @Tags blog
// @Produce json
// @Success 200 {array} dto.BlogPostResponse
// @Router /api/blog/posts/popular [get]
func (h *BlogHandler) Popular(c *gin.Context) {
	h.postList(c, h.blog.Popular)
}

func (h *BlogHandler) postList(c *gin.Context, fn func(context.Context) ([]models.Blog, error)) {
	items, err := fn(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBlogPosts(items))
}

// SingleFeatured godoc
// @Summary The latest featured post
// @Tags blog
// @Produce json
// @Success 200 {object} dto.BlogPostResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/blog/posts/featured-single [get]
func (h *BlogHandler) SingleFeatured(c *gin.Context) {
	b, err := h.blog.SingleFeatured(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBlogPost(b, false))
}

// Archive godoc
// @Summary Published post counts per month
// @Tags blog
// @Produce json
// @Success 200 {array} dto.ArchiveMonthResponse
// @Router /api/blog/posts/archive [get]
func (h *BlogHandler) Archive(c *gin.Context) {
	months, err := h.blog.Archive(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewArchive(months))
}

// Categories godoc
// @Summary Blog categories
// @Tags blog
// @Produce json
// @Success 200 {array} dto.BlogCategoryResponse
// @Router /api/blog/categories [get]
func (h *BlogHandler) Categories(c *gin.Context) {
	cats, err := h.blog.Categories(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBlogCategories(cats))
}

// Category godoc
// @Summary A blog category by slug
// @Tags blog
// @Produce json
// @Param slug path string true "Category slug"
// @Success 200 {object} dto.BlogCategoryResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/blog/categories/{slug} [get]
func (h *BlogHandler) Category(c *gin.Context) {
	cat, err := h.blog.Category(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBlogCategory(cat))
}

// Tags godoc
// @Summary Blog tags
// @Tags blog
// @Produce json
// @Success 200 {array} dto.BlogTagResponse
// @Router /api/blog/tags [get]
func (h *BlogHandler) Tags(c *gin.Context) {
	tags, err := h.blog.Tags(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBlogTags(tags))
}

// Tag godoc
// @Summary A blog tag by slug
// @Tags blog
// @Produce json
// @Param slug path string true "Tag slug"
// @Success 200 {object} dto.BlogTagResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/blog/tags/{slug} [get]
func (h *BlogHandler) Tag(c *gin.Context) {
	t, err := h.blog.Tag(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBlogTag(t))
}

// CreateCategory godoc
// @Summary Create a blog category
// @Tags blog-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category body dto.BlogCategoryRequest true "Category"
// @Success 201 {object} dto.BlogCategoryResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Router /api/blog/admin/categories [post]
func (h *BlogHandler) CreateCategory(c *gin.Context) {
	var req dto.BlogCategoryRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	cat, err := h.blog.CreateCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewBlogCategory(cat))
}

// DeleteCategory godoc
// @Summary Delete a blog category
// @Tags blog-admin
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 204
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/blog/admin/categories/{id} [delete]
func (h *BlogHandler) DeleteCategory(c *gin.Context) {
	h.remove(c, h.blog.DeleteCategory)
}

// CreateTag godoc
// @Summary Create a blog tag
// @Tags blog-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tag body dto.BlogTagRequest true "Tag"
// @Success 201 {object} dto.BlogTagResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Router /api/blog/admin/tags [post]
func (h *BlogHandler) CreateTag(c *gin.Context) {
	var req dto.BlogTagRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	t, err := h.blog.CreateTag(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewBlogTag(t))
}

// DeleteTag godoc
// @Summary Delete a blog tag
// @Tags blog-admin
// @Security BearerAuth
// @Param id path int true "Tag ID"
// @Success 204
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/blog/admin/tags/{id} [delete]
func (h *BlogHandler) DeleteTag(c *gin.Context) {
	h.remove(c, h.blog.DeleteTag)
}

// CreatePost godoc
// @Summary Create a blog post
// @Description Publishing stamps published_at once. The caller becomes the author.
// @Tags blog-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post body dto.BlogRequest true "Post"
// @Success 201 {object} dto.BlogPostResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Router /api/blog/admin/posts [post]
func (h *BlogHandler) CreatePost(c *gin.Context) {
	var req dto.BlogRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	b, err := h.blog.Create(c.Request.Context(), req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewBlogPost(b, true))
}

// UpdatePost godoc
// @Summary Replace a blog post
// @Tags blog-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param post body dto.BlogRequest true "Post"
// @Success 200 {object} dto.BlogPostResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/blog/admin/posts/{id} [put]
func (h *BlogHandler) UpdatePost(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req dto.BlogRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	b, err := h.blog.Update(c.Request.Context(), id, req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBlogPost(b, true))
}

// DeletePost godoc
// @Summary Delete a blog post
// @Tags blog-admin
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/blog/admin/posts/{id} [delete]
func (h *BlogHandler) DeletePost(c *gin.Context) {
	h.remove(c, h.blog.Delete)
}

func (h *BlogHandler) remove(c *gin.Context, fn func(context.Context, uint) error) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
