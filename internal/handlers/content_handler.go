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

type ContactService interface {
	Submit(ctx context.Context, clientIP string, in service.ContactInput) (*models.ContactMessage, error)
	List(ctx context.Context, limit, offset int) ([]models.ContactMessage, int64, error)
	MarkRead(ctx context.Context, id uint) error
}

type AnnouncementService interface {
	Active(ctx context.Context) ([]models.Announcement, error)
	List(ctx context.Context) ([]models.Announcement, error)
	Get(ctx context.Context, id uint) (*models.Announcement, error)
	Create(ctx context.Context, in service.AnnouncementInput) (*models.Announcement, error)
	Update(ctx context.Context, id uint, in service.AnnouncementInput) (*models.Announcement, error)
	Delete(ctx context.Context, id uint) error
}

// ContentHandler serves the contact form and storefront announcements.
type ContentHandler struct {
	contact       ContactService
	announcements AnnouncementService
	log           *zap.Logger
}

func NewContentHandler(contact ContactService, announcements AnnouncementService, log *zap.Logger) *ContentHandler {
	return &ContentHandler{contact: contact, announcements: announcements, log: log}
}

// SubmitContact godoc
// @Summary Send a contact form message
// @Description One message per client IP per window.
// @Tags contact
// @Accept json
// @Produce json
// @Param message body dto.ContactRequest true "Message"
// @Success 201 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 429 {object} dto.RateLimitedErrorResponse
// @Router /api/contact [post]
func (h *ContentHandler) SubmitContact(c *gin.Context) {
	var req dto.ContactRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	if _, err := h.contact.Submit(c.Request.Context(), c.ClientIP(), req.Input()); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse("message received"))
}

// ListContact godoc
// @Summary List contact messages
// @Tags contact
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.Page[dto.ContactResponse]
// @Failure 403 {object} dto.ForbiddenErrorResponse
// @Router /api/contact [get]
func (h *ContentHandler) ListContact(c *gin.Context) {
	var q pageQuery
	if !bindQuery(c, h.log, &q) {
		return
	}
	items, total, err := h.contact.List(c.Request.Context(), q.Limit, q.Offset)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(dto.NewContacts(items), total))
}

// MarkContactRead godoc
// @Summary Mark a contact message as read
// @Tags contact
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 204
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/contact/{id}/read [post]
func (h *ContentHandler) MarkContactRead(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := h.contact.MarkRead(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ActiveAnnouncements godoc
// @Summary Active storefront announcements in display order
// @Tags announcements
// @Produce json
// @Success 200 {array} dto.AnnouncementResponse
// @Router /api/announcements [get]
func (h *ContentHandler) ActiveAnnouncements(c *gin.Context) {
	as, err := h.announcements.Active(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAnnouncements(as))
}

// ListAnnouncements godoc
// @Summary All announcements including inactive ones
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.AnnouncementResponse
// @Failure 403 {object} dto.ForbiddenErrorResponse
// @Router /api/announcements/all [get]
func (h *ContentHandler) ListAnnouncements(c *gin.Context) {
	as, err := h.announcements.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAnnouncements(as))
}

// GetAnnouncement godoc
// @Summary Get an announcement
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} dto.AnnouncementResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/announcements/{id} [get]
func (h *ContentHandler) GetAnnouncement(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	a, err := h.announcements.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAnnouncement(a))
}

// CreateAnnouncement godoc
// @Summary Create an announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param announcement body dto.AnnouncementRequest true "Announcement"
// @Success 201 {object} dto.AnnouncementResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Router /api/announcements [post]
func (h *ContentHandler) CreateAnnouncement(c *gin.Context) {
	var req dto.AnnouncementRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	a, err := h.announcements.Create(c.Request.Context(), req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewAnnouncement(a))
}

// UpdateAnnouncement godoc
// @Summary Replace an announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Param announcement body dto.AnnouncementRequest true "Announcement"
// @Success 200 {object} dto.AnnouncementResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/announcements/{id} [put]
func (h *ContentHandler) UpdateAnnouncement(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req dto.AnnouncementRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	a, err := h.announcements.Update(c.Request.Context(), id, req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAnnouncement(a))
}

// DeleteAnnouncement godoc
// @Summary Delete an announcement
// @Tags announcements
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 204
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/announcements/{id} [delete]
func (h *ContentHandler) DeleteAnnouncement(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := h.announcements.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
