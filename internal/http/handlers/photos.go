package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/logger"
	"membership_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

type GalleryRequest struct {
	Name string `json:"name"`
}

// CreateGallery opens a new gallery. The quota check runs in the
// service under the member lock.
func (h *Handler) CreateGallery(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req GalleryRequest
	if err := c.BindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	gallery, err := h.Quota.CreateGallery(c.Request.Context(), memberID, req.Name)
	switch {
	case errors.Is(err, service.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	case errors.Is(err, service.ErrQuotaExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": "gallery quota reached"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, gallery)
}

type PictureRequest struct {
	Title     string `json:"title"`
	SizeBytes int64  `json:"size_bytes"`
}

// AddPicture stores picture metadata into one of the member's own
// galleries. The byte-quota check runs in the service under the member
// lock; there is no partial acceptance.
func (h *Handler) AddPicture(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	galleryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad gallery id"})
		return
	}

	var req PictureRequest
	if err := c.BindJSON(&req); err != nil || req.SizeBytes <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	picture, err := h.Quota.AddPicture(c.Request.Context(), memberID, galleryID, req.Title, req.SizeBytes)
	switch {
	case errors.Is(err, service.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	case errors.Is(err, service.ErrGalleryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "gallery not found"})
		return
	case errors.Is(err, service.ErrQuotaExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": "picture storage quota exceeded"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, picture)
}

// RequestProfilePhoto queues a profile photo for moderation. The
// achievement pays only after an admin accepts it.
func (h *Handler) RequestProfilePhoto(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	req := &domain.ProfilePictureRequest{MemberID: memberID}
	if err := h.PhotoReqRepo.Create(c.Request.Context(), req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, req)
}

type ExamineRequest struct {
	Accept bool `json:"accept"`
}

// ExaminePhotoRequest is the moderation verdict. Acceptance grants the
// profile photo achievement; re-examining an already accepted request
// cannot pay twice because the grant is idempotent.
func (h *Handler) ExaminePhotoRequest(c *gin.Context) {
	adminID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	admin, err := h.MemberRepo.GetByID(ctx, adminID)
	if err != nil || !h.isAdmin(admin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return
	}

	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request id"})
		return
	}

	var req ExamineRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	photoReq, err := h.PhotoReqRepo.GetByID(ctx, requestID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}

	if err := h.PhotoReqRepo.MarkExamined(ctx, requestID, req.Accept); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	if req.Accept {
		if _, err := h.Accrual.Grant(ctx, photoReq.MemberID, domain.AwardProfilePhoto, 1); err != nil {
			logger.Error("profile photo grant failed", "member_id", photoReq.MemberID, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"id": requestID, "accepted": req.Accept})
}
