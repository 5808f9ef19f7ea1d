package handlers

import (
	"net/http"
	"strconv"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/logger"

	"github.com/gin-gonic/gin"
)

type GuestbookRequest struct {
	Body string `json:"body"`
}

// SignGuestbook leaves an entry on another member's guestbook. The
// profile owner earns guestbook points for receiving it; the author
// earns nothing, so signing your own book is simply rejected.
func (h *Handler) SignGuestbook(c *gin.Context) {
	authorID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ownerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad member id"})
		return
	}
	if ownerID == authorID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot sign own guestbook"})
		return
	}

	var req GuestbookRequest
	if err := c.BindJSON(&req); err != nil || req.Body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.MemberRepo.GetByID(ctx, ownerID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}

	entry := &domain.GuestbookEntry{
		OwnerID:  ownerID,
		AuthorID: authorID,
		Body:     req.Body,
	}
	if err := h.GuestbookRepo.CreateEntry(ctx, entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	if _, err := h.Accrual.Grant(ctx, ownerID, domain.AwardGuestbooks, 1); err != nil {
		logger.Error("guestbook grant failed", "member_id", ownerID, "error", err)
	}

	c.JSON(http.StatusCreated, entry)
}

// Guestbook lists the newest entries of a member's guestbook.
func (h *Handler) Guestbook(c *gin.Context) {
	ownerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad member id"})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	entries, err := h.GuestbookRepo.EntriesForOwner(c.Request.Context(), ownerID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

type CommentRequest struct {
	Body string `json:"body"`
}

// CommentPicture comments on a picture. The author earns activity
// points, throttled so rapid-fire comments past the gap pay nothing.
func (h *Handler) CommentPicture(c *gin.Context) {
	authorID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	pictureID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad picture id"})
		return
	}

	var req CommentRequest
	if err := c.BindJSON(&req); err != nil || req.Body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.GalleryRepo.GetPicture(ctx, pictureID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "picture not found"})
		return
	}

	comment := &domain.PictureComment{
		PictureID: pictureID,
		AuthorID:  authorID,
		Body:      req.Body,
	}
	if err := h.GuestbookRepo.CreateComment(ctx, comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	grant, err := h.Accrual.GrantWithThrottle(ctx, authorID, domain.AwardActivity, h.Config.CommentGap)
	if err != nil {
		logger.Error("activity grant failed", "member_id", authorID, "error", err)
	}

	resp := gin.H{"comment": comment}
	if grant != nil {
		resp["grant"] = grant
	}
	c.JSON(http.StatusCreated, resp)
}
