package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/logger"
	"membership_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// Me returns the authenticated member with tier quotas and score.
func (h *Handler) Me(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	member, err := h.MemberRepo.GetByID(ctx, memberID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}

	ledger, err := h.LedgerRepo.GetByMemberID(ctx, memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"member":   member,
		"quotas":   h.Catalog.LimitsFor(member.Tier),
		"power":    h.Catalog.Rank(member.Tier),
		"emotions": domain.EmotionsFor(h.Catalog, member.Tier),
		"total":    ledger.Total(),
	})
}

// Profile shows another member's page. A logged-in view is recorded as
// a visit and pays the viewer surfing points, throttled so refresh
// loops earn nothing.
func (h *Handler) Profile(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad member id"})
		return
	}

	ctx := c.Request.Context()
	member, err := h.MemberRepo.GetByID(ctx, targetID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}

	viewerID, authed := getMemberID(c)
	if authed && viewerID != targetID {
		if err := h.VisitorRepo.RecordVisit(ctx, targetID, viewerID); err != nil {
			logger.Error("visit record failed", "member_id", targetID, "visitor_id", viewerID, "error", err)
		}
		if _, err := h.Accrual.GrantWithThrottle(ctx, viewerID, domain.AwardSurfing, h.Config.SurfGap); err != nil {
			logger.Error("surfing grant failed", "member_id", viewerID, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"member": member,
		"power":  h.Catalog.Rank(member.Tier),
	})
}

type EmotionRequest struct {
	Emotion domain.Emotion `json:"emotion"`
}

// SetEmotion switches the profile emotion. Only emotions unlocked by
// the member's tier (or a lower one) are allowed.
func (h *Handler) SetEmotion(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req EmotionRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ctx := c.Request.Context()
	member, err := h.MemberRepo.GetByID(ctx, memberID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}

	if !domain.EmotionAllowed(h.Catalog, member.Tier, req.Emotion) {
		c.JSON(http.StatusForbidden, gin.H{"error": "emotion not available at this tier"})
		return
	}

	if err := h.MemberRepo.SetEmotion(ctx, memberID, req.Emotion); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"emotion": req.Emotion})
}

type AboutMeRequest struct {
	Text string `json:"text"`
}

// CompleteAboutMe marks the about-me section filled and awards the
// one-time achievement. Re-submitting edits never pays twice.
func (h *Handler) CompleteAboutMe(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req AboutMeRequest
	if err := c.BindJSON(&req); err != nil || req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ctx := c.Request.Context()
	if err := h.MemberRepo.SetAboutMeDone(ctx, memberID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	res, err := h.Accrual.Grant(ctx, memberID, domain.AwardAboutMe, 1)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "grant failed"})
		return
	}

	c.JSON(http.StatusOK, res)
}

type TierChangeRequest struct {
	Tier domain.Tier `json:"tier"`
}

// ChangeTier moves the member to another tier. Downgrades return the
// trim report so the UI can show what was removed.
func (h *Handler) ChangeTier(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req TierChangeRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	report, err := h.Quota.ChangeTier(c.Request.Context(), memberID, req.Tier)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownTier):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown tier"})
		case errors.Is(err, service.ErrMemberNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "tier change failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tier":    req.Tier,
		"trimmed": !report.Empty(),
		"report":  report,
	})
}

// Visitors lists who viewed the profile. The owner sees the longer
// own-visitors window; everyone else gets the stranger cut.
func (h *Handler) Visitors(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad member id"})
		return
	}

	ctx := c.Request.Context()
	member, err := h.MemberRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	quotas := h.Catalog.LimitsFor(member.Tier)
	limit := quotas.MaxStrangerVisitorsShown
	if viewerID, authed := getMemberID(c); authed && viewerID == targetID {
		limit = quotas.MaxOwnVisitorsShown
	}

	visits, err := h.VisitorRepo.RecentVisitors(ctx, targetID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "visitor lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"visitors": visits, "shown": len(visits), "limit": limit})
}
