package handlers

import (
	"errors"
	"net/http"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/logger"
	"membership_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

type AuthRequest struct {
	Ticket string `json:"ticket"`
}

// Auth exchanges a signed portal ticket for a session JWT. First login
// creates the member; every login feeds the "logins" award and, once
// per stipend window, the tier stipend.
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if len(req.Ticket) > 4096 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticket too long"})
		return
	}

	values, ok := service.ValidateProfileTicket(req.Ticket, h.Config.ProfileSecret)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or stale ticket"})
		return
	}

	username := values.Get("username")
	ctx := c.Request.Context()

	member, err := h.MemberRepo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		}
		member = &domain.Member{Username: username}
		if err := h.MemberRepo.Create(ctx, member); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create member"})
			return
		}
	}

	// Every authenticated login earns login points; the tier stipend
	// rides on the same flow for paid tiers, throttled to its window.
	if _, err := h.Accrual.Grant(ctx, member.ID, domain.AwardLogins, 1); err != nil {
		logger.Error("login grant failed", "member_id", member.ID, "error", err)
	}
	if h.Catalog.Rank(member.Tier) > 0 {
		if _, err := h.Accrual.GrantWithThrottle(ctx, member.ID, domain.AwardTier, h.Config.TierStipend); err != nil {
			logger.Error("tier stipend grant failed", "member_id", member.ID, "error", err)
		}
	}

	token, err := service.GenerateJWT(member.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"member": gin.H{
			"id":       member.ID,
			"username": member.Username,
			"tier":     member.Tier,
			"emotion":  member.Emotion,
		},
	})
}
