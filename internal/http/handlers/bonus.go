package handlers

import (
	"net/http"
	"time"

	"membership_webapp/internal/domain"

	"github.com/gin-gonic/gin"
)

type BonusCampaignRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Scope       string  `json:"scope"`
	Multiplier  float64 `json:"multiplier"`
	StartDate   string  `json:"start_date"` // YYYY-MM-DD
	EndDate     string  `json:"end_date"`
}

// CreateBonusCampaign registers a time-windowed bonus. Admin only.
// Scope is either "all" or a single variable award name.
func (h *Handler) CreateBonusCampaign(c *gin.Context) {
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

	var req BonusCampaignRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if req.Name == "" || req.Multiplier <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and positive multiplier required"})
		return
	}
	if req.Scope != domain.BonusScopeAll && !domain.AwardType(req.Scope).IsVariable() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scope must be 'all' or a variable award type"})
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad start_date"})
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad end_date"})
		return
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date before start_date"})
		return
	}

	campaign := &domain.BonusCampaign{
		Name:        req.Name,
		Description: req.Description,
		Scope:       req.Scope,
		Multiplier:  req.Multiplier,
		StartDate:   start,
		EndDate:     end,
	}
	if err := h.BonusRepo.Create(ctx, campaign); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, campaign)
}

// ActiveBonuses lists the campaigns covering today.
func (h *Handler) ActiveBonuses(c *gin.Context) {
	campaigns, err := h.BonusRepo.ActiveOn(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}
