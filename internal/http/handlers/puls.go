package handlers

import (
	"errors"
	"net/http"

	"membership_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// MyPuls shows the member's accepted counters, the grand total and the
// per-type pending sums that the next collect would fold in.
func (h *Handler) MyPuls(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()

	ledger, err := h.LedgerRepo.GetByMemberID(ctx, memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger lookup failed"})
		return
	}

	pending, err := h.LedgerRepo.PendingSums(ctx, ledger.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pending lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"counters":       ledger,
		"total":          ledger.Total(),
		"constant_total": ledger.ConstantTotal(),
		"variable_total": ledger.VariableTotal(),
		"pending":        pending,
	})
}

// CollectPuls runs reconciliation: pending entries are summed per type,
// whole points land in the counters, and the snapshot flips to
// accepted.
func (h *Handler) CollectPuls(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.Accrual.ReconcilePending(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}

	ledger, err := h.LedgerRepo.GetByMemberID(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"updated":  res.Updated,
		"changed":  res.AnyChange,
		"counters": ledger,
		"total":    ledger.Total(),
	})
}
