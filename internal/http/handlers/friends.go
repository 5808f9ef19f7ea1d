package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"membership_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// AddFriend creates a friend edge through the quota service, which
// holds the member lock for the check and the insert. Adding an
// existing friend is a no-op.
func (h *Handler) AddFriend(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	friendID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || friendID == memberID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad friend id"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.MemberRepo.GetByID(ctx, friendID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "friend not found"})
		return
	}

	added, err := h.Quota.AddFriend(ctx, memberID, friendID)
	switch {
	case errors.Is(err, service.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	case errors.Is(err, service.ErrQuotaExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": "friend quota reached"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "add failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"friend_id": friendID, "added": added})
}

// AddBestFriend promotes an existing friend to best friend. The edge
// must already exist in friends; the quota for best friends is much
// tighter and zero at the lowest tier.
func (h *Handler) AddBestFriend(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	friendID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || friendID == memberID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad friend id"})
		return
	}

	added, err := h.Quota.AddBestFriend(c.Request.Context(), memberID, friendID)
	switch {
	case errors.Is(err, service.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	case errors.Is(err, service.ErrNotFriends):
		c.JSON(http.StatusConflict, gin.H{"error": "not a friend yet"})
		return
	case errors.Is(err, service.ErrQuotaExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": "best friend quota reached"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "add failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"friend_id": friendID, "added": added})
}

// FriendCounts returns current usage against the tier quotas.
func (h *Handler) FriendCounts(c *gin.Context) {
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

	friends, err := h.FriendRepo.CountFriends(ctx, memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}
	best, err := h.FriendRepo.CountBestFriends(ctx, memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	quotas := h.Catalog.LimitsFor(member.Tier)
	c.JSON(http.StatusOK, gin.H{
		"friends":           friends,
		"friends_limit":     quotas.MaxFriends,
		"best_friends":      best,
		"best_friend_limit": quotas.MaxBestFriends,
	})
}
