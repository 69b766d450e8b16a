package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func rankLimit(c *gin.Context) int {
	limit := 10
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	return limit
}

// GlobalRanking returns the top users by total points.
func (h *Handler) GlobalRanking(c *gin.Context) {
	top, err := h.UserRepo.GlobalTop(c.Request.Context(), rankLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ranking": top})
}

// MyGlobalRank returns the caller's position in the global ranking.
func (h *Handler) MyGlobalRank(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	rank, err := h.UserRepo.GlobalRank(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rank": rank})
}

// ZoneRanking returns the top users inside one zone.
func (h *Handler) ZoneRanking(c *gin.Context) {
	zone := c.Param("zone")
	if zone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "zone required"})
		return
	}

	top, err := h.UserRepo.ZoneTop(c.Request.Context(), zone, rankLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"zone": zone, "ranking": top})
}

// MyZoneRank returns the caller's position within their own zone.
func (h *Handler) MyZoneRank(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.UserRepo.GetByID(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if user.Profile.Zone == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no zone set"})
		return
	}

	rank, err := h.UserRepo.ZoneRank(ctx, userID, user.Profile.Zone)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"zone": user.Profile.Zone, "rank": rank})
}
