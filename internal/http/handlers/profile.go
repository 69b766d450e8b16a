package handlers

import (
	"net/http"
	"strconv"

	"questline/internal/levels"

	"github.com/gin-gonic/gin"
)

// MyProfile returns the caller's profile with derived level info.
func (h *Handler) MyProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.UserRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":       user,
		"level_info": levels.CalculateUserLevelInfo(user.Level, user.Stats.TotalPoints),
	})
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	IsPublic    *bool   `json:"is_public"`
	Zone        *string `json:"zone"`
}

// UpdateMyProfile applies partial profile edits. Quest stats and level are
// engine-owned and not editable here.
func (h *Handler) UpdateMyProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req UpdateProfileRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.UserRepo.GetByID(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.DisplayName != nil {
		user.Profile.DisplayName = *req.DisplayName
	}
	if req.AvatarURL != nil {
		user.Profile.AvatarURL = *req.AvatarURL
	}
	if req.IsPublic != nil {
		user.Profile.IsPublic = *req.IsPublic
	}
	if req.Zone != nil {
		user.Profile.Zone = *req.Zone
	}

	if err := h.UserRepo.UpdateProfile(ctx, user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// PublicProfile returns a user's profile if it is public.
func (h *Handler) PublicProfile(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.UserRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if !user.Profile.IsPublic || !user.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"profile":    user.Profile,
		"level":      user.Level,
		"stats":      user.Stats,
		"level_info": levels.CalculateUserLevelInfo(user.Level, user.Stats.TotalPoints),
	})
}

// SearchProfiles finds public users by name.
func (h *Handler) SearchProfiles(c *gin.Context) {
	query := c.Query("q")
	if len(query) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query too short"})
		return
	}

	users, err := h.UserRepo.SearchPublic(c.Request.Context(), query, 20)
	if err != nil {
		respondError(c, err)
		return
	}

	type result struct {
		ID          int64  `json:"id"`
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		Level       int    `json:"level"`
		TotalPoints int    `json:"total_points"`
		Zone        string `json:"zone"`
	}

	res := make([]result, 0, len(users))
	for _, u := range users {
		res = append(res, result{
			ID:          u.ID,
			Username:    u.Username,
			DisplayName: u.Profile.DisplayName,
			Level:       u.Level,
			TotalPoints: u.Stats.TotalPoints,
			Zone:        u.Profile.Zone,
		})
	}

	c.JSON(http.StatusOK, gin.H{"users": res})
}
