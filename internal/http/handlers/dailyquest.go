package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"questline/internal/domain"

	"github.com/gin-gonic/gin"
)

// InitializeDailyQuest возвращает квест на сегодня, создавая его при первом
// обращении. Повторный вызов в тот же день ничего не переигрывает.
func (h *Handler) InitializeDailyQuest(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	quest, err := h.QuestService.InitializeDailyQuest(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"daily_quest": quest})
}

// GetMyDailyQuest returns today's quest, or an empty shell when the day has
// not been initialized yet.
func (h *Handler) GetMyDailyQuest(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	quest, err := h.QuestService.GetToday(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrQuestNotFound) {
			c.JSON(http.StatusOK, gin.H{
				"daily_quest": gin.H{
					"user_id":      userID,
					"day":          h.QuestService.Today().String(),
					"missions":     []domain.Mission{},
					"reroll_count": 0,
				},
				"initialized": false,
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"daily_quest": quest, "initialized": true})
}

type AssignPersonalRequest struct {
	ChallengeID int64 `json:"challenge_id" binding:"required"`
	Slot        int   `json:"slot" binding:"required"`
}

func (h *Handler) AssignPersonalChallenge(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req AssignPersonalRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	quest, err := h.QuestService.AssignPersonalChallenge(c.Request.Context(), userID, req.ChallengeID, req.Slot)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"daily_quest":      quest,
		"assigned_mission": quest.MissionAt(req.Slot),
	})
}

func (h *Handler) UnassignPersonalChallenge(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot"})
		return
	}

	quest, svcErr := h.QuestService.UnassignPersonalChallenge(c.Request.Context(), userID, slot)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"daily_quest": quest})
}

func (h *Handler) RerollGlobalMission(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot"})
		return
	}

	res, svcErr := h.QuestService.RerollGlobalMission(c.Request.Context(), userID, slot)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"daily_quest":       res.Quest,
		"new_mission":       res.NewMission,
		"rerolls_remaining": res.RerollsRemaining,
	})
}

func (h *Handler) CompleteMission(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot"})
		return
	}

	res, svcErr := h.QuestService.CompleteMission(c.Request.Context(), userID, slot)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	resp := gin.H{
		"points_earned": res.Points,
		"daily_quest":   res.Quest,
		"user_stats":    res.UserStats,
		"level_info":    res.LevelInfo,
	}
	if res.LeveledUp {
		resp["level_up"] = gin.H{"new_level": res.LevelInfo.CurrentLevel}
	}
	if res.UnlockedChallenge != nil {
		resp["unlocked_challenge"] = res.UnlockedChallenge
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) SkipMission(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot"})
		return
	}

	quest, svcErr := h.QuestService.SkipMission(c.Request.Context(), userID, slot)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"daily_quest": quest})
}

// GetMyHistory returns the last N days of quests with period statistics.
func (h *Handler) GetMyHistory(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	days := 30
	if v := c.Query("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 365 {
			days = n
		}
	}

	history, stats, err := h.QuestService.History(c.Request.Context(), userID, days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"history": history,
		"stats":   stats,
	})
}
