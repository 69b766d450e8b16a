package handlers

import (
	"net/http"
	"strconv"

	"questline/internal/domain"

	"github.com/gin-gonic/gin"
)

// ListChallenges returns catalog entries, filterable by kind, category and
// active flag. Defaults to active-only.
func (h *Handler) ListChallenges(c *gin.Context) {
	filter := domain.ChallengeFilter{ActiveOnly: true}

	if kind := c.Query("kind"); kind != "" {
		k := domain.ChallengeKind(kind)
		if k != domain.ChallengeGlobal && k != domain.ChallengePersonal {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid kind"})
			return
		}
		filter.Kind = k
	}
	if cat := c.Query("category"); cat != "" {
		filter.Category = cat
	}
	if c.Query("include_inactive") == "true" {
		filter.ActiveOnly = false
	}

	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	challenges, err := h.ChallengeRepo.List(c.Request.Context(), filter, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"challenges": challenges, "count": len(challenges)})
}

func (h *Handler) GetChallenge(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	challenge, err := h.ChallengeRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"challenge": challenge})
}

type ChallengeRequest struct {
	Title                   string   `json:"title" binding:"required,min=3,max=120"`
	Description             string   `json:"description"`
	Kind                    string   `json:"kind" binding:"required,oneof=global personal"`
	Category                string   `json:"category" binding:"required"`
	Difficulty              int      `json:"difficulty" binding:"required,min=1,max=5"`
	Points                  int      `json:"points" binding:"required,min=1"`
	Tags                    []string `json:"tags"`
	MinLevel                int      `json:"min_level"`
	PrerequisiteChallengeID *int64   `json:"prerequisite_challenge_id"`
	MaxPerDay               int      `json:"max_per_day"`
	MinUserLevel            int      `json:"min_user_level"`
}

// CreateChallenge adds a catalog entry. Global challenges are admin-only
// (enforced at the route); personal ones belong to the caller.
func (h *Handler) CreateChallenge(c *gin.Context) {
	var req ChallengeRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ctx := c.Request.Context()

	if req.PrerequisiteChallengeID != nil {
		if _, err := h.ChallengeRepo.GetByID(ctx, *req.PrerequisiteChallengeID); err != nil {
			respondError(c, err)
			return
		}
	}

	challenge := &domain.Challenge{
		Title:       req.Title,
		Description: req.Description,
		Kind:        domain.ChallengeKind(req.Kind),
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Points:      req.Points,
		IsActive:    true,
		Tags:        req.Tags,
		Requirements: domain.Requirements{
			MinLevel:                req.MinLevel,
			PrerequisiteChallengeID: req.PrerequisiteChallengeID,
		},
		Rules: domain.Rules{
			MaxPerDay:    req.MaxPerDay,
			MinUserLevel: req.MinUserLevel,
		},
	}

	if challenge.Kind == domain.ChallengePersonal {
		userID, ok := getUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		challenge.OwnerID = &userID
	}

	if err := h.ChallengeRepo.Create(ctx, challenge); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"challenge": challenge})
}

func (h *Handler) UpdateChallenge(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	var req ChallengeRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ctx := c.Request.Context()
	challenge, err := h.ChallengeRepo.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	challenge.Title = req.Title
	challenge.Description = req.Description
	challenge.Kind = domain.ChallengeKind(req.Kind)
	challenge.Category = req.Category
	challenge.Difficulty = req.Difficulty
	challenge.Points = req.Points
	challenge.Tags = req.Tags
	challenge.Requirements.MinLevel = req.MinLevel
	challenge.Requirements.PrerequisiteChallengeID = req.PrerequisiteChallengeID
	challenge.Rules.MaxPerDay = req.MaxPerDay
	challenge.Rules.MinUserLevel = req.MinUserLevel

	if err := h.ChallengeRepo.Update(ctx, challenge); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"challenge": challenge})
}

// DeactivateChallenge soft-deletes: the entry stops being sampled but stays
// referenced by historical quests.
func (h *Handler) DeactivateChallenge(c *gin.Context) {
	h.setChallengeActive(c, false)
}

func (h *Handler) ReactivateChallenge(c *gin.Context) {
	h.setChallengeActive(c, true)
}

func (h *Handler) setChallengeActive(c *gin.Context, active bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	if err := h.ChallengeRepo.SetActive(c.Request.Context(), id, active); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "is_active": active})
}

// RandomChallenges samples active global challenges, the same pool the daily
// provisioner draws from. Useful for previews.
func (h *Handler) RandomChallenges(c *gin.Context) {
	count := 3
	if v := c.Query("count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 10 {
			count = n
		}
	}

	challenges, err := h.ChallengeRepo.SampleRandom(c.Request.Context(), domain.ChallengeFilter{
		Kind:           domain.ChallengeGlobal,
		ActiveOnly:     true,
		NoPrerequisite: true,
	}, count)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"challenges": challenges})
}

// ChallengeStats returns assignment/completion counters for one entry.
func (h *Handler) ChallengeStats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	challenge, err := h.ChallengeRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"challenge_id": challenge.ID,
		"title":        challenge.Title,
		"stats":        challenge.Stats,
	})
}

// CatalogStats aggregates over the whole catalog. Admin-only.
func (h *Handler) CatalogStats(c *gin.Context) {
	stats, err := h.ChallengeRepo.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
