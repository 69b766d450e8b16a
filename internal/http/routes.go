package http

import (
	"time"

	"questline/internal/config"
	"questline/internal/http/handlers"
	"questline/internal/http/middleware"
	"questline/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires all API endpoints. Handlers stay thin: every quest
// rule lives in the service layer.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, quests *service.QuestService, version string, cfg *config.Config) {
	h := handlers.NewHandler(db, quests)
	healthHandler := handlers.NewHealthHandler(db, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, time.Duration(cfg.APIRateWindow)*time.Second))
	registerAPIRoutes(v1, h, cfg)
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, cfg *config.Config) {
	authRL := middleware.SimpleRateLimit(cfg.AuthRateLimit, time.Duration(cfg.AuthRateWindow)*time.Second)

	// Auth
	api.POST("/auth/register", authRL, h.Register)
	api.POST("/auth/login", authRL, h.Login)
	api.GET("/me", middleware.JWT(), h.Me)

	// Profiles
	api.GET("/profile", middleware.JWT(), h.MyProfile)
	api.PATCH("/profile", middleware.JWT(), h.UpdateMyProfile)
	api.GET("/profile/:id", h.PublicProfile)
	api.GET("/profiles/search", h.SearchProfiles)

	// Challenge catalog
	api.GET("/challenges", h.ListChallenges)
	api.GET("/challenges/random", h.RandomChallenges)
	api.GET("/challenges/:id", h.GetChallenge)
	api.GET("/challenges/:id/stats", h.ChallengeStats)
	api.POST("/challenges", middleware.JWT(), h.CreateChallenge)
	api.PUT("/challenges/:id", middleware.JWT(), middleware.RequireAdmin(), h.UpdateChallenge)
	api.DELETE("/challenges/:id", middleware.JWT(), middleware.RequireAdmin(), h.DeactivateChallenge)
	api.POST("/challenges/:id/reactivate", middleware.JWT(), middleware.RequireAdmin(), h.ReactivateChallenge)
	api.GET("/catalog/stats", middleware.JWT(), middleware.RequireAdmin(), h.CatalogStats)

	// Quest rate limiter (per user, not per IP) on mutating quest ops
	questRL := middleware.QuestRateLimit(cfg.QuestRateLimit, time.Duration(cfg.QuestRateWindow)*time.Second)

	// Daily quests
	quest := api.Group("/quest")
	quest.Use(middleware.JWT())
	{
		quest.POST("/initialize", questRL, h.InitializeDailyQuest)
		quest.GET("/today", h.GetMyDailyQuest)
		quest.GET("/history", h.GetMyHistory)
		quest.POST("/missions", questRL, h.AssignPersonalChallenge)
		quest.DELETE("/missions/:slot", questRL, h.UnassignPersonalChallenge)
		quest.POST("/missions/:slot/reroll", questRL, h.RerollGlobalMission)
		quest.POST("/missions/:slot/complete", questRL, h.CompleteMission)
		quest.POST("/missions/:slot/skip", questRL, h.SkipMission)
	}

	// Rankings
	api.GET("/ranking", h.GlobalRanking)
	api.GET("/ranking/me", middleware.JWT(), h.MyGlobalRank)
	api.GET("/ranking/zone/me", middleware.JWT(), h.MyZoneRank)
	api.GET("/ranking/zone/:zone", h.ZoneRanking)
}
