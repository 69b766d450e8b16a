package handlers

import (
	"errors"
	"net/http"

	"questline/internal/domain"
	"questline/internal/logger"
	"questline/internal/repository"
	"questline/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB            *pgxpool.Pool
	UserRepo      *repository.UserRepository
	ChallengeRepo *repository.ChallengeRepository
	QuestService  *service.QuestService
	AuthService   *service.AuthService
}

func NewHandler(db *pgxpool.Pool, quests *service.QuestService) *Handler {
	userRepo := repository.NewUserRepository(db)
	return &Handler{
		DB:            db,
		UserRepo:      userRepo,
		ChallengeRepo: repository.NewChallengeRepository(db),
		QuestService:  quests,
		AuthService:   service.NewAuthService(userRepo),
	}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c *gin.Context) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// respondError maps domain failures onto HTTP statuses. Every guard keeps
// its own message so clients can branch on which rule was violated.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrChallengeNotFound),
		errors.Is(err, domain.ErrMissionNotFound),
		errors.Is(err, domain.ErrQuestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrInvalidSlot):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrInsufficientLevel):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrQuestNotInitialized),
		errors.Is(err, domain.ErrChallengeInactive),
		errors.Is(err, domain.ErrWrongChallengeKind),
		errors.Is(err, domain.ErrSlotOccupied),
		errors.Is(err, domain.ErrDuplicateChallenge),
		errors.Is(err, domain.ErrRerollLimitReached),
		errors.Is(err, domain.ErrNoEligibleChallenge),
		errors.Is(err, domain.ErrMissionCompleted):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	default:
		logger.Error("internal error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
