package domain

import "errors"

// Каждое нарушенное правило - отдельная ошибка: клиент ветвится по ним,
// поэтому гранулярность здесь часть контракта, а не деталь реализации.
var (
	// not found
	ErrUserNotFound      = errors.New("user not found")
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrMissionNotFound   = errors.New("no mission in that slot")
	ErrQuestNotFound     = errors.New("no daily quest for that day")

	// invalid input
	ErrInvalidSlot = errors.New("slot out of range for this operation")

	// precondition failed
	ErrQuestNotInitialized = errors.New("daily quest not initialized")
	ErrChallengeInactive   = errors.New("challenge is not active")
	ErrWrongChallengeKind  = errors.New("challenge kind not allowed in this slot")
	ErrInsufficientLevel   = errors.New("user level below challenge requirement")
	ErrSlotOccupied        = errors.New("slot already occupied")
	ErrDuplicateChallenge  = errors.New("challenge already assigned today")
	ErrRerollLimitReached  = errors.New("daily reroll limit reached")
	ErrNoEligibleChallenge = errors.New("no eligible replacement challenge")
	ErrMissionCompleted    = errors.New("mission already completed")

	// conflict
	ErrConflict = errors.New("concurrent modification detected")
)
