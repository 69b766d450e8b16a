package service

import (
	"context"
	"sort"

	"questline/internal/domain"
)

// In-memory stores for service tests. Filter semantics mirror the SQL
// repositories; sampling is deterministic (lowest id first) so tests can
// assert exact assignments.

type memCatalog struct {
	challenges map[int64]*domain.Challenge
	assigned   map[int64]int
	completed  map[int64]int
}

func newMemCatalog(challenges ...*domain.Challenge) *memCatalog {
	c := &memCatalog{
		challenges: make(map[int64]*domain.Challenge),
		assigned:   make(map[int64]int),
		completed:  make(map[int64]int),
	}
	for _, ch := range challenges {
		c.challenges[ch.ID] = ch
	}
	return c
}

func (c *memCatalog) GetByID(_ context.Context, id int64) (*domain.Challenge, error) {
	ch, ok := c.challenges[id]
	if !ok {
		return nil, domain.ErrChallengeNotFound
	}
	return ch, nil
}

func (c *memCatalog) matches(ch *domain.Challenge, f domain.ChallengeFilter) bool {
	if f.Kind != "" && ch.Kind != f.Kind {
		return false
	}
	if f.ActiveOnly && !ch.IsActive {
		return false
	}
	if f.MaxMinUserLevel > 0 && ch.Rules.MinUserLevel > f.MaxMinUserLevel {
		return false
	}
	if f.NoPrerequisite && ch.Requirements.PrerequisiteChallengeID != nil {
		return false
	}
	if f.PrerequisiteID != nil {
		if ch.Requirements.PrerequisiteChallengeID == nil ||
			*ch.Requirements.PrerequisiteChallengeID != *f.PrerequisiteID {
			return false
		}
	}
	for _, id := range f.ExcludeIDs {
		if ch.ID == id {
			return false
		}
	}
	if f.Category != "" && ch.Category != f.Category {
		return false
	}
	return true
}

func (c *memCatalog) SampleRandom(_ context.Context, f domain.ChallengeFilter, count int) ([]*domain.Challenge, error) {
	var res []*domain.Challenge
	for _, ch := range c.challenges {
		if c.matches(ch, f) {
			res = append(res, ch)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	if len(res) > count {
		res = res[:count]
	}
	return res, nil
}

func (c *memCatalog) FindOneMatching(ctx context.Context, f domain.ChallengeFilter) (*domain.Challenge, error) {
	res, err := c.SampleRandom(ctx, f, 1)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, domain.ErrChallengeNotFound
	}
	return res[0], nil
}

func (c *memCatalog) IncrementAssigned(_ context.Context, id int64) error {
	c.assigned[id]++
	return nil
}

func (c *memCatalog) IncrementCompleted(_ context.Context, id int64) error {
	c.completed[id]++
	return nil
}

type memUsers struct {
	users map[int64]*domain.User
	saved int
}

func newMemUsers(users ...*domain.User) *memUsers {
	m := &memUsers{users: make(map[int64]*domain.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Save(_ context.Context, u *domain.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	m.saved++
	return nil
}

type questKey struct {
	userID int64
	day    domain.Day
}

type memQuests struct {
	users  *memUsers
	quests map[questKey]*domain.DailyQuest
	nextID int64

	// when set, the next Save/SaveWithUser fails once with ErrConflict
	failNextSave bool
}

func newMemQuests(users *memUsers) *memQuests {
	return &memQuests{users: users, quests: make(map[questKey]*domain.DailyQuest)}
}

func copyQuest(q *domain.DailyQuest) *domain.DailyQuest {
	cp := *q
	cp.Missions = make([]domain.Mission, len(q.Missions))
	copy(cp.Missions, q.Missions)
	return &cp
}

func (m *memQuests) FindByUserAndDay(_ context.Context, userID int64, day domain.Day) (*domain.DailyQuest, error) {
	q, ok := m.quests[questKey{userID, day}]
	if !ok {
		return nil, domain.ErrQuestNotFound
	}
	return copyQuest(q), nil
}

func (m *memQuests) Create(_ context.Context, q *domain.DailyQuest) error {
	key := questKey{q.UserID, q.Day}
	if _, ok := m.quests[key]; ok {
		return domain.ErrConflict
	}
	m.nextID++
	q.ID = m.nextID
	m.quests[key] = copyQuest(q)
	return nil
}

func (m *memQuests) save(q *domain.DailyQuest) error {
	if m.failNextSave {
		m.failNextSave = false
		return domain.ErrConflict
	}
	key := questKey{q.UserID, q.Day}
	stored, ok := m.quests[key]
	if !ok {
		return domain.ErrQuestNotFound
	}
	if stored.Revision != q.Revision {
		return domain.ErrConflict
	}
	q.Revision++
	m.quests[key] = copyQuest(q)
	return nil
}

func (m *memQuests) Save(_ context.Context, q *domain.DailyQuest) error {
	return m.save(q)
}

func (m *memQuests) SaveWithUser(ctx context.Context, q *domain.DailyQuest, u *domain.User) error {
	if err := m.save(q); err != nil {
		return err
	}
	return m.users.Save(ctx, u)
}

func (m *memQuests) FindSince(_ context.Context, userID int64, from domain.Day) ([]*domain.DailyQuest, error) {
	var res []*domain.DailyQuest
	for key, q := range m.quests {
		if key.userID == userID && !q.Day.Time().Before(from.Time()) {
			res = append(res, copyQuest(q))
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Day.Time().After(res[j].Day.Time()) })
	return res, nil
}
