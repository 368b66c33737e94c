package mock

import (
	"context"
	"database/sql"
	"sync"

	"github.com/oakhurst/talentpipe/internal/models"
)

// Test helpers and mocks
type Mocks struct {
	Users      *UserRepo
	Candidates *CandidateRepo
	Activities *ActivityRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		Users:      &UserRepo{},
		Candidates: NewCandidateRepo(),
		Activities: &ActivityRepo{},
	}
}

// UserRepo holds at most one user and supports error injection on create.
type UserRepo struct {
	mu        sync.Mutex
	Stored    *models.User
	CreateErr error
	Count     int64
}

func (m *UserRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	u.ID = m.Count + 1
	m.Stored = u
	m.Count++
	return u.ID, nil
}

func (m *UserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Stored == nil || m.Stored.ID != id {
		return nil, nil
	}
	cp := *m.Stored
	return &cp, nil
}

func (m *UserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Stored == nil || m.Stored.Email != email {
		return nil, nil
	}
	cp := *m.Stored
	return &cp, nil
}

func (m *UserRepo) CountUsers(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Count, nil
}

// CandidateRepo is an in-memory CandidateRepo with per-id failure injection.
type CandidateRepo struct {
	mu      sync.Mutex
	nextID  int64
	Stored  map[int64]*models.Candidate
	FailIDs map[int64]error
}

func NewCandidateRepo() *CandidateRepo {
	return &CandidateRepo{Stored: make(map[int64]*models.Candidate), FailIDs: make(map[int64]error)}
}

func (m *CandidateRepo) Put(c *models.Candidate) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	m.Stored[c.ID] = c
	return c.ID
}

func (m *CandidateRepo) CreateCandidate(ctx context.Context, c *models.Candidate) (int64, error) {
	return m.Put(c), nil
}

func (m *CandidateRepo) GetCandidate(ctx context.Context, id int64) (*models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Stored[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *CandidateRepo) ListCandidates(ctx context.Context, limit, offset int) ([]models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Candidate, 0, len(m.Stored))
	for id := int64(1); id <= m.nextID; id++ {
		if c, ok := m.Stored[id]; ok {
			out = append(out, *c)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *CandidateRepo) TouchContact(ctx context.Context, id int64, at int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailIDs[id]; err != nil {
		return err
	}
	c, ok := m.Stored[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.LastContact = &at
	return nil
}

func (m *CandidateRepo) Anonymise(ctx context.Context, id int64, at int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailIDs[id]; err != nil {
		return err
	}
	c, ok := m.Stored[id]
	if !ok {
		return sql.ErrNoRows
	}
	if c.AnonymisedAt != nil {
		return nil
	}
	c.Name, c.Email, c.Phone, c.AIReasoning = "", "", "", ""
	c.AnonymisedAt = &at
	return nil
}

func (m *CandidateRepo) DeleteCandidate(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailIDs[id]; err != nil {
		return err
	}
	if _, ok := m.Stored[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.Stored, id)
	return nil
}

func (m *CandidateRepo) MarkDuplicate(ctx context.Context, id, ofID int64, reasons string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Stored[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.PotentialDuplicateOf = &ofID
	c.DuplicateReasons = reasons
	return nil
}

// ActivityRepo collects records in memory.
type ActivityRepo struct {
	mu      sync.Mutex
	Records []models.ActivityRecord
}

func (m *ActivityRepo) CreateActivity(ctx context.Context, a *models.ActivityRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = int64(len(m.Records) + 1)
	m.Records = append(m.Records, *a)
	return a.ID, nil
}

func (m *ActivityRepo) ListActivities(ctx context.Context, limit, offset int) ([]models.ActivityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ActivityRecord(nil), m.Records...), nil
}

// ByAction returns recorded activities matching one action.
func (m *ActivityRepo) ByAction(action string) []models.ActivityRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ActivityRecord
	for _, r := range m.Records {
		if r.Action == action {
			out = append(out, r)
		}
	}
	return out
}
