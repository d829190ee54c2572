// Package mocks provides test doubles for the port interfaces.
package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/parrainage/matching-service/internal/adapters/repository/memory"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/ports"
)

// MockRepository is the in-memory store with call tracking and error
// injection layered on the methods services depend on. Unset errors fall
// through to the real in-memory behaviour.
type MockRepository struct {
	*memory.Store

	mu sync.Mutex

	FindByIDCalls          []string
	CreateSponsorshipCalls []domain.Sponsorship
	AcceptCalls            []string
	DeleteCalls            []string

	FindByIDError          error
	CreateUserError        error
	UpdateUserError        error
	DeleteUserError        error
	CreateSponsorshipError error
	FindByPairError        error
	AcceptSponsorshipError error
	DeleteSponsorshipError error
	NearestCandidatesError error
	PartnerIDsError        error

	AfterFindSponsorship func()
}

var (
	_ ports.UserRepository        = (*MockRepository)(nil)
	_ ports.SponsorshipRepository = (*MockRepository)(nil)
	_ ports.ProximityReader       = (*MockRepository)(nil)
)

func NewMockRepository() *MockRepository {
	return &MockRepository{Store: memory.New()}
}

// SeedUser adds a user for test setup. It panics on error: a failed seed is
// a broken test, not a scenario.
func (m *MockRepository) SeedUser(user domain.User) domain.User {
	if err := m.Store.CreateUser(context.Background(), user); err != nil {
		panic(err)
	}
	return user
}

func (m *MockRepository) SeedSponsorship(s domain.Sponsorship) domain.Sponsorship {
	if err := m.Store.CreateSponsorship(context.Background(), s); err != nil {
		panic(err)
	}
	if s.Validated {
		if _, err := m.Store.AcceptSponsorship(context.Background(), s.ID); err != nil {
			panic(err)
		}
	}
	return s
}

func (m *MockRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	m.FindByIDCalls = append(m.FindByIDCalls, id)
	injected := m.FindByIDError
	m.mu.Unlock()

	if injected != nil {
		return nil, injected
	}
	return m.Store.FindByID(ctx, id)
}

func (m *MockRepository) CreateUser(ctx context.Context, user domain.User) error {
	if m.CreateUserError != nil {
		return m.CreateUserError
	}
	return m.Store.CreateUser(ctx, user)
}

func (m *MockRepository) UpdateUser(ctx context.Context, user domain.User) error {
	if m.UpdateUserError != nil {
		return m.UpdateUserError
	}
	return m.Store.UpdateUser(ctx, user)
}

func (m *MockRepository) DeleteUser(ctx context.Context, id string) error {
	if m.DeleteUserError != nil {
		return m.DeleteUserError
	}
	return m.Store.DeleteUser(ctx, id)
}

func (m *MockRepository) CreateSponsorship(ctx context.Context, s domain.Sponsorship) error {
	m.mu.Lock()
	m.CreateSponsorshipCalls = append(m.CreateSponsorshipCalls, s)
	injected := m.CreateSponsorshipError
	m.mu.Unlock()

	if injected != nil {
		return injected
	}
	return m.Store.CreateSponsorship(ctx, s)
}

func (m *MockRepository) FindSponsorshipByPair(ctx context.Context, godfatherID, godsonID string) (*domain.Sponsorship, error) {
	if m.FindByPairError != nil {
		return nil, m.FindByPairError
	}
	return m.Store.FindSponsorshipByPair(ctx, godfatherID, godsonID)
}

func (m *MockRepository) AcceptSponsorship(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	m.AcceptCalls = append(m.AcceptCalls, id)
	injected := m.AcceptSponsorshipError
	m.mu.Unlock()

	if injected != nil {
		return false, injected
	}
	return m.Store.AcceptSponsorship(ctx, id)
}

// FindSponsorship runs AfterFindSponsorship, when set, once the row is read.
// Tests use it to line up concurrent callers behind the same snapshot.
func (m *MockRepository) FindSponsorship(ctx context.Context, id string) (*domain.Sponsorship, error) {
	sp, err := m.Store.FindSponsorship(ctx, id)
	m.mu.Lock()
	hook := m.AfterFindSponsorship
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	return sp, err
}

func (m *MockRepository) DeleteSponsorship(ctx context.Context, id string) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, id)
	injected := m.DeleteSponsorshipError
	m.mu.Unlock()

	if injected != nil {
		return injected
	}
	return m.Store.DeleteSponsorship(ctx, id)
}

func (m *MockRepository) NearestCandidates(ctx context.Context, origin domain.Point, excludeUserID string, excludeRole domain.Role) ([]domain.Candidate, error) {
	if m.NearestCandidatesError != nil {
		return nil, m.NearestCandidatesError
	}
	return m.Store.NearestCandidates(ctx, origin, excludeUserID, excludeRole)
}

func (m *MockRepository) PartnerIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	if m.PartnerIDsError != nil {
		return nil, m.PartnerIDsError
	}
	return m.Store.PartnerIDs(ctx, userID)
}

func (m *MockRepository) AcceptCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.AcceptCalls)
}
