// Package memory is an in-process implementation of the repository ports.
// It backs the service tests and local runs without Postgres.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/geo"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/ports"
)

// Store holds users and sponsorships behind a single mutex so that every
// check-then-write runs as one critical section.
type Store struct {
	mu           sync.RWMutex
	users        map[string]domain.User
	sponsorships map[string]domain.Sponsorship
}

var (
	_ ports.UserRepository        = (*Store)(nil)
	_ ports.SponsorshipRepository = (*Store)(nil)
	_ ports.ProximityReader       = (*Store)(nil)
)

func New() *Store {
	return &Store{
		users:        make(map[string]domain.User),
		sponsorships: make(map[string]domain.Sponsorship),
	}
}

func (s *Store) FindByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ports.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("user %s: %w", user.ID, ports.ErrDuplicate)
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return fmt.Errorf("email %s: %w", user.Email, ports.ErrDuplicate)
		}
	}
	s.users[user.ID] = *cloneUser(user)
	return nil
}

func (s *Store) EmailTaken(ctx context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) UpdatePushToken(ctx context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, ports.ErrNotFound)
	}
	u.PushToken = token
	s.users[userID] = u
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", user.ID, ports.ErrNotFound)
	}
	for id, existing := range s.users {
		if id != user.ID && strings.EqualFold(existing.Email, user.Email) {
			return fmt.Errorf("email %s: %w", user.Email, ports.ErrDuplicate)
		}
	}
	current.FirstName = user.FirstName
	current.LastName = user.LastName
	current.Phone = user.Phone
	current.Email = user.Email
	current.ActivityArea = user.ActivityArea
	if user.Address != nil {
		addr := *user.Address
		current.Address = &addr
	}
	s.users[user.ID] = current
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, ports.ErrNotFound)
	}
	delete(s.users, id)
	for spID, sp := range s.sponsorships {
		if sp.GodfatherID == id || sp.GodsonID == id {
			delete(s.sponsorships, spID)
		}
	}
	return nil
}

func (s *Store) CreateSponsorship(ctx context.Context, sp domain.Sponsorship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.sponsorships {
		if existing.GodfatherID == sp.GodfatherID && existing.GodsonID == sp.GodsonID {
			return fmt.Errorf("sponsorship %s/%s: %w", sp.GodfatherID, sp.GodsonID, ports.ErrDuplicate)
		}
	}
	s.sponsorships[sp.ID] = sp
	return nil
}

func (s *Store) FindSponsorship(ctx context.Context, id string) (*domain.Sponsorship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sp, ok := s.sponsorships[id]
	if !ok {
		return nil, fmt.Errorf("sponsorship %s: %w", id, ports.ErrNotFound)
	}
	return &sp, nil
}

func (s *Store) FindSponsorshipByPair(ctx context.Context, godfatherID, godsonID string) (*domain.Sponsorship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sp := range s.sponsorships {
		if sp.GodfatherID == godfatherID && sp.GodsonID == godsonID {
			return &sp, nil
		}
	}
	return nil, fmt.Errorf("sponsorship %s/%s: %w", godfatherID, godsonID, ports.ErrNotFound)
}

func (s *Store) ListPending(ctx context.Context, userID string, direction domain.Direction) ([]domain.Sponsorship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Sponsorship
	for _, sp := range s.sponsorships {
		if sp.Validated {
			continue
		}
		switch direction {
		case domain.DirectionReceived:
			if sp.RecipientID == userID {
				out = append(out, sp)
			}
		case domain.DirectionSent:
			if sp.EmitterID == userID {
				out = append(out, sp)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) AcceptSponsorship(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.sponsorships[id]
	if !ok {
		return false, fmt.Errorf("sponsorship %s: %w", id, ports.ErrNotFound)
	}
	if sp.Validated {
		return false, nil
	}
	for otherID, other := range s.sponsorships {
		if otherID != id && other.Validated && other.GodsonID == sp.GodsonID {
			return false, fmt.Errorf("godson %s already sponsored: %w", sp.GodsonID, ports.ErrDuplicate)
		}
	}
	sp.Validated = true
	s.sponsorships[id] = sp
	return true, nil
}

func (s *Store) DeleteSponsorship(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sponsorships[id]; !ok {
		return fmt.Errorf("sponsorship %s: %w", id, ports.ErrNotFound)
	}
	delete(s.sponsorships, id)
	return nil
}

func (s *Store) ListGodchildren(ctx context.Context, godfatherID string) ([]domain.Counterpart, error) {
	return s.counterparts(func(sp domain.Sponsorship) (string, bool) {
		return sp.GodsonID, sp.GodfatherID == godfatherID
	}), nil
}

func (s *Store) ListGodfathers(ctx context.Context, godsonID string) ([]domain.Counterpart, error) {
	return s.counterparts(func(sp domain.Sponsorship) (string, bool) {
		return sp.GodfatherID, sp.GodsonID == godsonID
	}), nil
}

// counterparts joins validated sponsorships selected by match with the user
// on the other side. Like the SQL join, users without an address are skipped.
func (s *Store) counterparts(match func(domain.Sponsorship) (string, bool)) []domain.Counterpart {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Counterpart
	for _, sp := range s.sponsorships {
		otherID, ok := match(sp)
		if !ok || !sp.Validated {
			continue
		}
		u, ok := s.users[otherID]
		if !ok || u.Address == nil {
			continue
		}
		out = append(out, domain.Counterpart{
			UserID:          u.ID,
			FirstName:       u.FirstName,
			LastName:        u.LastName,
			Phone:           u.Phone,
			Address:         u.Address.Street,
			SponsorshipID:   sp.ID,
			SponsorshipDate: sp.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SponsorshipDate.Equal(out[j].SponsorshipDate) {
			return out[i].SponsorshipID < out[j].SponsorshipID
		}
		return out[i].SponsorshipDate.Before(out[j].SponsorshipDate)
	})
	return out
}

func (s *Store) PartnerIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[string]struct{})
	for _, sp := range s.sponsorships {
		switch userID {
		case sp.GodfatherID:
			ids[sp.GodsonID] = struct{}{}
		case sp.GodsonID:
			ids[sp.GodfatherID] = struct{}{}
		}
	}
	return ids, nil
}

func (s *Store) NearestCandidates(ctx context.Context, origin domain.Point, excludeUserID string, excludeRole domain.Role) ([]domain.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []domain.Candidate
	for _, u := range s.users {
		if u.ID == excludeUserID || u.Role == excludeRole || u.Address == nil {
			continue
		}
		all = append(all, domain.Candidate{
			PublicProfile: domain.NewPublicProfile(&u),
			Distance:      geo.Distance(origin, u.Address.Location),
		})
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Distance == all[j].Distance {
			return all[i].ID < all[j].ID
		}
		return all[i].Distance < all[j].Distance
	})

	// one row per distance; ties keep the lowest id
	out := make([]domain.Candidate, 0, len(all))
	for _, c := range all {
		if len(out) > 0 && out[len(out)-1].Distance == c.Distance {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) DistanceTo(ctx context.Context, origin domain.Point, userID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok || u.Address == nil {
		return 0, fmt.Errorf("address of user %s: %w", userID, ports.ErrNotFound)
	}
	return geo.Distance(origin, u.Address.Location), nil
}

func cloneUser(u domain.User) *domain.User {
	if u.Address != nil {
		addr := *u.Address
		u.Address = &addr
	}
	return &u
}
