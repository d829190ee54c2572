package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/ports"
)

// SearchService finds sponsorship partners around a user.
type SearchService struct {
	users        ports.UserRepository
	sponsorships ports.SponsorshipRepository
	proximity    ports.ProximityReader
	opts         serviceOptions
}

var _ ports.SearchService = (*SearchService)(nil)

func NewSearchService(
	users ports.UserRepository,
	sponsorships ports.SponsorshipRepository,
	proximity ports.ProximityReader,
	opts ...Option,
) *SearchService {
	return &SearchService{
		users:        users,
		sponsorships: sponsorships,
		proximity:    proximity,
		opts:         buildOptions(opts),
	}
}

// GetClosestUsers returns users of the other role ordered by geodesic
// distance from userID's address. Equidistant candidates collapse into one.
// With withContacted, candidates already linked to userID by a sponsorship in
// any state are flagged.
func (s *SearchService) GetClosestUsers(ctx context.Context, userID string, withContacted bool) ([]domain.Candidate, error) {
	start := s.opts.now()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, domain.NotFound(fmt.Sprintf("no user found for id %s", userID))
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	origin, ok := user.Location()
	if !ok {
		return nil, domain.NotFound("no address registered for this user")
	}

	candidates, err := s.proximity.NearestCandidates(ctx, origin, user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("nearest candidates: %w", err)
	}

	if withContacted && len(candidates) > 0 {
		partners, err := s.sponsorships.PartnerIDs(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("list sponsorship partners: %w", err)
		}
		for i := range candidates {
			_, candidates[i].Contacted = partners[candidates[i].ID]
		}
	}

	s.opts.metrics.ObserveSearch(start, len(candidates))
	s.opts.logger.DebugContext(ctx, "proximity search", "user_id", userID, "candidates", len(candidates))
	return candidates, nil
}

// GetUserProfile returns the public profile of userID and, when both users
// have an address, its distance from requesterID.
func (s *SearchService) GetUserProfile(ctx context.Context, requesterID, userID string) (*domain.ProfileWithDistance, error) {
	target, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, domain.NotFound(fmt.Sprintf("no user found for id %s", userID))
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	profile := &domain.ProfileWithDistance{PublicProfile: domain.NewPublicProfile(target)}

	requester, err := s.users.FindByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, domain.NotFound(fmt.Sprintf("no user found for id %s", requesterID))
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	origin, ok := requester.Location()
	if !ok {
		return profile, nil
	}

	distance, err := s.proximity.DistanceTo(ctx, origin, userID)
	switch {
	case err == nil:
		profile.Distance = &distance
	case !errors.Is(err, ports.ErrNotFound):
		return nil, fmt.Errorf("distance to user: %w", err)
	}
	return profile, nil
}
