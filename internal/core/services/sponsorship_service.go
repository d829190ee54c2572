package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/ports"
)

// SponsorshipService drives the request / accept / delete lifecycle of
// sponsorships between godfathers and godsons.
type SponsorshipService struct {
	users        ports.UserRepository
	sponsorships ports.SponsorshipRepository
	notifier     ports.Notifier
	opts         serviceOptions
}

var _ ports.SponsorshipService = (*SponsorshipService)(nil)

func NewSponsorshipService(
	users ports.UserRepository,
	sponsorships ports.SponsorshipRepository,
	notifier ports.Notifier,
	opts ...Option,
) *SponsorshipService {
	return &SponsorshipService{
		users:        users,
		sponsorships: sponsorships,
		notifier:     notifier,
		opts:         buildOptions(opts),
	}
}

// CreateSponsorship records a pending request from requesterID, who must be
// one of the two parties, to the other party.
func (s *SponsorshipService) CreateSponsorship(
	ctx context.Context,
	godfatherID, godsonID, requesterID string,
) (*domain.Sponsorship, error) {
	if requesterID != godfatherID && requesterID != godsonID {
		return nil, domain.Forbidden("not allowed to create a sponsorship for someone else")
	}
	if godfatherID == godsonID {
		return nil, domain.Forbidden("not allowed to create a sponsorship for yourself")
	}

	godfather, err := s.requireRole(ctx, godfatherID, domain.RoleGodfather)
	if err != nil {
		return nil, err
	}
	godson, err := s.requireRole(ctx, godsonID, domain.RoleGodson)
	if err != nil {
		return nil, err
	}

	_, err = s.sponsorships.FindSponsorshipByPair(ctx, godfatherID, godsonID)
	switch {
	case err == nil:
		s.opts.metrics.IncSponsorshipConflict()
		return nil, domain.Conflict("sponsorship already exists")
	case !errors.Is(err, ports.ErrNotFound):
		return nil, fmt.Errorf("lookup sponsorship: %w", err)
	}

	emitter, recipient := godfather, godson
	if requesterID == godsonID {
		emitter, recipient = godson, godfather
	}

	sponsorship := domain.Sponsorship{
		ID:          s.opts.newID(),
		GodfatherID: godfatherID,
		GodsonID:    godsonID,
		EmitterID:   emitter.ID,
		RecipientID: recipient.ID,
		Validated:   false,
		CreatedAt:   s.opts.now().UTC(),
	}

	// The store's uniqueness constraint settles concurrent creates for the
	// same pair that both passed the lookup above.
	if err := s.sponsorships.CreateSponsorship(ctx, sponsorship); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			s.opts.metrics.IncSponsorshipConflict()
			return nil, domain.Conflict("sponsorship already exists")
		}
		return nil, fmt.Errorf("create sponsorship: %w", err)
	}
	s.opts.metrics.IncSponsorshipCreated()

	s.opts.logger.InfoContext(ctx, "sponsorship requested",
		"sponsorship_id", sponsorship.ID,
		"emitter_id", sponsorship.EmitterID,
		"recipient_id", sponsorship.RecipientID,
	)

	if recipient.HasPushToken() {
		s.notify(ctx, requestNotification(emitter, recipient, sponsorship.ID))
	}

	return &sponsorship, nil
}

// GetAwaitingRequests lists the user's pending requests, either those they
// received or those they sent.
func (s *SponsorshipService) GetAwaitingRequests(
	ctx context.Context,
	userID string,
	direction domain.Direction,
) ([]domain.Sponsorship, error) {
	if direction != domain.DirectionReceived && direction != domain.DirectionSent {
		return nil, domain.Invalid("type must be one of received, sent")
	}
	requests, err := s.sponsorships.ListPending(ctx, userID, direction)
	if err != nil {
		return nil, fmt.Errorf("list pending sponsorships: %w", err)
	}
	return requests, nil
}

// AcceptSponsorship validates a pending request. Only the recipient may
// accept; accepting an already validated sponsorship is a no-op.
func (s *SponsorshipService) AcceptSponsorship(ctx context.Context, userID, sponsorshipID string) error {
	sponsorship, err := s.findSponsorship(ctx, sponsorshipID)
	if err != nil {
		return err
	}
	if sponsorship.RecipientID != userID {
		return domain.Forbidden("not allowed to validate this sponsorship request")
	}
	if sponsorship.Validated {
		return nil
	}

	// The snapshot above may be stale; only the caller whose update flips the
	// row goes on to notify.
	changed, err := s.sponsorships.AcceptSponsorship(ctx, sponsorshipID)
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrNotFound):
			return domain.NotFound(fmt.Sprintf("unknown sponsorship id %s", sponsorshipID))
		case errors.Is(err, ports.ErrDuplicate):
			s.opts.metrics.IncSponsorshipConflict()
			return domain.Conflict("this godson already has a godfather")
		default:
			return fmt.Errorf("accept sponsorship: %w", err)
		}
	}
	if !changed {
		return nil
	}
	s.opts.metrics.IncSponsorshipAccepted()

	s.opts.logger.InfoContext(ctx, "sponsorship accepted",
		"sponsorship_id", sponsorship.ID,
		"godfather_id", sponsorship.GodfatherID,
		"godson_id", sponsorship.GodsonID,
	)

	// The transition is committed; failing to load either party only costs
	// the notification.
	emitter, err := s.users.FindByID(ctx, sponsorship.EmitterID)
	if err != nil {
		s.opts.logger.WarnContext(ctx, "skipping acceptance notification", "user_id", sponsorship.EmitterID, "error", err)
		return nil
	}
	if !emitter.HasPushToken() {
		return nil
	}
	recipient, err := s.users.FindByID(ctx, sponsorship.RecipientID)
	if err != nil {
		s.opts.logger.WarnContext(ctx, "skipping acceptance notification", "user_id", sponsorship.RecipientID, "error", err)
		return nil
	}
	s.notify(ctx, acceptNotification(emitter, recipient, sponsorship.ID))
	return nil
}

// DeleteSponsorship removes a sponsorship, pending or validated. Either named
// party may delete it.
func (s *SponsorshipService) DeleteSponsorship(ctx context.Context, userID, sponsorshipID string) error {
	sponsorship, err := s.findSponsorship(ctx, sponsorshipID)
	if err != nil {
		return err
	}
	if !sponsorship.HasParty(userID) {
		return domain.Forbidden("not allowed to remove a sponsorship which is not yours")
	}

	if err := s.sponsorships.DeleteSponsorship(ctx, sponsorshipID); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return domain.NotFound(fmt.Sprintf("unknown sponsorship id %s", sponsorshipID))
		}
		return fmt.Errorf("delete sponsorship: %w", err)
	}
	s.opts.metrics.IncSponsorshipDeleted()

	s.opts.logger.InfoContext(ctx, "sponsorship deleted", "sponsorship_id", sponsorshipID, "user_id", userID)
	return nil
}

// GetGodfatherGodchildren lists the godsons of a validated sponsorship with userID.
func (s *SponsorshipService) GetGodfatherGodchildren(ctx context.Context, userID string) ([]domain.Counterpart, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}
	children, err := s.sponsorships.ListGodchildren(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list godchildren: %w", err)
	}
	return children, nil
}

// GetGodsonGodfather returns the godfather of a godson. The store keeps at
// most one validated godfather per godson; should it ever hold more, the
// oldest wins and the anomaly is logged.
func (s *SponsorshipService) GetGodsonGodfather(ctx context.Context, userID string) (*domain.Counterpart, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleGodson {
		return nil, domain.Forbidden("only a godson can have a godfather")
	}

	godfathers, err := s.sponsorships.ListGodfathers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list godfathers: %w", err)
	}
	if len(godfathers) == 0 {
		return nil, domain.NotFound("no godfather found")
	}
	if len(godfathers) > 1 {
		s.opts.logger.WarnContext(ctx, "godson has several validated godfathers", "user_id", userID, "count", len(godfathers))
	}
	return &godfathers[0], nil
}

func (s *SponsorshipService) requireRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, domain.NotFound(fmt.Sprintf("unknown %s for id %s", role, userID))
		}
		return nil, fmt.Errorf("lookup %s: %w", role, err)
	}
	if user.Role != role {
		return nil, domain.Forbidden(fmt.Sprintf("id %s does not refer to a %s", userID, role))
	}
	return user, nil
}

func (s *SponsorshipService) findUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, domain.NotFound(fmt.Sprintf("no user found for id %s", userID))
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *SponsorshipService) findSponsorship(ctx context.Context, sponsorshipID string) (*domain.Sponsorship, error) {
	sponsorship, err := s.sponsorships.FindSponsorship(ctx, sponsorshipID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, domain.NotFound(fmt.Sprintf("unknown sponsorship id %s", sponsorshipID))
		}
		return nil, fmt.Errorf("lookup sponsorship: %w", err)
	}
	return sponsorship, nil
}

// notify hands n to the notifier under its own deadline, detached from the
// request's cancellation. Failures are logged and dropped.
func (s *SponsorshipService) notify(ctx context.Context, n domain.Notification) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.notifyTimeout)
	defer cancel()

	if err := s.notifier.Notify(ctx, n); err != nil {
		s.opts.metrics.IncNotificationFailed()
		s.opts.logger.WarnContext(ctx, "notification dispatch failed",
			"type", n.Data["type"],
			"target_user_id", n.TargetUserID,
			"error", err,
		)
	}
}
