package ports

import (
	"context"
	"errors"
	"time"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
)

// Store-level facts. Adapters return these (optionally wrapped) and services
// translate them into domain errors.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// CreateUser stores the user and its address atomically. Returns
	// ErrDuplicate when the e-mail is already registered.
	CreateUser(ctx context.Context, user domain.User) error
	// EmailTaken compares e-mails case-insensitively.
	EmailTaken(ctx context.Context, email string) (bool, error)
	UpdatePushToken(ctx context.Context, userID, token string) error
	// UpdateUser rewrites the profile columns and upserts the address in one
	// transaction. Role, push token and creation time are left untouched.
	// Returns ErrDuplicate when the new e-mail belongs to someone else.
	UpdateUser(ctx context.Context, user domain.User) error
	// DeleteUser removes the user together with its address and every
	// sponsorship it takes part in.
	DeleteUser(ctx context.Context, id string) error
}

type SponsorshipRepository interface {
	// CreateSponsorship returns ErrDuplicate if a row already exists for the
	// (godfather, godson) pair, including when a concurrent insert won.
	CreateSponsorship(ctx context.Context, s domain.Sponsorship) error
	FindSponsorship(ctx context.Context, id string) (*domain.Sponsorship, error)
	FindSponsorshipByPair(ctx context.Context, godfatherID, godsonID string) (*domain.Sponsorship, error)
	ListPending(ctx context.Context, userID string, direction domain.Direction) ([]domain.Sponsorship, error)
	// AcceptSponsorship marks the row validated and reports whether this call
	// flipped it; a row that was already validated yields false. Returns
	// ErrDuplicate when the godson already has another validated sponsorship.
	AcceptSponsorship(ctx context.Context, id string) (bool, error)
	DeleteSponsorship(ctx context.Context, id string) error
	ListGodchildren(ctx context.Context, godfatherID string) ([]domain.Counterpart, error)
	ListGodfathers(ctx context.Context, godsonID string) ([]domain.Counterpart, error)
	// PartnerIDs returns every user sharing a sponsorship with userID, in any
	// state and direction.
	PartnerIDs(ctx context.Context, userID string) (map[string]struct{}, error)
}

// ProximityReader is the geospatial read model. Distances are geodesic
// meters on the WGS-84 ellipsoid.
type ProximityReader interface {
	// NearestCandidates lists users with an address whose role differs from
	// excludeRole, never excludeUserID, by ascending distance from origin, one
	// row per distinct distance. Contacted is left false.
	NearestCandidates(ctx context.Context, origin domain.Point, excludeUserID string, excludeRole domain.Role) ([]domain.Candidate, error)
	// DistanceTo returns the distance from origin to userID's address, or
	// ErrNotFound if the user has none.
	DistanceTo(ctx context.Context, origin domain.Point, userID string) (float64, error)
}

type TokenStore interface {
	Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}
