package ports

import (
	"context"
	"time"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
)

type SponsorshipService interface {
	CreateSponsorship(ctx context.Context, godfatherID, godsonID, requesterID string) (*domain.Sponsorship, error)
	GetAwaitingRequests(ctx context.Context, userID string, direction domain.Direction) ([]domain.Sponsorship, error)
	AcceptSponsorship(ctx context.Context, userID, sponsorshipID string) error
	DeleteSponsorship(ctx context.Context, userID, sponsorshipID string) error
	GetGodfatherGodchildren(ctx context.Context, userID string) ([]domain.Counterpart, error)
	GetGodsonGodfather(ctx context.Context, userID string) (*domain.Counterpart, error)
}

type SearchService interface {
	GetClosestUsers(ctx context.Context, userID string, withContacted bool) ([]domain.Candidate, error)
	GetUserProfile(ctx context.Context, requesterID, userID string) (*domain.ProfileWithDistance, error)
}

type RegisterUserInput struct {
	FirstName    string
	LastName     string
	Phone        string
	Email        string
	ActivityArea string
	Role         string
	Street       string
	City         string
	ZipCode      string
	Longitude    float64
	Latitude     float64
}

// UpdateUserInput carries a partial profile update; nil fields are kept.
type UpdateUserInput struct {
	FirstName    *string
	LastName     *string
	Phone        *string
	Email        *string
	ActivityArea *string
	Street       *string
	City         *string
	ZipCode      *string
	Longitude    *float64
	Latitude     *float64
}

type RegistrationService interface {
	RegisterUser(ctx context.Context, in RegisterUserInput) (*domain.User, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	EmailAvailable(ctx context.Context, email string) (bool, error)
	UpdatePushToken(ctx context.Context, userID, token string) error
	UpdateUser(ctx context.Context, userID string, in UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

type SessionService interface {
	Logout(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
