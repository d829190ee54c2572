package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/ports"
)

// RegistrationService enrolls users as godfather or godson and keeps their
// device push token.
type RegistrationService struct {
	userRepo ports.UserRepository
	opts     serviceOptions
}

var _ ports.RegistrationService = (*RegistrationService)(nil)

func NewRegistrationService(
	userRepo ports.UserRepository,
	opts ...Option,
) *RegistrationService {
	return &RegistrationService{
		userRepo: userRepo,
		opts:     buildOptions(opts),
	}
}

// RegisterUser creates a user and its address. Coordinates arrive already
// resolved; geocoding happens client-side.
func (s *RegistrationService) RegisterUser(ctx context.Context, in ports.RegisterUserInput) (*domain.User, error) {
	role, err := domain.ParseRole(strings.ToLower(strings.TrimSpace(in.Role)))
	if err != nil {
		return nil, err
	}
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	user := domain.User{
		ID:           s.opts.newID(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		Email:        strings.ToUpper(strings.TrimSpace(in.Email)),
		ActivityArea: strings.TrimSpace(in.ActivityArea),
		Role:         role,
		Address: &domain.Address{
			Street:  strings.TrimSpace(in.Street),
			City:    strings.TrimSpace(in.City),
			ZipCode: strings.TrimSpace(in.ZipCode),
			Location: domain.Point{
				Longitude: in.Longitude,
				Latitude:  in.Latitude,
			},
		},
		CreatedAt: s.opts.now().UTC(),
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, domain.Conflict("this email address is already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.opts.metrics.IncUserRegistered()
	s.opts.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)

	return &user, nil
}

func (s *RegistrationService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, domain.NotFound(fmt.Sprintf("no user found for id %s", userID))
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// EmailAvailable reports whether email can still be used to register.
func (s *RegistrationService) EmailAvailable(ctx context.Context, email string) (bool, error) {
	email, err := parseEmail(email)
	if err != nil {
		return false, err
	}
	taken, err := s.userRepo.EmailTaken(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return !taken, nil
}

// UpdatePushToken stores the user's device token. An empty token unregisters
// the device.
func (s *RegistrationService) UpdatePushToken(ctx context.Context, userID, token string) error {
	if err := s.userRepo.UpdatePushToken(ctx, userID, strings.TrimSpace(token)); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return domain.NotFound(fmt.Sprintf("no user found for id %s", userID))
		}
		return fmt.Errorf("update push token: %w", err)
	}
	return nil
}

// UpdateUser applies the non-nil fields of in to the user's profile. Role
// cannot change. Address fields may be sent alone; missing ones keep their
// stored value.
func (s *RegistrationService) UpdateUser(ctx context.Context, userID string, in ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	text := []struct {
		field string
		src   *string
		dst   *string
		must  bool
	}{
		{"first_name", in.FirstName, &user.FirstName, true},
		{"last_name", in.LastName, &user.LastName, true},
		{"tel", in.Phone, &user.Phone, false},
		{"activity_area", in.ActivityArea, &user.ActivityArea, false},
	}
	for _, f := range text {
		if f.src == nil {
			continue
		}
		v := strings.TrimSpace(*f.src)
		if f.must && v == "" {
			return nil, domain.Invalid(f.field + " is required")
		}
		*f.dst = v
	}

	if in.Email != nil {
		email, err := parseEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		user.Email = strings.ToUpper(email)
	}

	addr, changed, err := mergeAddress(user.Address, in)
	if err != nil {
		return nil, err
	}
	if changed {
		user.Address = addr
	}

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		switch {
		case errors.Is(err, ports.ErrDuplicate):
			return nil, domain.Conflict("this email address is already in use")
		case errors.Is(err, ports.ErrNotFound):
			return nil, domain.NotFound(fmt.Sprintf("no user found for id %s", userID))
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.opts.logger.InfoContext(ctx, "user updated", "user_id", user.ID)

	return user, nil
}

// DeleteUser removes the account. Its sponsorships go with it on both sides.
func (s *RegistrationService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.userRepo.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return domain.NotFound(fmt.Sprintf("no user found for id %s", userID))
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.opts.logger.InfoContext(ctx, "user deleted", "user_id", userID)
	return nil
}

// mergeAddress overlays the address fields of in on current. A user without a
// stored address must send all of them.
func mergeAddress(current *domain.Address, in ports.UpdateUserInput) (*domain.Address, bool, error) {
	if in.Street == nil && in.City == nil && in.ZipCode == nil && in.Longitude == nil && in.Latitude == nil {
		return current, false, nil
	}

	var addr domain.Address
	if current != nil {
		addr = *current
	} else if in.Street == nil || in.City == nil || in.ZipCode == nil || in.Longitude == nil || in.Latitude == nil {
		return nil, false, domain.Invalid("address, city, zip_code and coordinates are required together")
	}

	text := []struct {
		field string
		src   *string
		dst   *string
	}{
		{"address", in.Street, &addr.Street},
		{"city", in.City, &addr.City},
		{"zip_code", in.ZipCode, &addr.ZipCode},
	}
	for _, f := range text {
		if f.src == nil {
			continue
		}
		v := strings.TrimSpace(*f.src)
		if v == "" {
			return nil, false, domain.Invalid(f.field + " is required")
		}
		*f.dst = v
	}
	if in.Longitude != nil {
		addr.Location.Longitude = *in.Longitude
	}
	if in.Latitude != nil {
		addr.Location.Latitude = *in.Latitude
	}
	if !addr.Location.Valid() {
		return nil, false, domain.Invalid("coordinates are out of range")
	}
	return &addr, true, nil
}

func validateRegistration(in ports.RegisterUserInput) error {
	required := []struct {
		field, value string
	}{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"email", in.Email},
		{"address", in.Street},
		{"city", in.City},
		{"zip_code", in.ZipCode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return domain.Invalid(r.field + " is required")
		}
	}
	if _, err := parseEmail(in.Email); err != nil {
		return err
	}
	if !(domain.Point{Longitude: in.Longitude, Latitude: in.Latitude}).Valid() {
		return domain.Invalid("coordinates are out of range")
	}
	return nil
}

// parseEmail accepts a bare addr-spec only; display-name and angle-bracket
// forms are rejected.
func parseEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", domain.Invalid("email is not a valid address")
	}
	return addr.Address, nil
}
