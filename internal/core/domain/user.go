package domain

import (
	"fmt"
	"time"
)

// Role is the closed set of enrollment roles. Only RoleGodfather and
// RoleGodson are valid; use ParseRole for any value coming from outside.
type Role string

const (
	RoleGodfather Role = "godfather"
	RoleGodson    Role = "godson"
)

// ParseRole converts a raw string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleGodfather:
		return RoleGodfather, nil
	case RoleGodson:
		return RoleGodson, nil
	default:
		return "", NewError(KindInvalid, fmt.Sprintf("unknown role %q", s))
	}
}

func (r Role) Valid() bool {
	return r == RoleGodfather || r == RoleGodson
}

// Counterpart returns the role a user of role r can be paired with.
func (r Role) Counterpart() Role {
	if r == RoleGodfather {
		return RoleGodson
	}
	return RoleGodfather
}

func (r Role) String() string {
	return string(r)
}

// Point is a WGS-84 coordinate in degrees.
type Point struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

func (p Point) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

type Address struct {
	Street   string `json:"address"`
	City     string `json:"city"`
	ZipCode  string `json:"zip_code"`
	Location Point  `json:"location"`
}

type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"tel"`
	Email        string    `json:"email"`
	ActivityArea string    `json:"activity_area"`
	Role         Role      `json:"role"`
	Address      *Address  `json:"address,omitempty"`
	PushToken    string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Location returns the user's coordinates, or false if no address is registered.
func (u *User) Location() (Point, bool) {
	if u.Address == nil {
		return Point{}, false
	}
	return u.Address.Location, true
}

func (u *User) HasPushToken() bool {
	return u.PushToken != ""
}

// PublicProfile is what other users may see about someone. It is built
// field by field in NewPublicProfile; add a field here only on purpose.
type PublicProfile struct {
	ID           string `json:"id"`
	FirstName    string `json:"first_name"`
	ActivityArea string `json:"activity_area"`
	Address      string `json:"address,omitempty"`
	Role         Role   `json:"role"`
}

func NewPublicProfile(u *User) PublicProfile {
	p := PublicProfile{
		ID:           u.ID,
		FirstName:    u.FirstName,
		ActivityArea: u.ActivityArea,
		Role:         u.Role,
	}
	if u.Address != nil {
		p.Address = u.Address.Street
	}
	return p
}

// Candidate is one row of a proximity search.
type Candidate struct {
	PublicProfile
	Distance  float64 `json:"distance"`
	Contacted bool    `json:"contacted"`
}

// ProfileWithDistance is a public profile seen from another user's location.
type ProfileWithDistance struct {
	PublicProfile
	Distance *float64 `json:"distance,omitempty"`
}
