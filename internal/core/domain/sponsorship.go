package domain

import "time"

// Sponsorship links a godfather and a godson. Emitter and recipient are the
// same two users, split by who sent the request.
type Sponsorship struct {
	ID          string    `json:"sponsorship_id"`
	GodfatherID string    `json:"godfather_id"`
	GodsonID    string    `json:"godson_id"`
	EmitterID   string    `json:"emitter_id"`
	RecipientID string    `json:"recipient_id"`
	Validated   bool      `json:"validated"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasParty reports whether userID is the godfather or the godson of s.
func (s *Sponsorship) HasParty(userID string) bool {
	return s.GodfatherID == userID || s.GodsonID == userID
}

// Direction selects which side of pending requests to list.
type Direction string

const (
	DirectionReceived Direction = "received"
	DirectionSent     Direction = "sent"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionReceived, DirectionSent:
		return Direction(s), nil
	case "":
		return DirectionReceived, nil
	default:
		return "", NewError(KindInvalid, "type must be one of received, sent")
	}
}

// Counterpart is the other party of a validated sponsorship, as listed to a
// godfather (his godchildren) or a godson (his godfather).
type Counterpart struct {
	UserID          string    `json:"user_id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Phone           string    `json:"tel"`
	Address         string    `json:"address"`
	SponsorshipID   string    `json:"sponsorship_id"`
	SponsorshipDate time.Time `json:"sponsorship_date"`
}
