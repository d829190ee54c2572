package domain

const (
	NotificationSponsorshipRequested = "sponsorship_requested"
	NotificationSponsorshipAccepted  = "sponsorship_accepted"
)

// Notification is a push message addressed to one user's device.
type Notification struct {
	TargetUserID string            `json:"target_user_id"`
	PushToken    string            `json:"push_token"`
	Title        string            `json:"title"`
	Body         string            `json:"body"`
	Data         map[string]string `json:"data,omitempty"`
}
