package services

import (
	"fmt"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
)

func requestNotification(emitter, recipient *domain.User, sponsorshipID string) domain.Notification {
	body := fmt.Sprintf("%s would like to be your godfather", emitter.FirstName)
	if emitter.Role == domain.RoleGodson {
		body = fmt.Sprintf("%s would like you to be their godfather", emitter.FirstName)
	}
	return domain.Notification{
		TargetUserID: recipient.ID,
		PushToken:    recipient.PushToken,
		Title:        "New sponsorship request",
		Body:         body,
		Data: map[string]string{
			"type":           domain.NotificationSponsorshipRequested,
			"sponsorship_id": sponsorshipID,
			"from_user_id":   emitter.ID,
		},
	}
}

// acceptNotification is sent to the emitter, in the voice of the recipient who
// accepted. The wording follows the emitter's role.
func acceptNotification(emitter, recipient *domain.User, sponsorshipID string) domain.Notification {
	body := fmt.Sprintf("%s accepted your request: you are now my godson", recipient.FirstName)
	if emitter.Role == domain.RoleGodfather {
		body = fmt.Sprintf("%s accepted your request: you are now my godfather", recipient.FirstName)
	}
	return domain.Notification{
		TargetUserID: emitter.ID,
		PushToken:    emitter.PushToken,
		Title:        "Sponsorship accepted",
		Body:         body,
		Data: map[string]string{
			"type":           domain.NotificationSponsorshipAccepted,
			"sponsorship_id": sponsorshipID,
			"from_user_id":   recipient.ID,
		},
	}
}
