package core

import "context"

type (
	// PushMessage is a real-time nudge delivered to section members' devices.
	// Message carries the full, untruncated text; the durable notification
	// records are the source of truth, this is best-effort only.
	PushMessage struct {
		SectionID    string   `json:"section_id"`
		Title        string   `json:"title"`
		Message      string   `json:"message"`
		RecipientIDs []string `json:"recipient_ids"`
	}

	// PushService is any service that can dispatch push notifications.
	PushService interface {
		// Dispatch sends one push request for the whole batch.
		Dispatch(ctx context.Context, msg PushMessage) error
	}
)
