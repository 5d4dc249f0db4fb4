package notification

import "time"

// Notification type tags. The *_created variants mark the single
// author-acknowledgement record written alongside each fan-out batch.
const (
	TypeTask         = "task"
	TypeAnnouncement = "announcement"
	TypePoll         = "poll"

	createdSuffix = "_created"
)

// MessageBudget is the number of visible characters a notification message
// keeps before being cut off.
const MessageBudget = 10

type Notification struct {
	ID          string    `json:"id" db:"id"`
	SectionID   string    `json:"section_id" db:"section_id"`
	AuthorID    string    `json:"author_id" db:"author_id"`
	AuthorName  string    `json:"author_name" db:"author_name"`
	RecipientID string    `json:"recipient_id" db:"recipient_id"`
	Title       string    `json:"title" db:"title"`
	Message     string    `json:"message" db:"message"` // truncated to MessageBudget
	Type        string    `json:"type" db:"type"`
	RelatedID   string    `json:"related_id" db:"related_id"`
	IsRead      bool      `json:"is_read" db:"is_read"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// IsAuthorAck reports whether this is the author-acknowledgement record of a fan-out.
func (n *Notification) IsAuthorAck() bool {
	return len(n.Type) > len(createdSuffix) && n.Type[len(n.Type)-len(createdSuffix):] == createdSuffix
}

// Event is one authoring action (new task / poll / announcement) to fan out.
type Event struct {
	SectionID  string
	AuthorID   string
	AuthorName string
	Title      string
	Message    string
	Type       string // TypeTask | TypeAnnouncement | TypePoll
	RelatedID  string
}

// Result tells apart "records exist but push failed" from "nothing happened".
type Result struct {
	Persisted  bool `json:"persisted"`
	Dispatched bool `json:"dispatched"`
	Created    int  `json:"created"` // roster size + 1 author ack
}
