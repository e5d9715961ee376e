package feed

import (
	"time"

	"github.com/openclassify/reviewcircle/models"
)

// Kind discriminates the two item shapes a feed can carry.
type Kind string

const (
	KindTicket Kind = "TICKET"
	KindReview Kind = "REVIEW"
)

// Item is one entry of a merged feed. Exactly one of Ticket and Review
// is set, selected by Kind. The shared fields exist so callers can sort
// and attribute items without switching on the payload.
type Item struct {
	Kind      Kind      `json:"kind"`
	ID        uint      `json:"id"`
	OwnerID   uint      `json:"ownerID"`
	CreatedAt time.Time `json:"createdAt"`

	Ticket *models.Ticket `json:"ticket,omitempty"`
	Review *models.Review `json:"review,omitempty"`

	// Ticket-only annotations for the presentation layer.
	HasReview        bool `json:"hasReview,omitempty"`
	ShowReviewPrompt bool `json:"showReviewPrompt,omitempty"`
}

func ticketItem(t models.Ticket) Item {
	ticket := t
	return Item{
		Kind:      KindTicket,
		ID:        t.ID,
		OwnerID:   t.UserID,
		CreatedAt: t.CreatedAt,
		Ticket:    &ticket,
	}
}

func reviewItem(r models.Review) Item {
	review := r
	return Item{
		Kind:      KindReview,
		ID:        r.ID,
		OwnerID:   r.UserID,
		CreatedAt: r.CreatedAt,
		Review:    &review,
	}
}
