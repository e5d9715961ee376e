package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint `gorm:"primarykey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Username  string         `gorm:"size:255;not null;unique" json:"username"`
	Email     string         `gorm:"size:255;not null;unique" json:"email"`
	Tickets   []Ticket       `json:"tickets,omitempty"`
	Reviews   []Review       `json:"reviews,omitempty"`
}

// Ticket is a request for a review of an item, optionally with an image
// stored in object storage (ImageKey holds the bucket key).
type Ticket struct {
	ID          uint `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	UserID      uint           `gorm:"not null;index" json:"userID"`
	User        *User          `json:"user,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Title       string         `gorm:"size:128;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	ImageKey    string         `json:"imageKey,omitempty"`
	ImageURL    string         `json:"imageURL,omitempty"`
	Reviews     []Review       `json:"reviews,omitempty"`
}

// Review rates a ticket's item from 0 to 5 stars. Its owner is the
// reviewer, independent of who owns the ticket.
type Review struct {
	ID        uint `gorm:"primarykey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;index" json:"userID"`
	User      *User          `json:"user,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	TicketID  uint           `gorm:"not null;index" json:"ticketID"`
	Ticket    *Ticket        `json:"ticket,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Headline  string         `gorm:"size:128;not null" json:"headline"`
	Rating    int            `gorm:"not null;check:rating >= 0 AND rating <= 5" json:"rating"`
	Body      string         `gorm:"type:text" json:"body"`
}

// UserFollow is a directed follow edge. The composite unique index makes
// concurrent duplicate follows impossible at the store level.
type UserFollow struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_user_followed" json:"userID"`
	User       *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	FollowedID uint      `gorm:"not null;uniqueIndex:idx_user_followed" json:"followedID"`
	Followed   *User     `json:"followed,omitempty" gorm:"foreignKey:FollowedID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
