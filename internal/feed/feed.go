package feed

import (
	"sort"

	"github.com/openclassify/reviewcircle/internal/social"
	"github.com/openclassify/reviewcircle/models"
	"gorm.io/gorm"
)

// ViewableTickets returns the tickets the viewer's feed may show: the
// viewer's own tickets plus tickets of every followed user, minus any
// ticket its own owner has reviewed. The self-review exclusion applies
// to every viewer, the owner included; "my posts" is the only place a
// self-reviewed ticket still appears.
func ViewableTickets(db *gorm.DB, viewerID uint) ([]models.Ticket, error) {
	followed, err := social.FollowedIDs(db, viewerID)
	if err != nil {
		return nil, err
	}
	ownerIDs := append([]uint{viewerID}, followed...)

	var tickets []models.Ticket
	if err := db.Preload("User").
		Where("user_id IN ?", ownerIDs).
		Find(&tickets).Error; err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return tickets, nil
	}

	ids := make([]uint, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.ID)
	}

	// Ticket ids where the reviewer is the ticket's own owner.
	var selfReviewed []uint
	if err := db.Model(&models.Review{}).
		Joins("JOIN tickets ON tickets.id = reviews.ticket_id").
		Where("reviews.ticket_id IN ? AND reviews.user_id = tickets.user_id", ids).
		Distinct().
		Pluck("reviews.ticket_id", &selfReviewed).Error; err != nil {
		return nil, err
	}

	excluded := make(map[uint]bool, len(selfReviewed))
	for _, id := range selfReviewed {
		excluded[id] = true
	}

	visible := tickets[:0]
	for _, t := range tickets {
		if !excluded[t.ID] {
			visible = append(visible, t)
		}
	}
	return visible, nil
}

// ViewableReviews returns the reviews the viewer's feed may show: the
// viewer's own, those of followed users, and any review written against
// one of the viewer's tickets regardless of who wrote it. A review
// matching several criteria appears once.
func ViewableReviews(db *gorm.DB, viewerID uint) ([]models.Review, error) {
	followed, err := social.FollowedIDs(db, viewerID)
	if err != nil {
		return nil, err
	}
	ownerIDs := append([]uint{viewerID}, followed...)

	var reviews []models.Review
	err = db.Preload("User").Preload("Ticket").Preload("Ticket.User").
		Where("user_id IN ?", ownerIDs).
		Or("ticket_id IN (?)", db.Model(&models.Ticket{}).
			Select("id").Where("user_id = ?", viewerID)).
		Find(&reviews).Error
	return reviews, err
}

// Build assembles the viewer's feed: visible tickets and reviews tagged
// by kind, tickets annotated with review status, merged newest first.
func Build(db *gorm.DB, viewerID uint) ([]Item, error) {
	tickets, err := ViewableTickets(db, viewerID)
	if err != nil {
		return nil, err
	}
	reviews, err := ViewableReviews(db, viewerID)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(tickets)+len(reviews))
	for _, r := range reviews {
		items = append(items, reviewItem(r))
	}
	for _, t := range tickets {
		item := ticketItem(t)
		hasReview, err := ticketHasReview(db, t.ID)
		if err != nil {
			return nil, err
		}
		item.HasReview = hasReview
		item.ShowReviewPrompt = t.UserID != viewerID && !hasReview
		items = append(items, item)
	}

	sortItems(items)
	return items, nil
}

// UserPosts returns only the given user's own tickets and reviews,
// tagged and merged newest first. No visibility resolution: ownership
// is the whole filter, so self-reviewed tickets stay visible here.
func UserPosts(db *gorm.DB, userID uint) ([]Item, error) {
	var tickets []models.Ticket
	if err := db.Where("user_id = ?", userID).Find(&tickets).Error; err != nil {
		return nil, err
	}
	var reviews []models.Review
	if err := db.Preload("Ticket").
		Where("user_id = ?", userID).Find(&reviews).Error; err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(tickets)+len(reviews))
	for _, r := range reviews {
		items = append(items, reviewItem(r))
	}
	for _, t := range tickets {
		items = append(items, ticketItem(t))
	}

	sortItems(items)
	return items, nil
}

func ticketHasReview(db *gorm.DB, ticketID uint) (bool, error) {
	var n int64
	err := db.Model(&models.Review{}).
		Where("ticket_id = ?", ticketID).
		Count(&n).Error
	return n > 0, err
}

// sortItems orders newest first. Equal timestamps fall back to id
// descending, then reviews ahead of tickets, so repeated builds over
// unchanged data produce identical output.
func sortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if a.ID != b.ID {
			return a.ID > b.ID
		}
		return a.Kind == KindReview && b.Kind == KindTicket
	})
}
