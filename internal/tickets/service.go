package tickets

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/openclassify/reviewcircle/internal/social"
	"github.com/openclassify/reviewcircle/internal/storage"
	"github.com/openclassify/reviewcircle/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CanMutate reports whether actorID may update or delete an entity
// owned by ownerID. Ownership is the only grant; there are no admin
// overrides here.
func CanMutate(actorID, ownerID uint) bool {
	return actorID == ownerID
}

// ImageUpload carries a pending ticket image from the form layer.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type TicketInput struct {
	Title       string `json:"title" validate:"required,max=128"`
	Description string `json:"description" validate:"max=2048"`
	Image       *ImageUpload
}

type ReviewInput struct {
	Headline string `json:"headline" validate:"required,max=128"`
	Rating   int    `json:"rating" validate:"min=0,max=5"`
	Body     string `json:"body" validate:"max=8192"`
}

// Service owns ticket and review persistence plus the image lifecycle.
// Every mutation runs in one transaction; image release is part of the
// operation, not a deferred event.
type Service struct {
	db       *gorm.DB
	images   storage.ImageStore
	validate *validator.Validate
}

func NewService(db *gorm.DB, images storage.ImageStore) *Service {
	return &Service{
		db:       db,
		images:   images,
		validate: validator.New(),
	}
}

func (s *Service) GetTicket(id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.Preload("User").First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ticket %d: %w", id, social.ErrNotFound)
		}
		return nil, err
	}
	return &ticket, nil
}

func (s *Service) GetReview(id uint) (*models.Review, error) {
	var review models.Review
	if err := s.db.Preload("User").Preload("Ticket").First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("review %d: %w", id, social.ErrNotFound)
		}
		return nil, err
	}
	return &review, nil
}

// CreateTicket persists a new ticket for ownerID, uploading its image
// first if one was provided.
func (s *Service) CreateTicket(ctx context.Context, ownerID uint, in TicketInput) (*models.Ticket, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	ticket := models.Ticket{
		UserID:      ownerID,
		Title:       in.Title,
		Description: in.Description,
	}

	if in.Image != nil {
		key, url, err := s.images.Put(ctx, in.Image.Filename, in.Image.ContentType, in.Image.Body)
		if err != nil {
			return nil, err
		}
		ticket.ImageKey = key
		ticket.ImageURL = url
	}

	if err := s.db.WithContext(ctx).Create(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

// UpdateTicket applies in to the ticket if actorID owns it. When the
// image is replaced the previous object is released as part of the same
// operation.
func (s *Service) UpdateTicket(ctx context.Context, actorID, ticketID uint, in TicketInput) (*models.Ticket, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	ticket, err := s.GetTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if !CanMutate(actorID, ticket.UserID) {
		return nil, fmt.Errorf("ticket %d: %w", ticketID, social.ErrForbidden)
	}

	oldKey := ticket.ImageKey
	ticket.Title = in.Title
	ticket.Description = in.Description

	if in.Image != nil {
		key, url, err := s.images.Put(ctx, in.Image.Filename, in.Image.ContentType, in.Image.Body)
		if err != nil {
			return nil, err
		}
		ticket.ImageKey = key
		ticket.ImageURL = url
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(ticket).Error; err != nil {
			return err
		}
		if in.Image != nil && oldKey != "" && oldKey != ticket.ImageKey {
			return s.images.Release(ctx, oldKey)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// DeleteTicket removes the ticket, its reviews, and its stored image.
func (s *Service) DeleteTicket(ctx context.Context, actorID, ticketID uint) error {
	ticket, err := s.GetTicket(ticketID)
	if err != nil {
		return err
	}
	if !CanMutate(actorID, ticket.UserID) {
		return fmt.Errorf("ticket %d: %w", ticketID, social.ErrForbidden)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ticket_id = ?", ticket.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(ticket).Error; err != nil {
			return err
		}
		return s.images.Release(ctx, ticket.ImageKey)
	})
}

// CreateReview attaches a review by ownerID to an existing ticket.
func (s *Service) CreateReview(ctx context.Context, ownerID, ticketID uint, in ReviewInput) (*models.Review, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	if _, err := s.GetTicket(ticketID); err != nil {
		return nil, err
	}

	review := models.Review{
		UserID:   ownerID,
		TicketID: ticketID,
		Headline: in.Headline,
		Rating:   in.Rating,
		Body:     in.Body,
	}
	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// CreateTicketWithReview creates a ticket and the author's own review
// of it atomically; if either insert fails, neither persists.
func (s *Service) CreateTicketWithReview(ctx context.Context, ownerID uint, tin TicketInput, rin ReviewInput) (*models.Ticket, *models.Review, error) {
	if err := s.validate.Struct(tin); err != nil {
		return nil, nil, err
	}
	if err := s.validate.Struct(rin); err != nil {
		return nil, nil, err
	}

	ticket := models.Ticket{
		UserID:      ownerID,
		Title:       tin.Title,
		Description: tin.Description,
	}
	if tin.Image != nil {
		key, url, err := s.images.Put(ctx, tin.Image.Filename, tin.Image.ContentType, tin.Image.Body)
		if err != nil {
			return nil, nil, err
		}
		ticket.ImageKey = key
		ticket.ImageURL = url
	}

	review := models.Review{
		UserID:   ownerID,
		Headline: rin.Headline,
		Rating:   rin.Rating,
		Body:     rin.Body,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ticket).Error; err != nil {
			return err
		}
		review.TicketID = ticket.ID
		return tx.Create(&review).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &ticket, &review, nil
}

// UpdateReview applies in to the review if actorID wrote it.
func (s *Service) UpdateReview(ctx context.Context, actorID, reviewID uint, in ReviewInput) (*models.Review, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	review, err := s.GetReview(reviewID)
	if err != nil {
		return nil, err
	}
	if !CanMutate(actorID, review.UserID) {
		return nil, fmt.Errorf("review %d: %w", reviewID, social.ErrForbidden)
	}

	review.Headline = in.Headline
	review.Rating = in.Rating
	review.Body = in.Body
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

func (s *Service) DeleteReview(ctx context.Context, actorID, reviewID uint) error {
	review, err := s.GetReview(reviewID)
	if err != nil {
		return err
	}
	if !CanMutate(actorID, review.UserID) {
		return fmt.Errorf("review %d: %w", reviewID, social.ErrForbidden)
	}
	return s.db.WithContext(ctx).Delete(review).Error
}
