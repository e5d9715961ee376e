package social

import (
	"errors"
	"fmt"

	"github.com/openclassify/reviewcircle/models"
	"gorm.io/gorm"
)

// Follow subscribes viewerID to targetUsername's content. Following an
// already-followed user is a no-op that still succeeds; following
// yourself is rejected. Returns the followed user for confirmation
// messages.
func Follow(db *gorm.DB, viewerID uint, targetUsername string) (*models.User, error) {
	var target models.User
	if err := db.Where("username = ?", targetUsername).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %q: %w", targetUsername, ErrNotFound)
		}
		return nil, err
	}

	if target.ID == viewerID {
		return nil, fmt.Errorf("cannot follow yourself: %w", ErrInvalidOperation)
	}

	edge := models.UserFollow{UserID: viewerID, FollowedID: target.ID}
	if err := db.Where("user_id = ? AND followed_id = ?", viewerID, target.ID).
		FirstOrCreate(&edge).Error; err != nil {
		return nil, err
	}

	return &target, nil
}

// Unfollow removes the viewer's follow edge to the given user. Removing
// an edge that does not exist succeeds and changes nothing.
func Unfollow(db *gorm.DB, viewerID, targetID uint) (*models.User, error) {
	var target models.User
	if err := db.First(&target, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", targetID, ErrNotFound)
		}
		return nil, err
	}

	if err := db.Where("user_id = ? AND followed_id = ?", viewerID, target.ID).
		Delete(&models.UserFollow{}).Error; err != nil {
		return nil, err
	}

	return &target, nil
}

// Following returns the users viewerID follows.
func Following(db *gorm.DB, viewerID uint) ([]models.User, error) {
	var users []models.User
	err := db.
		Joins("JOIN user_follows ON user_follows.followed_id = users.id").
		Where("user_follows.user_id = ?", viewerID).
		Order("users.username ASC").
		Find(&users).Error
	return users, err
}

// Followers returns the users following viewerID.
func Followers(db *gorm.DB, viewerID uint) ([]models.User, error) {
	var users []models.User
	err := db.
		Joins("JOIN user_follows ON user_follows.user_id = users.id").
		Where("user_follows.followed_id = ?", viewerID).
		Order("users.username ASC").
		Find(&users).Error
	return users, err
}

// FollowedIDs returns the ids of every user viewerID follows. The feed
// uses it to expand follow-based visibility (depth exactly 1, no
// transitive reach).
func FollowedIDs(db *gorm.DB, viewerID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.UserFollow{}).
		Where("user_id = ?", viewerID).
		Pluck("followed_id", &ids).Error
	return ids, err
}
