package social

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/openclassify/reviewcircle/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models.User{}, models.UserFollow{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func edgeCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.UserFollow{}).Count(&n).Error; err != nil {
		t.Fatalf("count edges: %v", err)
	}
	return n
}

func TestFollowCreatesEdge(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	target, err := Follow(db, alice.ID, "bob")
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if target.ID != bob.ID {
		t.Fatalf("expected target bob, got %d", target.ID)
	}
	if n := edgeCount(t, db); n != 1 {
		t.Fatalf("expected 1 edge, got %d", n)
	}
}

func TestFollowIsIdempotent(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")
	seedUser(t, db, "bob")

	if _, err := Follow(db, alice.ID, "bob"); err != nil {
		t.Fatalf("first Follow: %v", err)
	}
	if _, err := Follow(db, alice.ID, "bob"); err != nil {
		t.Fatalf("second Follow should succeed: %v", err)
	}
	if n := edgeCount(t, db); n != 1 {
		t.Fatalf("expected exactly 1 edge after duplicate follow, got %d", n)
	}
}

func TestFollowUnknownUser(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")

	_, err := Follow(db, alice.ID, "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if n := edgeCount(t, db); n != 0 {
		t.Fatalf("expected no edges, got %d", n)
	}
}

func TestSelfFollowRejected(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")

	_, err := Follow(db, alice.ID, "alice")
	if !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("expected ErrInvalidOperation, got %v", err)
	}
	if n := edgeCount(t, db); n != 0 {
		t.Fatalf("self-follow must not create an edge, got %d", n)
	}
}

func TestUnfollowRemovesEdge(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	if _, err := Follow(db, alice.ID, "bob"); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	target, err := Unfollow(db, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("Unfollow: %v", err)
	}
	if target.Username != "bob" {
		t.Fatalf("expected bob, got %s", target.Username)
	}
	if n := edgeCount(t, db); n != 0 {
		t.Fatalf("expected 0 edges after unfollow, got %d", n)
	}
}

func TestUnfollowWithoutEdgeSucceeds(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	if _, err := Unfollow(db, alice.ID, bob.ID); err != nil {
		t.Fatalf("Unfollow on absent edge should succeed: %v", err)
	}
	if n := edgeCount(t, db); n != 0 {
		t.Fatalf("state changed by no-op unfollow: %d edges", n)
	}
}

func TestUnfollowUnknownUser(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")

	_, err := Unfollow(db, alice.ID, 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFollowingAndFollowers(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	if _, err := Follow(db, alice.ID, "bob"); err != nil {
		t.Fatalf("Follow bob: %v", err)
	}
	if _, err := Follow(db, alice.ID, "carol"); err != nil {
		t.Fatalf("Follow carol: %v", err)
	}
	if _, err := Follow(db, carol.ID, "alice"); err != nil {
		t.Fatalf("carol follows alice: %v", err)
	}

	following, err := Following(db, alice.ID)
	if err != nil {
		t.Fatalf("Following: %v", err)
	}
	if len(following) != 2 || following[0].ID != bob.ID || following[1].ID != carol.ID {
		t.Fatalf("unexpected following list: %v", following)
	}

	followers, err := Followers(db, alice.ID)
	if err != nil {
		t.Fatalf("Followers: %v", err)
	}
	if len(followers) != 1 || followers[0].ID != carol.ID {
		t.Fatalf("unexpected followers list: %v", followers)
	}
}

func TestFollowedIDs(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	if _, err := Follow(db, alice.ID, "bob"); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	ids, err := FollowedIDs(db, alice.ID)
	if err != nil {
		t.Fatalf("FollowedIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != bob.ID {
		t.Fatalf("unexpected ids: %v", ids)
	}
}
