package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/openclassify/reviewcircle/internal/auth"
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
	if err := db.AutoMigrate(models.User{}, models.Ticket{}, models.Review{}, models.UserFollow{}); err != nil {
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

// buildTestRouter wires the subscription and feed routes the way main
// does, minus sessions: the viewer id is injected straight into the
// request context.
func buildTestRouter(db *gorm.DB, viewerID uint) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), viewerID)))
		})
	})
	r.Get("/api/feed", func(w http.ResponseWriter, req *http.Request) {
		FeedHandler(w, req, db)
	})
	r.Post("/api/subscriptions", func(w http.ResponseWriter, req *http.Request) {
		FollowHandler(w, req, db)
	})
	r.Delete("/api/subscriptions/{id}", func(w http.ResponseWriter, req *http.Request) {
		UnfollowHandler(w, req, db)
	})
	return r
}

func TestFollowEndpoint(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	router := buildTestRouter(db, alice.ID)

	req := httptest.NewRequest(http.MethodPost, "/api/subscriptions", strings.NewReader(`{"username":"bob"}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(body["message"], "bob") {
		t.Fatalf("confirmation should name the followed user, got %q", body["message"])
	}
}

func TestFollowEndpointRejectsSelf(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")
	router := buildTestRouter(db, alice.ID)

	req := httptest.NewRequest(http.MethodPost, "/api/subscriptions", strings.NewReader(`{"username":"alice"}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for self-follow, got %d", resp.Code)
	}
}

func TestFollowEndpointUnknownUser(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")
	router := buildTestRouter(db, alice.ID)

	req := httptest.NewRequest(http.MethodPost, "/api/subscriptions", strings.NewReader(`{"username":"nobody"}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", resp.Code)
	}
}

func TestUnfollowEndpointIdempotent(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	router := buildTestRouter(db, alice.ID)

	url := "/api/subscriptions/" + strconv.FormatUint(uint64(bob.ID), 10)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodDelete, url, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("unfollow attempt %d: expected 200, got %d", i+1, resp.Code)
		}
	}
}

func TestFeedEndpoint(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	if err := db.Create(&models.UserFollow{UserID: bob.ID, FollowedID: alice.ID}).Error; err != nil {
		t.Fatalf("create follow: %v", err)
	}
	if err := db.Create(&models.Ticket{UserID: alice.ID, Title: "Blender X"}).Error; err != nil {
		t.Fatalf("create ticket: %v", err)
	}

	router := buildTestRouter(db, bob.ID)
	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Items []struct {
			Kind             string `json:"kind"`
			ShowReviewPrompt bool   `json:"showReviewPrompt"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if len(body.Items) != 1 {
		t.Fatalf("expected 1 feed item, got %d", len(body.Items))
	}
	if body.Items[0].Kind != "TICKET" || !body.Items[0].ShowReviewPrompt {
		t.Fatalf("expected review prompt on followed user's ticket, got %+v", body.Items[0])
	}
}
