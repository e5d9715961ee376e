package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/openclassify/reviewcircle/internal/auth"
	"github.com/openclassify/reviewcircle/internal/feed"
	"gorm.io/gorm"
)

// FeedHandler returns the viewer's merged feed, newest first.
func FeedHandler(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	items, err := feed.Build(db, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"items": items})
}

// UserPostsHandler returns only the viewer's own tickets and reviews.
func UserPostsHandler(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	items, err := feed.UserPosts(db, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"items": items})
}
