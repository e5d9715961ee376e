package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/openclassify/reviewcircle/internal/auth"
	"github.com/openclassify/reviewcircle/internal/social"
	"gorm.io/gorm"
)

type followRequest struct {
	Username string `json:"username"`
}

// FollowHandler subscribes the viewer to another user by username.
func FollowHandler(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	var req followRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" {
		http.Error(w, "Username is required", http.StatusBadRequest)
		return
	}

	target, err := social.Follow(db, userID, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"message": fmt.Sprintf("You are now following %s", target.Username),
	})
}

// UnfollowHandler removes the viewer's subscription to the user in the
// URL. Unfollowing someone you never followed still succeeds.
func UnfollowHandler(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	targetID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	target, err := social.Unfollow(db, userID, uint(targetID))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"message": fmt.Sprintf("You are no longer following %s", target.Username),
	})
}

// SubscriptionsHandler lists who the viewer follows and who follows
// the viewer.
func SubscriptionsHandler(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	following, err := social.Following(db, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	followers, err := social.Followers(db, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"following": following,
		"followers": followers,
	})
}
