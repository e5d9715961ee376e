package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/markbates/goth/gothic"
	"github.com/openclassify/reviewcircle/internal/auth"
	"github.com/openclassify/reviewcircle/models"
	"gorm.io/gorm"
)

func UserLoginHandler(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		log.Println("Failed to complete auth:", err)
		http.Error(w, "Authentication failed", http.StatusUnauthorized)
		return
	}

	var dbUser models.User
	if err := db.Where("email = ?", user.Email).First(&dbUser).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			dbUser = models.User{
				Username: usernameFromProfile(user.NickName, user.Name, user.Email),
				Email:    user.Email,
			}
			if err := db.Create(&dbUser).Error; err != nil {
				log.Println("Failed to create user:", err)
				http.Error(w, "Failed to create user", http.StatusInternalServerError)
				return
			}
		} else {
			log.Println("Database error:", err)
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
	}

	session, err := gothic.Store.Get(r, auth.SessionName)
	if err != nil {
		log.Println("Failed to get session:", err)
		http.Error(w, "Failed to get session", http.StatusInternalServerError)
		return
	}
	session.Values["user_id"] = dbUser.ID

	if err := session.Save(r, w); err != nil {
		log.Println("Failed to save session:", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/api/feed", http.StatusTemporaryRedirect)
}

func GetUserHandler(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	var user models.User
	result := db.Preload("Tickets").Preload("Reviews").First(&user, userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		http.Error(w, result.Error.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// usernameFromProfile picks a display name from whatever the OAuth
// provider filled in, falling back to the email's local part.
func usernameFromProfile(nickname, name, email string) string {
	if nickname != "" {
		return nickname
	}
	if name != "" {
		return name
	}
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
