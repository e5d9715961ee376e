package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/openclassify/reviewcircle/internal/social"
)

// writeError translates service failures into HTTP responses. Expected
// conditions map to their status codes; anything else is logged and
// reported as a 500.
func writeError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, social.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, social.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, social.ErrInvalidOperation):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &verrs):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Println("internal error:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
