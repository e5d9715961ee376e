package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/openclassify/reviewcircle/internal/auth"
	"github.com/openclassify/reviewcircle/internal/tickets"
)

// ticketInputFromForm reads the multipart ticket form. The image part
// is optional; when present its stream is handed to the service, which
// owns the upload.
func ticketInputFromForm(r *http.Request) (tickets.TicketInput, error) {
	in := tickets.TicketInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == http.ErrMissingFile:
		return in, nil
	case err != nil:
		return in, err
	}

	in.Image = &tickets.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	return in, nil
}

func CreateTicketHandler(w http.ResponseWriter, r *http.Request, svc *tickets.Service) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	in, err := ticketInputFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ticket, err := svc.CreateTicket(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(ticket)
}

func UpdateTicketHandler(w http.ResponseWriter, r *http.Request, svc *tickets.Service) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	ticketID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid ticket ID", http.StatusBadRequest)
		return
	}

	in, err := ticketInputFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ticket, err := svc.UpdateTicket(r.Context(), userID, uint(ticketID), in)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ticket)
}

func DeleteTicketHandler(w http.ResponseWriter, r *http.Request, svc *tickets.Service) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	ticketID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid ticket ID", http.StatusBadRequest)
		return
	}

	if err := svc.DeleteTicket(r.Context(), userID, uint(ticketID)); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"message": "Ticket deleted"})
}

// CreateTicketWithReviewHandler creates a ticket and the author's own
// review of it in one request.
func CreateTicketWithReviewHandler(w http.ResponseWriter, r *http.Request, svc *tickets.Service) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	tin, err := ticketInputFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rating, err := strconv.Atoi(r.FormValue("rating"))
	if err != nil {
		http.Error(w, "Invalid rating", http.StatusBadRequest)
		return
	}
	rin := tickets.ReviewInput{
		Headline: r.FormValue("headline"),
		Rating:   rating,
		Body:     r.FormValue("body"),
	}

	ticket, review, err := svc.CreateTicketWithReview(r.Context(), userID, tin, rin)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"ticket": ticket, "review": review})
}
