package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ridetrack/server/internal/api/middleware"
	"github.com/ridetrack/server/internal/domain"
	"github.com/ridetrack/server/internal/service"
)

type RideHandler struct {
	rideService *service.RideService
}

func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

func (h *RideHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	ride, err := h.rideService.StartRide(r.Context(), userID, groupID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrGroupNotFound):
			http.Error(w, "Group not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrNotGroupCreator):
			http.Error(w, "Only the group creator can start a ride", http.StatusForbidden)
		case errors.Is(err, domain.ErrRideAlreadyActive):
			http.Error(w, "A ride is already active for this group", http.StatusConflict)
		default:
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Ride started successfully!",
		"ride_id": ride.ID.String(),
	})
}

func (h *RideHandler) End(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	_, err = h.rideService.EndRide(r.Context(), userID, groupID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrGroupNotFound):
			http.Error(w, "Group not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrNotGroupCreator):
			http.Error(w, "Only the group creator can end a ride", http.StatusForbidden)
		case errors.Is(err, domain.ErrNoActiveRide):
			http.Error(w, "No active ride found for this group", http.StatusNotFound)
		default:
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Ride ended successfully."})
}

func (h *RideHandler) History(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	rides, err := h.rideService.RideHistory(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, domain.ErrGroupNotFound) {
			http.Error(w, "Group not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rides)
}
