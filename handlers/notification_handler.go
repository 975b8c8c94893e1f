package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"lifeTrackAPI/internal/notification"
	"lifeTrackAPI/middleware"
	"lifeTrackAPI/services"
)

type NotificationHandler struct {
	dispatcher *services.AlertDispatcher
}

func NewNotificationHandler(dispatcher *services.AlertDispatcher) *NotificationHandler {
	return &NotificationHandler{
		dispatcher: dispatcher,
	}
}

func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req notification.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.dispatcher.RegisterDevice(ctx, userID, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Device registered"})
}
