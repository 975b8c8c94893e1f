package handlers

import (
	"context"
	"net/http"
	"time"

	"lifeTrackAPI/internal/badge"
	"lifeTrackAPI/middleware"
	"lifeTrackAPI/services"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

func (h *StatsHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	st, err := h.statsService.GetUserStats(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, st)
}

// ListBadges returns the full catalog annotated with which badges the user
// has earned, so clients can render locked and unlocked states together.
func (h *StatsHandler) ListBadges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	st, err := h.statsService.GetUserStats(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type badgeStatus struct {
		badge.Badge
		Earned bool `json:"earned"`
	}
	out := make([]badgeStatus, 0, len(badge.Catalog))
	for _, b := range badge.Catalog {
		out = append(out, badgeStatus{Badge: b, Earned: st.HasBadge(b.ID)})
	}

	respondWithJSON(w, http.StatusOK, out)
}
