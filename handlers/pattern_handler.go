package handlers

import (
	"context"
	"net/http"
	"time"

	"lifeTrackAPI/middleware"
	"lifeTrackAPI/services"
)

type PatternHandler struct {
	patternService *services.PatternService
}

func NewPatternHandler(patternService *services.PatternService) *PatternHandler {
	return &PatternHandler{
		patternService: patternService,
	}
}

// DetectPatterns runs the behavioral scan over the caller's recent records.
// The scan is read-only, so the window always ends at the current day.
func (h *PatternHandler) DetectPatterns(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	detected, err := h.patternService.Detect(ctx, userID, time.Now())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, p := range detected {
		middleware.ObservePatternDetected(string(p.Type))
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"patterns": detected,
		"count":    len(detected),
	})
}
