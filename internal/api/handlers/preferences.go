package handlers

import (
	"itinerary-service/internal/api/dto"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/services"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PreferencesHandler struct {
	Prefs  *services.PreferenceService
	Logger *zap.Logger
}

func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	p, err := h.Prefs.Get(r.Context(), userID)
	if err != nil {
		h.Logger.Error("load preferences failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, r, http.StatusOK, toPreferencesResponse(userID, p))
}

// Put replaces the user's stored preferences.
func (h *PreferencesHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req dto.PreferencesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p := domain.UserPreferences{
		CategoryWeights:   toCategoryWeights(req.CategoryWeights),
		CategoryDurations: toCategoryDurations(req.CategoryDurations),
		MustSeeIDs:        req.MustSeeIDs,
		AvoidIDs:          req.AvoidIDs,
	}
	if err := h.Prefs.Put(r.Context(), userID, p); err != nil {
		h.Logger.Error("save preferences failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, r, http.StatusOK, toPreferencesResponse(userID, p))
}

func toPreferencesResponse(userID string, p domain.UserPreferences) dto.PreferencesResponse {
	res := dto.PreferencesResponse{
		UserID:            userID,
		CategoryWeights:   make(map[string]float64, len(p.CategoryWeights)),
		CategoryDurations: make(map[string]int, len(p.CategoryDurations)),
		MustSeeIDs:        p.MustSeeIDs,
		AvoidIDs:          p.AvoidIDs,
	}
	for c, v := range p.CategoryWeights {
		res.CategoryWeights[string(c)] = v
	}
	for c, v := range p.CategoryDurations {
		res.CategoryDurations[string(c)] = v
	}
	if res.MustSeeIDs == nil {
		res.MustSeeIDs = []string{}
	}
	if res.AvoidIDs == nil {
		res.AvoidIDs = []string{}
	}
	return res
}
