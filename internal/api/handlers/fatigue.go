package handlers

import (
	"errors"
	"itinerary-service/internal/api/dto"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/services"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type FatigueHandler struct {
	Tracker *services.FatigueTracker
	Logger  *zap.Logger
}

func (h *FatigueHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	st, err := h.Tracker.Get(r.Context(), userID)
	if err != nil {
		h.fail(w, r, userID, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toFatigueResponse(userID, st))
}

// RecordSample folds one sensor window into the user's fatigue score.
func (h *FatigueHandler) RecordSample(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req dto.FatigueSampleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sample := services.FatigueSample{
		Sensors: domain.SensorWindow{
			Window:              time.Duration(req.WindowSeconds) * time.Second,
			HeartRateBPM:        req.HeartRateBPM,
			DistanceMeters:      req.DistanceMeters,
			ElevationGainMeters: req.ElevationGainMeters,
			TemperatureC:        req.TemperatureC,
			Rain:                domain.RainLevel(req.Rain),
		},
		Context: domain.ContextWindow{
			Transit:       domain.TransitMode(req.Transit),
			MinutesBehind: req.MinutesBehind,
		},
		Source: req.Source,
	}
	if req.Category != "" {
		sample.Context.Category = domain.ParseCategory(req.Category)
	}
	if req.At != nil {
		sample.Context.At = *req.At
	}
	if req.Profile != nil {
		sample.Profile = &domain.Profile{
			Sex:      domain.Sex(req.Profile.Sex),
			AgeYears: req.Profile.AgeYears,
			WeightKg: req.Profile.WeightKg,
		}
	}
	if sample.Source == "" {
		sample.Source = "sensor"
	}

	reading, err := h.Tracker.RecordSample(r.Context(), userID, sample)
	if err != nil {
		h.fail(w, r, userID, err)
		return
	}

	res := toFatigueResponse(userID, reading.State)
	res.Tier = string(reading.Estimate.Tier)
	res.Multiplier = reading.Modifiers.Multiplier
	writeJSON(w, r, http.StatusOK, res)
}

func (h *FatigueHandler) RecordRest(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req dto.RestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	st, err := h.Tracker.RecordRest(r.Context(), userID, time.Duration(req.Minutes)*time.Minute, domain.RestVenue(req.Venue))
	if err != nil {
		h.fail(w, r, userID, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toFatigueResponse(userID, st))
}

func (h *FatigueHandler) Reset(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := h.Tracker.Reset(r.Context(), userID); err != nil {
		h.fail(w, r, userID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FatigueHandler) fail(w http.ResponseWriter, r *http.Request, userID string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "no fatigue state for user")
		return
	}
	h.Logger.Error("fatigue request failed", zap.String("user_id", userID), zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}
