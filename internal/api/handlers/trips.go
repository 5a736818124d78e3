package handlers

import (
	"errors"
	"itinerary-service/internal/api/dto"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/platform/obs"
	"itinerary-service/internal/ports"
	"itinerary-service/internal/services"
	"net/http"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TripHandler plans trips. Geocoder and Prefs are optional: without a
// geocoder home_address is rejected, without Prefs user_id is ignored.
// Dates are read in the request's time_zone, else Location, else UTC.
type TripHandler struct {
	Planner  *services.TripPlanner
	Prefs    *services.PreferenceService
	Geocoder ports.Geocoder
	Location *time.Location
	Logger   *zap.Logger
	Now      func() time.Time
}

// Plan builds a multi-day itinerary. Stored preferences for user_id are
// merged under the request's own values.
func (h *TripHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req dto.PlanTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	loc, err := h.location(req.TimeZone)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "unknown time_zone")
		return
	}
	start, _ := time.ParseInLocation("2006-01-02", req.StartDate, loc)
	end, _ := time.ParseInLocation("2006-01-02", req.EndDate, loc)

	home, ok := h.resolveHome(w, r, req)
	if !ok {
		return
	}

	prefs := domain.UserPreferences{
		CategoryWeights:   toCategoryWeights(req.CategoryWeights),
		CategoryDurations: toCategoryDurations(req.CategoryDurations),
		MustSeeIDs:        req.MustSeeIDs,
		AvoidIDs:          req.AvoidIDs,
	}
	if req.UserID != "" && h.Prefs != nil {
		stored, err := h.Prefs.Get(r.Context(), req.UserID)
		if err != nil {
			h.Logger.Error("load preferences failed", zap.String("user_id", req.UserID), zap.Error(err))
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		prefs = services.Merge(stored, prefs)
	}

	reqID := obs.RequestID(r.Context())
	progress := ports.ProgressFunc(func(ev domain.ProgressEvent) {
		h.Logger.Debug("plan progress",
			zap.String("req_id", reqID),
			zap.String("stage", ev.Stage),
			zap.Float64("progress", ev.Progress),
			zap.String("detail", ev.Detail),
		)
	})

	plan, err := h.Planner.PlanTrip(r.Context(), services.PlanTripRequest{
		StartDate:   start,
		EndDate:     end,
		Home:        &home,
		Preferences: prefs,
		Mode:        domain.TravelMode(req.Mode),
	}, progress)
	if err != nil {
		if domain.IsFatalPlanning(err) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("plan trip failed", zap.String("req_id", reqID), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if req.UserID != "" && h.Prefs != nil {
		tc := domain.TripContext{
			TripID:     plan.ID,
			UserID:     req.UserID,
			StartDate:  plan.StartDate,
			EndDate:    plan.EndDate,
			Home:       plan.Home,
			MustSeeIDs: prefs.MustSeeIDs,
			PlannedAt:  h.now(),
		}
		if err := h.Prefs.SaveTrip(r.Context(), tc); err != nil {
			// The plan itself is still valid.
			h.Logger.Warn("save trip context failed", zap.String("user_id", req.UserID), zap.Error(err))
		}
	}

	writeJSON(w, r, http.StatusOK, dto.NewTripResponse(plan))
}

// Last returns the most recent trip context saved for a user.
func (h *TripHandler) Last(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if h.Prefs == nil {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	tc, err := h.Prefs.LastTrip(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "no trip planned for user")
			return
		}
		h.Logger.Error("load trip context failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, tc)
}

func (h *TripHandler) resolveHome(w http.ResponseWriter, r *http.Request, req dto.PlanTripRequest) (domain.Coordinates, bool) {
	if req.Home != nil {
		return domain.Coordinates{Lat: req.Home.Lat, Lon: req.Home.Lon}, true
	}

	addr := strings.TrimSpace(req.HomeAddress)
	if addr == "" || h.Geocoder == nil {
		writeError(w, r, http.StatusBadRequest, domain.ErrMissingHome.Error())
		return domain.Coordinates{}, false
	}

	coords, err := h.Geocoder.Geocode(r.Context(), addr)
	if err != nil {
		h.Logger.Warn("geocode home failed", zap.String("address", addr), zap.Error(err))
		writeError(w, r, http.StatusBadRequest, "home_address could not be geocoded")
		return domain.Coordinates{}, false
	}
	return coords, true
}

func (h *TripHandler) location(name string) (*time.Location, error) {
	if name != "" {
		return time.LoadLocation(name)
	}
	if h.Location != nil {
		return h.Location, nil
	}
	return time.UTC, nil
}

func (h *TripHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
