package handlers

import (
	"itinerary-service/internal/api/dto"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/ports"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// PlaceHandler exposes read-only access to the place catalogue.
type PlaceHandler struct {
	Places ports.PlaceProvider
	Logger *zap.Logger
}

// List returns places around ?lat=&lon=, best scored first. ?limit= trims the result.
func (h *PlaceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	origin := domain.Coordinates{Lat: lat, Lon: lon}
	if errLat != nil || errLon != nil || !origin.Valid() {
		writeError(w, r, http.StatusBadRequest, "lat and lon query parameters are required")
		return
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	places, err := h.Places.ListPlaces(r.Context(), origin)
	if err != nil {
		h.Logger.Error("list places failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if limit > 0 && len(places) > limit {
		places = places[:limit]
	}

	writeJSON(w, r, http.StatusOK, dto.ListPlacesResponse{Places: dto.NewPlaceResponses(places)})
}
