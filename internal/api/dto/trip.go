package dto

import (
	"itinerary-service/internal/domain"
	"time"
)

type CoordinatesRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// PlanTripRequest needs either Home or HomeAddress.
type PlanTripRequest struct {
	UserID            string              `json:"user_id" validate:"omitempty,max=128"`
	StartDate         string              `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate           string              `json:"end_date" validate:"required,datetime=2006-01-02"`
	Home              *CoordinatesRequest `json:"home" validate:"required_without=HomeAddress"`
	HomeAddress       string              `json:"home_address" validate:"required_without=Home,max=256"`
	Mode              string              `json:"mode" validate:"omitempty,oneof=walking driving transit"`
	TimeZone          string              `json:"time_zone" validate:"omitempty,max=64,timezone"`
	MustSeeIDs        []string            `json:"must_see_ids" validate:"max=20,dive,required"`
	AvoidIDs          []string            `json:"avoid_ids" validate:"max=200,dive,required"`
	CategoryWeights   map[string]float64  `json:"category_weights" validate:"dive,gt=0,lte=10"`
	CategoryDurations map[string]int      `json:"category_duration_minutes" validate:"dive,gt=0,lte=600"`
}

type PlaceResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Score           float64 `json:"score"`
	Lat             float64 `json:"lat"`
	Lon             float64 `json:"lon"`
	DurationMinutes int     `json:"duration_minutes"`
}

type StopResponse struct {
	Order                     int            `json:"order"`
	Place                     *PlaceResponse `json:"place,omitempty"`
	StartTime                 time.Time      `json:"start_time"`
	EndTime                   time.Time      `json:"end_time"`
	DurationMinutes           int            `json:"duration_minutes"`
	TravelMinutesFromPrevious *int           `json:"travel_minutes_from_previous"`
	TravelInstructions        string         `json:"travel_instructions,omitempty"`
	Reason                    string         `json:"reason,omitempty"`
	IsMeal                    bool           `json:"is_meal,omitempty"`
}

type DayResponse struct {
	Date           string          `json:"date"`
	AnchorIDs      []string        `json:"anchor_ids"`
	Stops          []StopResponse  `json:"stops"`
	Leftovers      []PlaceResponse `json:"leftovers"`
	Degraded       bool            `json:"degraded"`
	DegradedReason string          `json:"degraded_reason,omitempty"`
}

type TripResponse struct {
	ID        string             `json:"id"`
	StartDate string             `json:"start_date"`
	EndDate   string             `json:"end_date"`
	Home      CoordinatesRequest `json:"home"`
	Days      []DayResponse      `json:"days"`
}

type ListPlacesResponse struct {
	Places []PlaceResponse `json:"places"`
}

func NewPlaceResponse(p domain.Place) PlaceResponse {
	return PlaceResponse{
		ID:              p.ID,
		Name:            p.Name,
		Category:        string(p.Category),
		Score:           p.Score,
		Lat:             p.Coordinates.Lat,
		Lon:             p.Coordinates.Lon,
		DurationMinutes: int(p.VisitDuration() / time.Minute),
	}
}

func NewPlaceResponses(places []domain.Place) []PlaceResponse {
	out := make([]PlaceResponse, 0, len(places))
	for _, p := range places {
		out = append(out, NewPlaceResponse(p))
	}
	return out
}

// NewTripResponse flattens a plan for JSON output.
func NewTripResponse(plan *domain.TripPlan) TripResponse {
	res := TripResponse{
		ID:        plan.ID,
		StartDate: domain.DateKey(plan.StartDate),
		EndDate:   domain.DateKey(plan.EndDate),
		Home:      CoordinatesRequest{Lat: plan.Home.Lat, Lon: plan.Home.Lon},
		Days:      make([]DayResponse, 0, len(plan.Days)),
	}

	for _, d := range plan.Days {
		stops := make([]StopResponse, 0, len(d.Stops))
		for _, s := range d.Stops {
			sr := StopResponse{
				Order:              s.Order,
				StartTime:          s.StartTime,
				EndTime:            s.EndTime,
				DurationMinutes:    int(s.EstimatedDuration / time.Minute),
				TravelInstructions: s.TravelInstructions,
				Reason:             s.Reason,
				IsMeal:             s.IsMeal,
			}
			if s.Place != nil {
				p := NewPlaceResponse(*s.Place)
				sr.Place = &p
			}
			if s.TravelTimeFromPrevious != nil {
				m := int(s.TravelTimeFromPrevious.Round(time.Minute) / time.Minute)
				sr.TravelMinutesFromPrevious = &m
			}
			stops = append(stops, sr)
		}

		anchors := d.AnchorIDs
		if anchors == nil {
			anchors = []string{}
		}
		res.Days = append(res.Days, DayResponse{
			Date:           domain.DateKey(d.Date),
			AnchorIDs:      anchors,
			Stops:          stops,
			Leftovers:      NewPlaceResponses(d.Leftovers),
			Degraded:       d.Degraded,
			DegradedReason: d.DegradedReason,
		})
	}

	return res
}
