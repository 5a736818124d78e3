package handlers

import (
	"itinerary-service/internal/api/dto"
	"itinerary-service/internal/domain"
)

func toFatigueResponse(userID string, st domain.FatigueState) dto.FatigueResponse {
	trace := make([]dto.TraceResponse, 0, len(st.Trace))
	for _, t := range st.Trace {
		trace = append(trace, dto.TraceResponse{
			At:       t.At,
			Kcal:     t.Kcal,
			RawDelta: t.RawDelta,
			Score:    t.Score,
			Source:   t.Source,
		})
	}
	return dto.FatigueResponse{
		UserID:     userID,
		Score:      st.Score,
		KcalToday:  st.KcalToday,
		LastUpdate: st.LastUpdate,
		Source:     st.Source,
		Trace:      trace,
	}
}

func toCategoryWeights(in map[string]float64) map[domain.Category]float64 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[domain.Category]float64, len(in))
	for k, v := range in {
		out[domain.ParseCategory(k)] = v
	}
	return out
}

func toCategoryDurations(in map[string]int) map[domain.Category]int {
	if len(in) == 0 {
		return nil
	}
	out := make(map[domain.Category]int, len(in))
	for k, v := range in {
		out[domain.ParseCategory(k)] = v
	}
	return out
}
