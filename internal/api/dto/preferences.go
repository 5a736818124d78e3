package dto

type PreferencesRequest struct {
	CategoryWeights   map[string]float64 `json:"category_weights" validate:"dive,gt=0,lte=10"`
	CategoryDurations map[string]int     `json:"category_duration_minutes" validate:"dive,gt=0,lte=600"`
	MustSeeIDs        []string           `json:"must_see_ids" validate:"max=20,dive,required"`
	AvoidIDs          []string           `json:"avoid_ids" validate:"max=200,dive,required"`
}

type PreferencesResponse struct {
	UserID            string             `json:"user_id"`
	CategoryWeights   map[string]float64 `json:"category_weights"`
	CategoryDurations map[string]int     `json:"category_duration_minutes"`
	MustSeeIDs        []string           `json:"must_see_ids"`
	AvoidIDs          []string           `json:"avoid_ids"`
}
