package domain

// ProgressEvent is an observational update emitted while a trip is planned.
type ProgressEvent struct {
	Stage    string  `json:"stage"`
	Message  string  `json:"message"`
	Progress float64 `json:"progress"`
	Detail   string  `json:"detail,omitempty"`
}
