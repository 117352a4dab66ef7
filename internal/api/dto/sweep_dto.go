package dto

// SweepRequest optionally overrides the inactivity windows for one
// manual run, in hours. Zero or missing values fall back to config.
type SweepRequest struct {
	ResolveAfterHours int `json:"resolve_after_hours"`
	CloseAfterHours   int `json:"close_after_hours"`
}
