package models

// DefaultApplicationSection is applied when the webhook payload omits the
// application_section field.
const DefaultApplicationSection = "4-YT-Su"

// ProcessingRequest is the validated webhook payload.
type ProcessingRequest struct {
	VideoID            string `json:"video_id"`
	ApplicationSection string `json:"application_section,omitempty"`
}

// Section returns the application section, falling back to the default.
func (r ProcessingRequest) Section() string {
	if r.ApplicationSection == "" {
		return DefaultApplicationSection
	}
	return r.ApplicationSection
}
