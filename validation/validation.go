package validation

import (
	"regexp"

	"github.com/technofriends/youtube-insights/errors"
)

// videoIDPattern matches YouTube video identifiers: eleven characters from
// the URL-safe base64 alphabet.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateVideoID checks the video identifier before any network work.
func (v *Validator) ValidateVideoID(id string) error {
	const op = "Validator.ValidateVideoID"

	if id == "" {
		return errors.InvalidInput(op, nil, "video_id is required")
	}

	if !videoIDPattern.MatchString(id) {
		return errors.InvalidInput(op, nil, "Invalid video ID format")
	}

	return nil
}

// ValidateSection checks the application section key. Empty is allowed; the
// request model substitutes the default section.
func (v *Validator) ValidateSection(section string) error {
	const op = "Validator.ValidateSection"

	if len(section) > 128 {
		return errors.InvalidInput(op, nil, "application_section too long")
	}

	return nil
}
