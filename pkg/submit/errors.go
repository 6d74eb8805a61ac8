package submit

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goliatone/go-intakeqc/pkg/validation"
)

var (
	// ErrSubmitFailed is the generic failure reported to users.
	ErrSubmitFailed = errors.New("submit: request failed")
	// ErrInFlight rejects a second submission for the same record.
	ErrInFlight = errors.New("submit: submission already in flight")
	// ErrAssetRequired is returned when the request names no record.
	ErrAssetRequired = errors.New("submit: asset number is required")
)

// Error wraps the detail of a failed submission. Its message stays generic;
// errors.Is(err, ErrSubmitFailed) holds and the detail is reachable through
// Unwrap for logging and redirects.
type Error struct {
	Status int
	Err    error
}

func (e *Error) Error() string { return ErrSubmitFailed.Error() }

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrSubmitFailed }

// StatusCode maps the failure onto the status the web layer should answer with.
func (e *Error) StatusCode() int {
	if e.Status >= 400 {
		return e.Status
	}
	return http.StatusBadGateway
}

// ValidationError is returned when values fail the form's rules. No request is
// sent and no notification is shown.
type ValidationError struct {
	Result validation.Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("submit: %d invalid field(s)", len(e.Result.Issues))
}
