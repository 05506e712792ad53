package availability

import "errors"

// Error carries the refusal reason to callers that want typed results
// rather than a boolean decision.
type Error struct {
	Reason Reason
}

func (e Error) Error() string {
	return "availability: " + string(e.Reason)
}

// Err converts a refused decision into an error; nil when bookable.
func (d Decision) Err() error {
	if d.Available {
		return nil
	}
	return Error{Reason: d.Reason}
}

// ReasonOf extracts the refusal reason from an error, if it carries one.
func ReasonOf(err error) (Reason, bool) {
	var e Error
	if errors.As(err, &e) {
		return e.Reason, true
	}
	return ReasonNone, false
}
