package weather

import (
	"errors"
	"fmt"
)

var (
	ErrInputEmpty         = errors.New("empty query")
	ErrNotFound           = errors.New("no matching U.S. location")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrSearchUnavailable  = errors.New("location search unavailable")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrDuplicateSave      = errors.New("location already saved")
	ErrStaleRequest       = errors.New("stale request")
	ErrNoCurrentLocation  = errors.New("no current location")
	ErrInvalidHorizon     = errors.New("invalid summary horizon")
	ErrUnknownProvider    = errors.New("unknown forecast provider")
	ErrInvalidTab         = errors.New("invalid tab")
)

// StatusMessage reduces any error to the single status line shown to the user.
func StatusMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInputEmpty):
		return "Enter a U.S. city, state, or ZIP code."
	case errors.Is(err, ErrNotFound):
		return "No matching U.S. location found. Try city and state."
	case errors.Is(err, ErrSearchUnavailable):
		return "Unable to search locations right now."
	case errors.Is(err, ErrMalformedResponse):
		return "Could not load forecast details. Please try another U.S. location."
	case errors.Is(err, ErrServiceUnavailable):
		return "Forecast service unavailable for that location."
	case errors.Is(err, ErrDuplicateSave):
		return "That location is already saved."
	case errors.Is(err, ErrNoCurrentLocation):
		return "Search for a U.S. location first."
	case errors.Is(err, ErrStaleRequest):
		return "A newer search replaced this one."
	case errors.Is(err, ErrInvalidHorizon):
		return "Summary horizon must be hours or days."
	case errors.Is(err, ErrUnknownProvider):
		return "Unknown forecast provider."
	case errors.Is(err, ErrInvalidTab):
		return "Unknown tab."
	default:
		return fmt.Sprintf("Something went wrong: %v", err)
	}
}
