package domain

import "errors"

var (
	// ErrMalformedSnapshot marks a response body that does not match the
	// expected snapshot shape. Treated as a transport failure upstream.
	ErrMalformedSnapshot = errors.New("malformed snapshot payload")

	// ErrConsentRequired is returned by the bid submitter when the terms
	// gate blocks a submission before any network call.
	ErrConsentRequired = errors.New("terms consent required")

	// ErrStreamUnavailable means the push stream could not be opened or
	// the server does not speak event-stream on that endpoint.
	ErrStreamUnavailable = errors.New("event stream unavailable")
)
