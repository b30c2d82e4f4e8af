package gateway

import "errors"

// ErrRecurringDetailsNotFound means the authorisation went through but the
// provider has not indexed the stored token yet. Callers may retry the lookup
// later; this is not a hard failure.
var ErrRecurringDetailsNotFound = errors.New("no recurring details found for shopper")

// InputError is a caller-side precondition violation, raised before any
// network call is made.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string { return e.Reason }

// GatewayError is a provider-side refusal or fault on an operation that has
// no normalized-response contract (disable-contract, profile creation).
type GatewayError struct {
	Reason string
}

func (e *GatewayError) Error() string { return e.Reason }

// EnrollmentRequiredError signals that the processor wants a 3-D Secure
// challenge before the authorisation can complete. It is control flow, not a
// fault: the caller redirects the shopper using Response and resumes via the
// continuation token once the shopper returns.
type EnrollmentRequiredError struct {
	Response *RawResponse
	Gateway  *Gateway
}

func (e *EnrollmentRequiredError) Error() string {
	return "3-D Secure enrollment required"
}
