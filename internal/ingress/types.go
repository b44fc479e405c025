package ingress

// empty is the response body for calls that return only a possible error.
type empty struct{}
