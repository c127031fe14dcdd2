package recommend

import "errors"

var (
	// ErrNoData means the user has no usable history in the category.
	ErrNoData = errors.New("no answer history")
	// ErrMalformedRecord marks a single history record that lacks required fields.
	ErrMalformedRecord = errors.New("malformed history record")
	// ErrUpstreamUnavailable wraps failures and timeouts of the history store.
	ErrUpstreamUnavailable = errors.New("history store unavailable")
	// ErrStaleProfile is returned by ProfileCache.Set when the pair was invalidated
	// after the generation was read.
	ErrStaleProfile = errors.New("profile invalidated during analysis")
)
