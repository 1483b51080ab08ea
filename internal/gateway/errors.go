package gateway

import "errors"

// Kind classifies a gateway failure for the HTTP boundary.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindUpstreamShape
	KindUpstreamFetch
	KindUpstreamCall
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUpstreamShape:
		return "upstream_shape"
	case KindUpstreamFetch:
		return "upstream_fetch"
	case KindUpstreamCall:
		return "upstream_call"
	default:
		return "unknown"
	}
}

var (
	ErrNoImage             = errors.New("No image uploaded")
	ErrEmptyPrompt         = errors.New("Prompt is required")
	ErrInvalidSize         = errors.New("Width and height must be positive and within limits")
	ErrUnsupportedEditKind = errors.New("Unsupported edit type")
	ErrNoImageURL          = errors.New("No image URL in response")
	ErrFetchFailed         = errors.New("Failed to fetch result image")
	ErrUpstreamCall        = errors.New("Upstream provider call failed")
)

// Error is the single failure type surfaced by the gateway. Message is safe to
// return to callers; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, sentinel error, cause error) *Error {
	err := sentinel
	if cause != nil {
		err = errors.Join(sentinel, cause)
	}
	return &Error{Kind: kind, Message: sentinel.Error(), Err: err}
}

func validationError(sentinel error) *Error {
	return newError(KindValidation, sentinel, nil)
}

// KindOf reports the kind of err, or KindUnknown when err is not a gateway error.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return KindUnknown
}

// MessageOf returns the caller-facing message for err.
func MessageOf(err error) string {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Message
	}
	return "Internal error"
}
