package detection

import "errors"

// Error kinds. Every decode and encode failure wraps exactly one of these so
// callers can branch with errors.Is.
var (
	ErrMalformedArchive         = errors.New("malformed archive")
	ErrMissingManifest          = errors.New("missing manifest")
	ErrMalformedManifest        = errors.New("malformed manifest")
	ErrMissingPixelLayer        = errors.New("missing pixel layer")
	ErrMissingEntry             = errors.New("missing entry")
	ErrUnsupportedFileType      = errors.New("unsupported file type")
	ErrInvalidAnnotationPayload = errors.New("invalid annotation payload")
	ErrMissingDetectionField    = errors.New("missing detection field")
)

// Error is a taxonomy error tied to the identifier that caused it: an entry
// path, a manifest attribute, or a detection field name.
type Error struct {
	// Kind is one of the Err* sentinels above.
	Kind error

	// Subject names the failing path or field. May be empty.
	Subject string

	// Err is the underlying cause, if any.
	Err error
}

// NewError builds an *Error. cause may be nil.
func NewError(kind error, subject string, cause error) error {
	return &Error{Kind: kind, Subject: subject, Err: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Subject != "" {
		msg += ": " + e.Subject
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// MissingField reports a required detection field that is absent.
func MissingField(field string) error {
	return &Error{Kind: ErrMissingDetectionField, Subject: field}
}

// SubjectOf returns the Subject of the first *Error in err's chain, or "".
func SubjectOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Subject
	}
	return ""
}
