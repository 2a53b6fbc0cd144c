package repo

// ValidationError reports the first failing field rule for a write, or a
// uniqueness violation detected by the store. The message is surfaced to
// the caller verbatim and the write never happened.
type ValidationError struct {
	Message string
	cause   error
}

// Error implements error.
func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying store error for uniqueness violations, so
// errors.Is(err, store.ErrDuplicateValue) still works.
func (e *ValidationError) Unwrap() error {
	return e.cause
}
