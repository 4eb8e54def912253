package redaction

// SafeError returns err with tracked values hidden from its message.
// When nothing needs hiding the original error is returned, keeping its type.
func SafeError(err error, r *Redactor) error {
	if err == nil || r == nil {
		return err
	}

	msg := err.Error()
	scrubbed := r.ScrubString(msg)
	if scrubbed == msg {
		return err
	}
	return &safeError{msg: scrubbed, cause: err}
}

// safeError keeps the cause reachable for errors.As while printing the
// scrubbed message.
type safeError struct {
	cause error
	msg   string
}

func (e *safeError) Error() string { return e.msg }

func (e *safeError) Unwrap() error { return e.cause }

