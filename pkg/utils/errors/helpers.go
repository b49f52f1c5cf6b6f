package errors

// FromError normalizes any error into an Errno. Errno values pass
// through unchanged; everything else becomes ErrInternal with the
// original error as cause.
func FromError(err error) *Errno {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Errno); ok {
		return e
	}
	return ErrInternal.WithCause(err)
}
