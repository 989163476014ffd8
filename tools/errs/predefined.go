package errs

// Error codes. NotFoundOrDenied deliberately covers both "does not exist"
// and "exists but not yours": the two must stay indistinguishable to a
// caller, otherwise probing reveals which resources exist.
const (
	CodeValidation       = 1001
	CodeUnauthorized     = 1401
	CodeNotFoundOrDenied = 1404
	CodeStore            = 1500
)

var (
	ErrValidation       = NewCodeError(CodeValidation, "invalid request")
	ErrUnauthorized     = NewCodeError(CodeUnauthorized, "unauthorized")
	ErrNotFoundOrDenied = NewCodeError(CodeNotFoundOrDenied, "not found or access denied")
	ErrStore            = NewCodeError(CodeStore, "storage error")
)

// Validation builds a ValidationError whose Msg is shown to the client.
func Validation(msg string) *CodeError {
	return NewCodeError(CodeValidation, msg)
}

// WrapStore converts a persistence failure into a StoreError, keeping the
// cause as internal detail only.
func WrapStore(err error, op string) *CodeError {
	if err == nil {
		return nil
	}
	return ErrStore.WrapMsg(op, "cause", err.Error())
}
