package wideevent

import "fmt"

// StructuredError carries machine fields (status, message) and human fields
// (why, fix, link) for an error detected during request handling. It is used
// two independent ways: captured into the owning wide event via
// Logger.Error, and raised to the HTTP boundary which renders it as a
// structured error response. Values are treated as immutable once built.
type StructuredError struct {
	Status  int
	Message string
	Why     string
	Fix     string
	Link    string
	Cause   error
}

func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StructuredError) Unwrap() error { return e.Cause }

// fields returns the nested error record merged under the reserved "error"
// key of a wide event.
func (e *StructuredError) fields() Fields {
	f := Fields{"message": e.Message, "status": e.Status}
	if e.Why != "" {
		f["why"] = e.Why
	}
	if e.Fix != "" {
		f["fix"] = e.Fix
	}
	if e.Link != "" {
		f["link"] = e.Link
	}
	if e.Cause != nil {
		f["cause"] = e.Cause.Error()
	}
	return f
}
