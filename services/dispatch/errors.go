package dispatch

import "fmt"

// Stable error codes surfaced across the dispatch boundary.
const (
	CodeInvalidLocation     = "invalid_location"
	CodeUnsupportedSortMode = "unsupported_sort_mode"
	CodeUnknownTemplate     = "unknown_template"
	CodeBookingNotFound     = "booking_not_found"
	CodeAlreadyAssigned     = "already_assigned"
	CodeOfferNotPending     = "offer_not_pending"
	CodeAlreadyTerminal     = "already_terminal"
	CodeReasonRequired      = "reason_required"
	CodeSchedulerFault      = "scheduler_fault"
)

// Error is a coded dispatch error.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// CodeOf extracts the dispatch error code, or "" for foreign errors.
func CodeOf(err error) string {
	if de, ok := err.(*Error); ok {
		return de.Code
	}
	return ""
}
