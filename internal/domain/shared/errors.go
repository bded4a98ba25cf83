package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped copies compare equal to the sentinels
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized  = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden     = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrIncomeHidden  = NewDomainError("INCOME_ACCESS_DENIED", "Income figures are not visible for this account")
	ErrUnknownVenue  = NewDomainError("UNKNOWN_VENUE", "Venue is not part of the catalog")
	ErrNoDatesAccess = NewDomainError("NO_ACCESSIBLE_DATES", "None of the requested dates are accessible")
)

// Report request precondition errors. They signal caller misuse and are
// distinct from a report that simply has no sales.
var (
	ErrEmptyDateRange   = NewDomainError("EMPTY_DATE_RANGE", "Report request has no dates")
	ErrInvalidDateRange = NewDomainError("INVALID_DATE_RANGE", "Start date must not be after end date")
	ErrInvalidRangeType = NewDomainError("INVALID_RANGE_TYPE", "Unknown date range type")
)
