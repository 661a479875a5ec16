package domain

import "fmt"

type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindNotFound
	KindConflict
	KindForbidden
	KindInternal
)

// Error is a classified business failure. Every failure crossing the
// core's boundary maps to exactly one code.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

var (
	ErrListingNotFound   = &Error{Kind: KindNotFound, Code: "LISTING_NOT_FOUND", Message: "listing not found"}
	ErrListingNotActive  = &Error{Kind: KindConflict, Code: "LISTING_NOT_ACTIVE", Message: "listing is not active"}
	ErrLotNotFound       = &Error{Kind: KindNotFound, Code: "LOT_NOT_FOUND", Message: "lot not found"}
	ErrOrderNotFound     = &Error{Kind: KindNotFound, Code: "ORDER_NOT_FOUND", Message: "order not found"}
	ErrInsufficientStock = &Error{Kind: KindConflict, Code: "INSUFFICIENT_STOCK", Message: "insufficient stock"}
	ErrStockUpdateFailed = &Error{Kind: KindConflict, Code: "STOCK_UPDATE_FAILED", Message: "stock update lost to a concurrent purchase"}
	ErrInvalidQuantity   = &Error{Kind: KindValidation, Code: "INVALID_QUANTITY", Message: "quantity must not be negative"}
	ErrInvalidTransition = &Error{Kind: KindConflict, Code: "INVALID_TRANSITION", Message: "status transition not allowed"}
	ErrInvalidStatus     = &Error{Kind: KindValidation, Code: "INVALID_STATUS", Message: "unknown order status"}
	ErrForbidden         = &Error{Kind: KindForbidden, Code: "FORBIDDEN", Message: "not allowed"}
	ErrDuplicateRequest  = &Error{Kind: KindConflict, Code: "DUPLICATE_REQUEST", Message: "duplicate request"}
)

// Validation builds a request-shaped validation failure.
func Validation(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

// Internal wraps a storage or infrastructure failure. The transaction
// guarantees no partial effects on abort, so callers may retry.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL", Message: "internal error", cause: err}
}
