package service

import "errors"

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to order")
	ErrForbidden         = errors.New("not authorized")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("illegal order status transition")
	ErrCannotCancel      = errors.New("order cannot be cancelled")
	ErrAlreadyReviewed   = errors.New("product already reviewed")
	ErrInvalidPrice      = errors.New("price must be positive")
	ErrInvalidStock      = errors.New("stock cannot be negative")
	ErrInvalidDiscount   = errors.New("discount price cannot exceed price")

	ErrInvalidCredentials = errors.New("invalid email or password")
)
