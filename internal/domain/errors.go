package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation               = errors.New("validation failed")
	ErrInsufficientInventory    = errors.New("insufficient inventory")
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")
	ErrPaymentInitiationFailed  = errors.New("payment initiation failed")
	ErrInvalidRefundState       = errors.New("invalid refund state")

	ErrBookableNotFound  = errors.New("bookable not found")
	ErrTierNotFound      = errors.New("ticket tier not found")
	ErrPurchaseNotFound  = errors.New("purchase not found")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrInvalidID         = errors.New("invalid id")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrSessionRequired   = errors.New("session id required")
	ErrForbidden         = errors.New("forbidden")
	ErrTierAlreadyExists = errors.New("ticket tier already exists")

	ErrPaymentAlreadySettled = errors.New("payment already settled")
	ErrInvalidSignature      = errors.New("invalid callback signature")
	ErrWebhookNotConfigured  = errors.New("no callback configured for provider")
	ErrPurchaseNotConfirmed  = errors.New("purchase is not confirmed")
)

// Validationf builds a caller-correctable error that matches ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// InsufficientInventoryError names the tier that could not satisfy a request.
type InsufficientInventoryError struct {
	TierID    string
	TierName  string
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	name := e.TierName
	if name == "" {
		name = e.TierID
	}
	return fmt.Sprintf("insufficient inventory for tier %s: requested %d, available %d", name, e.Requested, e.Available)
}

func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientInventory
}

// PaymentInitiationError wraps the provider failure that aborted a checkout.
type PaymentInitiationError struct {
	Provider string
	Cause    error
}

func (e *PaymentInitiationError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("payment initiation failed via %s", e.Provider)
	}
	return fmt.Sprintf("payment initiation failed via %s: %v", e.Provider, e.Cause)
}

func (e *PaymentInitiationError) Is(target error) bool {
	return target == ErrPaymentInitiationFailed
}

func (e *PaymentInitiationError) Unwrap() error {
	return e.Cause
}
