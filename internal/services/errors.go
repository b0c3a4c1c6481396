package services

import (
	"errors"

	"storefront/internal/repos"
)

// Error taxonomy surfaced to callers. Test with errors.Is.
var (
	ErrNotFound                = repos.ErrNotFound
	ErrOutOfStock              = errors.New("product not available or insufficient stock")
	ErrPaymentInitiationFailed = errors.New("failed to generate payment token")
	ErrInvalidWebhookPayload   = errors.New("invalid webhook payload")
	ErrInvalidSignature        = errors.New("invalid webhook signature")
	ErrStorage                 = errors.New("storage error")

	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidAmount   = errors.New("amount must be greater than zero and at most 9999999999.99")
)
