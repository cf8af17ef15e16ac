package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrImageProcessing = errors.New("image processing failed")
	ErrUpstreamAI      = errors.New("upstream ai failure")
	// ErrSchemaViolation marks an AI response that parsed as JSON but does not
	// satisfy the stage contract. Classified retryable at the call boundary.
	ErrSchemaViolation = errors.New("ai response schema violation")
	ErrWebhookDelivery = errors.New("webhook delivery failed")
	ErrUnauthorized    = errors.New("unauthorized")
	// ErrVersionConflict rejects a terminal write whose base version has been
	// overtaken by another writer.
	ErrVersionConflict = errors.New("record version conflict")
	ErrTemporary       = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
