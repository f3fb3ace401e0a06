package services

import "errors"

var (
	ErrInvalidCode        = errors.New("invalid kitchen code")
	ErrKitchenNotFound    = errors.New("kitchen not found")
	ErrCodeGeneration     = errors.New("could not allocate a unique kitchen code")
	ErrNotLinked          = errors.New("not linked to a kitchen")
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidState       = errors.New("invalid order state")
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
	ErrEmptyOrder         = errors.New("order has no items")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUnknownEntity      = errors.New("unknown entity type")
	ErrEntityNotFound     = errors.New("entity not found")
	ErrEntityInUse        = errors.New("entity is referenced and cannot be deleted")
	ErrProtectedEntity    = errors.New("entity is protected and cannot be deleted")
	ErrInvalidInput       = errors.New("invalid input")
)
