package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or revoked token")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrForbidden          = errors.New("you are not allowed to delete this product")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrOrderNotFound      = errors.New("there is not order with this number")
)
