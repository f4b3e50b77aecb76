package service

import "errors"

var (
	ErrValidation       = errors.New("validation")        // 400
	ErrNotFound         = errors.New("not found")         // 404
	ErrForbidden        = errors.New("forbidden")         // 403
	ErrAlreadyFinalized = errors.New("already finalized") // 409
	ErrExpired          = errors.New("expired")           // 410
)
