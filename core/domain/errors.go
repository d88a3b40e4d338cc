package domain

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUserIDRequired = errors.New("user id is required")
	ErrInvalidInput   = errors.New("invalid input data")
	ErrInternal       = errors.New("internal server error")
	ErrCacheMiss      = errors.New("cache miss")
)
