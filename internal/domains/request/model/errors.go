package model

import "errors"

var (
	ErrInvalidRequestID = errors.New("invalid request id")
	ErrInvalidUserID    = errors.New("invalid user id")
)
