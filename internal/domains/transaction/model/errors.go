package model

import "errors"

var (
	ErrInvalidUserID = errors.New("invalid user id")
	ErrInvalidStatus = errors.New("status must be one of BORROWED, RETURNED, OVERDUE")
)
