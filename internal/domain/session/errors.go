package session

import "errors"

var (
	ErrSessionNotFound     = errors.New("attendance session not found")
	ErrSessionNotActive    = errors.New("attendance session is not active")
	ErrActiveSessionExists = errors.New("there is already an active session for this course")
	ErrNotSessionOwner     = errors.New("you do not own this session")
)
