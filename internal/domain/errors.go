package domain

import "errors"

var (
	ErrInvalidUser        = errors.New("invalid user")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEvent       = errors.New("invalid event")
	ErrEventNotFound      = errors.New("event not found")
	ErrEventEnded         = errors.New("event has already started or ended")
	ErrAlreadyParticipant = errors.New("user already participates in event")
	ErrNotParticipant     = errors.New("user does not participate in event")
	ErrPersistence        = errors.New("snapshot could not be saved")
	ErrCorruptSnapshot    = errors.New("snapshot is corrupt")
)
