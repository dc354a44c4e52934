package usecases

import "errors"

var (
	ErrReferenceNotFound  = errors.New("referenced entity not found")
	ErrAgentNotFound      = errors.New("agent not found")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInvalidToken       = errors.New("could not validate credentials")
	ErrInactive           = errors.New("inactive account")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnknownEvent       = errors.New("unknown agent event")
)
