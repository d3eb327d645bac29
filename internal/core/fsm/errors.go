package fsm

import "errors"

var (
	ErrInvalidState           = errors.New("invalid fsm state")
	ErrUnknownTemplate        = errors.New("unknown fsm template")
	ErrInstanceCreationFailed = errors.New("failed to create fsm instance")
)
