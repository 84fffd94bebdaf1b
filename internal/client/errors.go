package client

import "github.com/pkg/errors"

var (
	ErrNotActive = errors.New("game is not active")

	ErrTransportClosed = errors.New("transport is not open")
	ErrNoPlayerID      = errors.New("player id not assigned")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrThrottled       = errors.New("too many actions")
)
