package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnknownVenue = errors.New("unknown venue")
	ErrEmptyGroup   = errors.New("empty match group")
	ErrWSDisconnect = errors.New("websocket disconnected")
)
