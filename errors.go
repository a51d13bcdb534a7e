package server

import "errors"

// Command failures surfaced to the transport collaborator. None of these is
// fatal to the process; lock misuse is absorbed locally and never returned.
var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room full")
	ErrDuplicateRoomCode = errors.New("room code already in use")
)
