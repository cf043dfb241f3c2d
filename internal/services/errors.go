package services

import "errors"

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidInput       = errors.New("invalid input")
	ErrTransitionInFlight = errors.New("relationship change already in flight")
	ErrCannotFriendSelf   = errors.New("cannot change relationship with yourself")
	ErrLoadSuperseded     = errors.New("profile load superseded by a newer load")
	ErrNoProfileLoaded    = errors.New("no profile loaded")
	ErrRequestNotFound    = errors.New("friend request not found")
)
