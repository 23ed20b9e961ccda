package store

import "errors"

// ErrEmptyContent is returned when a text message has no content left after trimming.
var ErrEmptyContent = errors.New("message content is empty")

// ErrUnknownUser is returned when a message references a user id that does not resolve.
var ErrUnknownUser = errors.New("message user does not exist")
