package chatlog

import "errors"

var (
	ErrStoreNotSet         = errors.New("chat log store not set")
	ErrEmptyChatID         = errors.New("empty chat id")
	ErrChatNotFound        = errors.New("chat not found")
	ErrNoMessages          = errors.New("at least one message is required")
	ErrNoChats             = errors.New("no chats to export")
	ErrInvalidField        = errors.New("invalid search field")
	ErrCleanupUnsupported  = errors.New("store does not support cleanup")
	ErrMalformedRecord     = errors.New("malformed chat record")
	ErrInvalidCompletion   = errors.New("completion is not valid json")
	ErrEmptyRedisKey       = errors.New("empty redis key")
	ErrInvalidLogDirectory = errors.New("invalid log directory")
)
