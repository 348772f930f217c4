package redis

import "errors"

var (
	ErrEmptyConnectionURL           = errors.New("empty redis connection URL, use REDIS_URL env var")
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	// ErrRedisNotReady is returned by Connect when every attempt failed or
	// ConnectTimeout elapsed.
	ErrRedisNotReady     = errors.New("redis did not become ready within the given time period")
	ErrHealthcheckFailed = errors.New("redis ping failed")
)
