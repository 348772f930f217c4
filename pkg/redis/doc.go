// Package redis connects to a Redis server for the chat log store.
//
// Connect parses a redis:// URL, pings the server and retries with
// exponential backoff (github.com/sethvargo/go-retry) until it answers or the
// attempts run out. Configuration is read from environment variables via
// github.com/caarlos0/env:
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// Ping reports the round trip time of a PING, for health checks.
//
// Errors are joined with the package sentinels (ErrRedisNotReady and
// friends) so callers can match them with errors.Is.
package redis
