// Package config loads application configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - LoadFile reads an explicit dotfile and fails if it does not exist.
//   - Load parses the environment into any struct with env tags, reading the
//     default .env in the working directory once if one is there.
//   - Each config type is parsed once and cached for the life of the process.
//     Reset clears the cache, which tests use after changing the environment.
//
// Usage:
//
//	if err := config.LoadFile(".env.local"); err != nil {
//	    return err
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Errors match ErrParsingConfig, ErrNilPointer, ErrDotfileNotFound or
// ErrParsingDotfile with errors.Is.
package config
