package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// cache keeps one parsed value per config type.
type cache struct {
	mu     sync.Mutex
	values map[reflect.Type]any
}

var (
	globalCache = &cache{values: make(map[reflect.Type]any)}

	defaultEnvLoaded sync.Once
)

// LoadFile loads environment variables from the dotfile at path. Unlike the
// implicit .env lookup done by Load, the file must exist. Variables already
// present in the process environment are not overridden.
func LoadFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.Join(ErrDotfileNotFound, err)
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Join(ErrParsingDotfile, err)
	}
	return nil
}

// Load populates v from environment variables according to its env tags.
// The default .env file in the working directory is read once, if present.
// Each config type is parsed once; later calls return the cached copy.
//
//	type EmbeddingConfig struct {
//		Model     string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-ada-002"`
//		CacheSize int    `env:"EMBEDDING_CACHE_SIZE" envDefault:"512"`
//	}
//
//	var cfg EmbeddingConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	defaultEnvLoaded.Do(func() {
		// a missing .env is fine
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()

	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()

	if cached, ok := globalCache.values[key]; ok {
		*v = cached.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	globalCache.values[key] = parsed
	*v = parsed

	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
}

// Reset drops every cached config so the next Load parses the environment again.
func Reset() {
	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()
	clear(globalCache.values)
}
