package config

import (
	"io"
	"time"
)

// Config is the read side of the configuration used by passhash and its
// supporting packages.
//
// Missing keys and values that cannot be converted yield the zero value of the
// requested type; callers treat zero as "use the default".
type Config interface {
	io.Closer

	// GetInt returns the value for key as an int.
	GetInt(key string) int

	// GetFloat64 returns the value for key as a float64.
	GetFloat64(key string) float64

	// GetBool returns the value for key as a bool.
	GetBool(key string) bool

	// GetString returns the value for key as a string.
	GetString(key string) string

	// GetSecond returns the integer value for key as a number of seconds.
	GetSecond(key string) time.Duration

	// GetArray returns the value for key split on commas.
	// Configuration value is stored with format <element1>,<element2>,...
	GetArray(key string) []string
}
