package config

import (
	"time"

	"github.com/spf13/viper"
)

// Millis reads an integer key holding milliseconds and returns it as a duration.
// A missing or non-positive value falls back to def.
func Millis(key string, def time.Duration) time.Duration {
	ms := viper.GetInt(key)
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
