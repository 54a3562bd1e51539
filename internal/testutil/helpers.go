package testutil

import (
	"github.com/rs/zerolog"
)

// NopLogger returns a pointer to a no-op logger, the form simulation.Config takes
func NopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}
