// Package commands implements the cidlgen CLI command handlers.
package commands

import "github.com/rs/zerolog"

// Controller holds shared state for the command handlers.
type Controller struct {
	Logger zerolog.Logger
}
