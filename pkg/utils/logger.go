package utils

import "go.uber.org/zap"

// NewLogger returns the process logger. Debug mode uses the development config
// (console encoding, debug level) so tier queries and dataset loads are
// readable during local runs; otherwise production config (JSON, info level).
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
