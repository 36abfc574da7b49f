package config

import "go.uber.org/zap"

// NewLogger returns a JSON production logger, or a console logger in debug mode.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
