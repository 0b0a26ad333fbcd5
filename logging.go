package main

import "go.uber.org/zap"

var logger = zap.NewNop()

// setupLogging builds the process logger. Debug mode switches to the
// human-oriented development config.
func setupLogging(debug bool) error {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stderr"}
	}

	built, err := cfg.Build()
	if err != nil {
		return err
	}
	logger = built
	zap.ReplaceGlobals(logger)
	return nil
}
