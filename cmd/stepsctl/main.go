// Command stepsctl manages the teamsteps user document directly, without
// going through the HTTP API. It reads the same environment as the server.
package main

import (
	"os"

	"github.com/teamsteps/teamsteps/pkg/logger"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
