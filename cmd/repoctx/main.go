package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/repoctx/internal/cli"
	"github.com/temirov/repoctx/internal/utils"
)

// main is the entry point for the repoctx command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger()
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	applicationExecutionError := cli.Execute(loggerInstance)
	if applicationExecutionError != nil {
		loggerInstance.Error(utils.ApplicationExecutionFailedMessage, zap.Error(applicationExecutionError))
	}
	_ = loggerInstance.Sync()
	if applicationExecutionError != nil {
		os.Exit(1)
	}
}
