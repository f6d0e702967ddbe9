// cmd/server/main.go
package main

import (
	"os"

	"github.com/Annany2002/flashdeck-backend/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		customLog.Errorf("flashdeck: %v", err)
		os.Exit(1)
	}
}
