// Package cli provides the command-line interface for the omen application.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/Simon-Bruno/omen-backend-sub000/internal/app"
)

// SetApp stores the Application for commands to access
func SetApp(cmd *cobra.Command, a *app.Application) {
	if cmd == nil {
		return
	}
	globalApp = a
}

// GetApp retrieves the Application
func GetApp() *app.Application {
	return globalApp
}

// GetAppFromCmd retrieves the Application for the given command
func GetAppFromCmd(cmd *cobra.Command) *app.Application {
	return globalApp
}

// Global reference - commands run one at a time in a CLI process
var globalApp *app.Application
