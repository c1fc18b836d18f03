// internal/cli/auth.go
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Simon-Bruno/omen-backend-sub000/internal/keys"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/ui"
)

// authCmd groups credential management commands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored API key",
}

var setKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Store the OpenAI API key in the OS keyring",
	Long: `Stores the API key in the OS keyring (or ~/.omen when no keyring is
available). When no argument is given the key is read from stdin so it never
lands in shell history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			fmt.Fprint(os.Stderr, "API key: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read key: %w", err)
			}
			key = strings.TrimSpace(line)
		}
		if key == "" {
			return fmt.Errorf("empty API key")
		}
		if err := keys.Save(keys.OpenAIKeyName, key); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, ui.Success("API key stored"))
		return nil
	},
}

var clearKeyCmd = &cobra.Command{
	Use:   "clear-key",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := keys.Delete(keys.OpenAIKeyName); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, ui.Success("API key removed"))
		return nil
	},
}

func init() {
	authCmd.AddCommand(setKeyCmd)
	authCmd.AddCommand(clearKeyCmd)
	rootCmd.AddCommand(authCmd)
}
