// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Simon-Bruno/omen-backend-sub000/internal/app"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/config"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "omen",
	Short: "Resolve A/B test hypotheses to DOM injection points",
	Long: `Omen maps natural-language change hypotheses ("add star ratings below
the product title") onto concrete, durable CSS selectors on live pages, and
recommends how variant markup should be attached to them.`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Lazily initialize the application before running commands (avoid starting app for -h/help)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}
		// auth commands manage credentials; they must work without any
		if cmd.Name() == "set-key" || cmd.Name() == "clear-key" {
			return nil
		}

		cfg, err := config.Load(rootCmd)
		if err != nil {
			log.Warn().Err(err).Msg("failed to load configuration, using defaults")
			cfg = &config.Config{}
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout*10)
		defer cancel()
		appCtx, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}

		SetApp(cmd, appCtx)
		SetApp(rootCmd, appCtx)
		return nil
	}

	// Ensure app is closed after command runs
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		appCtx := GetAppFromCmd(cmd)
		if appCtx == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), appCtx.Config.HTTPTimeout)
		defer cancel()
		_ = appCtx.Close(ctx)
		SetApp(cmd, nil)
		SetApp(rootCmd, nil)
	}
}

func init() {
	// Register centralized flags
	config.RegisterFlags(rootCmd)

	rootCmd.Flags().BoolP("help", "h", false, "Help for Omen")
	rootCmd.Flags().Bool("version", false, "Version for Omen")

	// Disable the default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// printPointSummary renders a human-readable summary of an injection point
// to stderr, keeping stdout clean for JSON.
func printPointSummary(selector string, confidence float64, elementType, method, reasoning string) {
	fmt.Fprintf(os.Stderr, "\n%s %s\n", ui.Bold("Selector:"), ui.Success(selector))
	fmt.Fprintf(os.Stderr, "%s %s  %s %s  %s %s\n",
		ui.Bold("Confidence:"), ui.Confidence(confidence),
		ui.Bold("Type:"), elementType,
		ui.Bold("Insertion:"), method)
	if reasoning != "" {
		fmt.Fprintf(os.Stderr, "%s %s\n", ui.Bold("Reasoning:"), ui.Dim(reasoning))
	}
	fmt.Fprintln(os.Stderr)
}

func validateURL(url string) error {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("invalid URL: must start with http:// or https://")
	}
	return nil
}
