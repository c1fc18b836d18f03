// internal/cli/resolve.go
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Simon-Bruno/omen-backend-sub000/internal/app"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/output"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/reqctx"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/ui"
	"github.com/Simon-Bruno/omen-backend-sub000/pkg/models"
)

var (
	htmlFile   string
	outputPath string
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <url> <hypothesis>",
	Short: "Resolve one hypothesis to an injection point",
	Long: `Fetches the page, locates the element the hypothesis targets, and emits
an injection point: a validated CSS selector, backup selectors, and an
insertion plan for the variant markup.`,
	Example: `  # Resolve against a live page
  omen resolve https://shop.example/p/1 "Add star ratings below the product title"

  # Resolve against saved HTML without fetching
  omen resolve https://shop.example/p/1 "Make the CTA more prominent" --html=page.html

  # Skip the AI tier
  omen resolve https://shop.example/p/1 "Add an urgency badge" --no-ai

  # Save the injection point to a file
  omen resolve https://shop.example/p/1 "Add reviews" -o point.json`,
	Args: cobra.ExactArgs(2),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&htmlFile, "html", "", "Read page HTML from a file instead of fetching the URL")
	resolveCmd.Flags().StringVarP(&outputPath, "output", "o", "", "File path to save the injection point JSON")
}

func runResolve(cmd *cobra.Command, args []string) error {
	url, hypothesis := args[0], args[1]
	if err := validateURL(url); err != nil {
		return err
	}

	appCtx := GetApp()
	if appCtx == nil {
		return fmt.Errorf("application not initialized")
	}

	ctx := reqctx.WithRequest(cmd.Context(), hypothesis)

	page, err := loadPage(ctx, appCtx, url)
	if err != nil {
		return err
	}

	points, err := appCtx.Resolver.Resolve(ctx, page, hypothesis)
	if err != nil {
		return err
	}

	if len(points) == 0 {
		fmt.Fprintf(os.Stderr, "%s could not find a matching element for %q\n",
			ui.Info("Note:"), hypothesis)
	} else {
		point := points[0]
		printPointSummary(point.Selector, point.Confidence, string(point.Type),
			string(point.InsertionStrategy.Method), point.Reasoning)
	}

	return output.WriteJSON(points, outputPath)
}

// loadPage reads the snapshot from --html when given, otherwise fetches.
func loadPage(ctx context.Context, appCtx *app.Application, url string) (*models.Page, error) {
	if htmlFile != "" {
		data, err := os.ReadFile(htmlFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", htmlFile, err)
		}
		log.Debug().Str("file", htmlFile).Int("bytes", len(data)).Msg("Using local HTML snapshot")
		return &models.Page{URL: url, HTML: string(data), StatusCode: 200}, nil
	}
	return appCtx.Fetcher.Fetch(ctx, url)
}
