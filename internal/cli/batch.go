// internal/cli/batch.go
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Simon-Bruno/omen-backend-sub000/internal/output"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/resolver"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/ui"
	"github.com/Simon-Bruno/omen-backend-sub000/pkg/models"
)

var (
	batchInput  string
	batchOutput string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Resolve many hypotheses concurrently",
	Long: `Reads a JSON array of jobs ({"url": ..., "hypothesis": ...}) and resolves
them with a worker pool. Failed jobs are reported but never abort the batch.`,
	Example: `  # Resolve a job file with 8 workers
  omen batch -i jobs.json --concurrency=8 -o points.json

  # Jobs from stdin
  cat jobs.json | omen batch -o points.json`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchInput, "input", "i", "", "JSON file of jobs (defaults to stdin)")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "File path to save injection points JSON")
}

func runBatch(cmd *cobra.Command, args []string) error {
	appCtx := GetApp()
	if appCtx == nil {
		return fmt.Errorf("application not initialized")
	}

	jobs, err := readJobs(batchInput)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no jobs to resolve")
	}
	for _, job := range jobs {
		if err := validateURL(job.URL); err != nil {
			return fmt.Errorf("job %q: %w", job.Hypothesis, err)
		}
	}

	bar := progressbar.NewOptions(len(jobs),
		progressbar.OptionSetDescription("resolving"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	runner := resolver.NewBatchRunner(appCtx.Resolver, appCtx.Fetcher, appCtx.Config.BatchConcurrency)
	results := runner.Run(cmd.Context(), jobs, func() { bar.Add(1) })

	points := make([]*models.InjectionPoint, 0, len(results))
	failed, unmatched := 0, 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			log.Warn().
				Err(res.Err).
				Str("url", res.Job.URL).
				Str("hypothesis", res.Job.Hypothesis).
				Msg("Job failed")
			continue
		}
		if len(res.Points) == 0 {
			unmatched++
			continue
		}
		points = append(points, res.Points...)
	}

	fmt.Fprintf(os.Stderr, "%s %d resolved, %d unmatched, %d failed\n",
		ui.Bold("Batch complete:"), len(points), unmatched, failed)

	return output.WriteJSON(points, batchOutput)
}

func readJobs(path string) ([]resolver.BatchJob, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read jobs: %w", err)
	}

	var jobs []resolver.BatchJob
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse jobs: %w", err)
	}
	return jobs, nil
}
