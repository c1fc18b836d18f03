package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json-log", false, "Emit logs as JSON")
	cmd.PersistentFlags().String("timeout", "30s", "Hard timeout for page fetches")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().String("model", "", "AI model name (default gpt-4o)")
	cmd.PersistentFlags().Bool("no-ai", false, "Skip the AI tier and resolve from page structure only")
	cmd.PersistentFlags().Int("concurrency", 0, "Batch worker count")
}
