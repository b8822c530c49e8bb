// Package main provides the CLI entry point for cover-letter-studio.
package main

import (
	"fmt"
	"os"

	"github.com/jonathan/cover-letter-studio/internal/api"
	"github.com/jonathan/cover-letter-studio/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "coverletter",
	Short: "Cover letter studio generates and edits cover letters",
	Long: `Cover letter studio writes cover letters from stored job postings and
uploaded PDFs, then lets you edit them section by section with version history.

Client commands talk to the service at --api-url (or COVER_LETTER_API_URL).
Run "coverletter serve" to start the service itself.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	rootConfigPath string
	rootAPIURL     string
	rootAPIKey     string
	rootVerbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	rootCmd.PersistentFlags().StringVar(&rootAPIURL, "api-url", "", "Service URL (defaults to COVER_LETTER_API_URL or "+config.DefaultAPIURL+")")
	rootCmd.PersistentFlags().StringVar(&rootAPIKey, "api-key", "", "API key exchanged for a bearer token (defaults to COVER_LETTER_API_KEY)")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig merges, in order of precedence, flags, the config file and the
// environment.
func loadConfig() (*config.Config, error) {
	var cfg config.Config
	if rootConfigPath != "" {
		loaded, err := config.LoadConfig(rootConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	flags := config.Config{APIURL: rootAPIURL, APIKey: rootAPIKey}
	merged := flags.MergeWithDefaults(cfg.MergeWithDefaults(config.FromEnv()))
	merged.Verbose = rootVerbose || cfg.Verbose

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// newClient builds the service client from the merged configuration.
func newClient() (*api.Client, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	opts := api.DefaultOptions()
	opts.APIKey = cfg.APIKey
	opts.Verbose = cfg.Verbose
	if timeout := cfg.Timeout(); timeout > 0 {
		opts.Timeout = timeout
	}

	client, err := api.New(cfg.BaseURL(), opts)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[DEBUG] Using service at %s\n", client.BaseURL())
	}
	return client, cfg, nil
}
