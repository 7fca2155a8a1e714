// Package main provides the entry point for the Resume Enhancer HTTP API server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/jonathan/resume-enhancer/internal/config"
	"github.com/jonathan/resume-enhancer/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logJSON    bool
	logDebug   bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:           "resume_enhancer",
	Short:         "Resume Enhancer HTTP API Server",
	Long:          "Resume Enhancer segments, scores, rewrites and exports resumes and offers career coaching via REST API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&logDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to JSON config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	l, err := logger.New(logJSON, logDebug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return l, nil
}

// loadConfig reads --config when given, then fills gaps from the environment
// and the built-in defaults
func loadConfig() (config.Config, error) {
	file := &config.Config{}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		file = loaded
	}
	if err := file.Validate(); err != nil {
		return config.Config{}, err
	}
	return file.MergeWithDefaults(config.FromEnv()), nil
}
