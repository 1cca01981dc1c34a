// Package main provides the vagent binary entry point.
// vagent drives an LLM through an iterative tool-use loop to accomplish a
// delegated task against a workspace.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	// Register LLM providers via init()
	_ "github.com/qhy991/vagent/llm/providers"

	"github.com/qhy991/vagent/config"
	"github.com/qhy991/vagent/coordinator"
	"github.com/qhy991/vagent/events"
	"github.com/qhy991/vagent/llm"
	"github.com/qhy991/vagent/tool"
	"github.com/qhy991/vagent/tool/builtin"
)

const (
	Version = "0.1.0"
	appName = "vagent"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "vagent",
		Short: "LLM tool-call coordination engine",
		Long: `vagent runs a bounded coordination loop against an LLM endpoint:
it sends the task, parses each reply for structured tool calls, validates
and repairs them against the registered tool schemas, executes them, and
feeds the results back until the task completes or the budget runs out.`,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [task description]",
		Short: "Run one coordination session for a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTask(configPath, logLevel, strings.Join(args, " "), jsonOut)
		},
	}
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "Print the outcome as JSON")
	cmd.AddCommand(runCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

func runTask(configPath, logLevel, taskDescription string, jsonOut bool) error {
	logger := setupLogging(logLevel)

	loader := config.NewLoader(logger)
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = loader.LoadFile(configPath)
	} else {
		cfg, err = loader.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Builtin tools go into the legacy registry; the enhanced registry is
	// reserved for caller-supplied definitions and shadows legacy names.
	legacy := tool.NewRegistry()
	builtin.Register(legacy, cfg.Tools.Root, cfg.Tools.Allowlist)
	router := tool.NewRouter(tool.NewRegistry(), legacy,
		tool.WithLogger(logger),
		tool.WithDefaultTimeout(cfg.Coordination.ToolTimeout))

	client := llm.NewClient(llm.Endpoint{
		Provider: cfg.Model.Provider,
		URL:      cfg.Model.Endpoint,
		Model:    cfg.Model.Name,
		APIKey:   cfg.Model.APIKey(),
		Timeout:  cfg.Model.Timeout,
	}, llm.WithLogger(logger))

	opts := []coordinator.Option{
		coordinator.WithCoordinatorLogger(logger),
		coordinator.WithMaxIterations(cfg.Coordination.MaxIterations),
		coordinator.WithNoToolCallLimit(cfg.Coordination.NoToolCallLimit),
	}
	if cfg.Model.Temperature != nil {
		opts = append(opts, coordinator.WithTemperature(*cfg.Model.Temperature))
	}
	if cfg.Model.MaxTokens > 0 {
		opts = append(opts, coordinator.WithMaxTokens(cfg.Model.MaxTokens))
	}

	if cfg.NATS.URL != "" {
		publisher, err := events.Connect(cfg.NATS.URL, logger)
		if err != nil {
			return fmt.Errorf("connect event publisher: %w", err)
		}
		defer publisher.Close()
		opts = append(opts, coordinator.WithMessageHook(publisher.Hook(uuid.New().String())))
	}

	coord, err := coordinator.New(client, router, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	outcome, err := coord.Run(ctx, coordinator.Task{
		Description: taskDescription,
		Complete:    anySuccessfulWrite,
	})
	if err != nil {
		return err
	}

	if jsonOut {
		data, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal outcome: %w", err)
		}
		fmt.Println(string(data))
	} else {
		printOutcome(outcome)
	}

	if outcome.Status != coordinator.StatusSucceeded {
		return fmt.Errorf("session %s: %s (%s)",
			outcome.SessionID, outcome.Status, outcome.Diagnostic.Reason)
	}
	return nil
}

// anySuccessfulWrite is the default completion predicate for CLI runs: the
// task counts as done once an artifact has been written successfully.
func anySuccessfulWrite(results []tool.Result) bool {
	for _, r := range results {
		if r.Success && r.ToolName == "file_write" {
			return true
		}
	}
	return false
}

func printOutcome(outcome *coordinator.Outcome) {
	fmt.Printf("session %s: %s after %d iteration(s)\n",
		outcome.SessionID, outcome.Status, outcome.Diagnostic.Iterations)
	if outcome.Diagnostic.LastError != "" {
		fmt.Printf("reason: %s (%s)\n", outcome.Diagnostic.Reason, outcome.Diagnostic.LastError)
	}
	for _, msg := range outcome.History {
		if msg.Role == coordinator.RoleToolResult && msg.ToolResult != nil {
			r := msg.ToolResult
			if r.Success {
				fmt.Printf("  [tool] %s ok\n", r.ToolName)
			} else {
				fmt.Printf("  [tool] %s failed: %s\n", r.ToolName, r.Error.Message)
			}
		}
	}
}

func setupLogging(level string) *slog.Logger {
	logLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return logger
}
