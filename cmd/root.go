package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/assessor/internal/api"
	"github.com/abhisek/assessor/internal/config"
	"github.com/abhisek/assessor/internal/logging"
	"github.com/abhisek/assessor/internal/ops"
	"github.com/abhisek/assessor/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "assessor",
	Short: "Compose competence assessments",
	Long: `assessor is a terminal editor for bilingual (Dutch/English) competence
assessments. Drafts are built, previewed and translated by the assessment
backend.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEditor(cmd, "")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("backend", "", "Backend base URL (overrides ASSESSOR_BACKEND_URL)")
	pf.String("db", "", `Path to SQLite operation log, or "off" (overrides ASSESSOR_DB)`)
	pf.String("log-file", "", "Log file path (overrides ASSESSOR_LOG_FILE)")
	pf.String("log-level", "", "Log level: debug, info, warn or error (overrides ASSESSOR_LOG_LEVEL)")
	pf.Duration("timeout", 0, "Per-request backend timeout (overrides ASSESSOR_TIMEOUT)")

	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(opsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment and applies any flags set on the command
// line on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.ConfigFromEnv()
	flags := cmd.Flags()

	if flags.Changed("backend") {
		cfg.BackendURL, _ = flags.GetString("backend")
	}
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
	}
	if flags.Changed("log-file") {
		cfg.Log.File, _ = flags.GetString("log-file")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// deps bundles what every backend-facing command needs.
type deps struct {
	cfg    config.Config
	logger *zap.Logger
	store  *store.Store // nil when the operation log is off
	orch   *ops.Orchestrator
}

// setup builds the logger, operation log, backend client and orchestrator.
// Callers must Close the result.
func setup(cmd *cobra.Command) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{
		File:  cfg.Log.File,
		Level: cfg.Log.Level,
		Mode:  cfg.Log.Mode,
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	rt := &deps{cfg: cfg, logger: logger}

	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	var repo store.EventRepo
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Operation log unavailable:", err)
			logger.Warn("open operation log", zap.String("path", dbPath), zap.Error(err))
		} else {
			rt.store = st
			repo = st.EventRepo()
		}
	}

	client := api.NewClient(cfg.BackendURL,
		api.WithTimeout(cfg.Timeout),
		api.WithUserAgent("assessor/"+version),
	)
	backend := api.WithLogging(client, repo, logger)
	rt.orch = ops.New(backend, ops.WithLogger(logger))

	logger.Debug("runtime ready",
		zap.String("command", cmd.CommandPath()),
		zap.String("backend", cfg.BackendURL),
		zap.String("db", dbPath),
	)
	return rt, nil
}

func (rt *deps) Close() {
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			rt.logger.Warn("close database", zap.Error(err))
		}
	}
	_ = rt.logger.Sync()
}
