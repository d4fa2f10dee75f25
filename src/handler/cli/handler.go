package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"smell-bot/src/config"
	"smell-bot/src/util"
)

// Version is stamped at build time with -ldflags "-X smell-bot/src/handler/cli.Version=..."
var Version = "dev"

// Handler owns the command tree and the configuration shared by its commands
type Handler struct {
	cfg        *config.Config
	configPath string
	envFiles   []string
	logLevel   string
	rootCmd    *cobra.Command
}

// New creates a new CLI handler
func New() *Handler {
	h := &Handler{}
	h.rootCmd = &cobra.Command{
		Use:   "smell-bot",
		Short: "Code smell classification agent",
		Long: "Classifies source files as smelly or clean from parser metrics using a trained\n" +
			"ensemble, alongside threshold rules and business-logic consistency checks",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return h.loadConfig()
		},
	}

	flags := h.rootCmd.PersistentFlags()
	flags.StringVarP(&h.configPath, "config", "c", "", "Path to configuration file (default $"+config.EnvConfigPath+" or ./config.yaml)")
	flags.StringSliceVar(&h.envFiles, "env-file", nil, "Dotenv files loaded before the configuration (default .env)")
	flags.StringVar(&h.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")

	h.rootCmd.AddCommand(
		h.analyzeCmd(),
		h.trainCmd(),
		h.predictCmd(),
		h.featuresCmd(),
		h.rulesCmd(),
		h.versionCmd(),
	)
	return h
}

func (h *Handler) loadConfig() error {
	cfg, err := config.NewLoader(h.envFiles...).Load(h.configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if h.logLevel != "" {
		cfg.Logging.Level = h.logLevel
	}
	if Version != "dev" {
		cfg.Agent.Version = Version
	}
	h.cfg = cfg

	util.SetDefaultLogger(cfg.Logging)
	util.Debug("Configuration loaded (log level %s, ingestion %s)", cfg.Logging.Level, cfg.Ingestion.Source)
	return nil
}

// Execute runs the command tree through fang
func (h *Handler) Execute(ctx context.Context) error {
	return fang.Execute(ctx, h.rootCmd, fang.WithVersion(Version))
}

// Run executes the CLI until completion or an interrupt, exiting non-zero on failure
func Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := New().Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
