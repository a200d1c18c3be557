package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Zagrios/bs-manager/internal/cleaner"
	"github.com/Zagrios/bs-manager/internal/config"
	"github.com/Zagrios/bs-manager/internal/logging"
	"github.com/Zagrios/bs-manager/internal/observe"
	"github.com/Zagrios/bs-manager/internal/report"
	"github.com/Zagrios/bs-manager/internal/restore"
	"github.com/Zagrios/bs-manager/internal/teardown"
)

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "symlink-cleaner <pid> <path_to_directory>",
	Short: "Remove the Oculus redirection folder once Beat Saber exits",
	Long: `symlink-cleaner waits for the process <pid> to exit, then deletes the
symlinked directory <path_to_directory> and restores the backup that was
moved aside when the redirection was set up.

The path must end in hyperbolic-magnetism-beat-saber and must be a
symlink. A real directory is never touched.

Example:
  symlink-cleaner 4242 "C:\Program Files\Oculus\Software\Software\hyperbolic-magnetism-beat-saber"
  symlink-cleaner --poll-interval 5s --output json 4242 /mnt/oculus/hyperbolic-magnetism-beat-saber`,
	Args:          usageArgs,
	RunE:          runCleaner,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and prints any fatal error
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := config.Default()
	flags := rootCmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.symlink-cleaner/config.yaml)")
	flags.String("poll-interval", defaults.PollInterval, "Wait between liveness probes")
	flags.String("expected-name", defaults.ExpectedName, "Folder name the path must end in")
	flags.String("backup-suffix", defaults.BackupSuffix, "Suffix of the backup folder to restore")
	flags.String("teardown-mode", defaults.TeardownMode, "What to remove: target (linked tree and link) or link (link only)")
	flags.Bool("no-reverify", false, "Skip re-checking the link right before removal")
	flags.String("log-level", defaults.LogLevel, "Log level: debug, info, warn, error")
	flags.Bool("log-json", defaults.LogJSON, "Log as JSON lines")
	flags.StringP("output", "o", defaults.Output, "Final report format: text, json, yaml, table")
	flags.String("metrics-file", defaults.MetricsFile, "Write Prometheus textfile metrics here after the run")

	for key, flag := range map[string]string{
		"poll_interval": "poll-interval",
		"expected_name": "expected-name",
		"backup_suffix": "backup-suffix",
		"teardown_mode": "teardown-mode",
		"log_level":     "log-level",
		"log_json":      "log-json",
		"output":        "output",
		"metrics_file":  "metrics-file",
	} {
		viper.BindPFlag(key, flags.Lookup(flag))
	}

	viper.SetDefault("reverify", defaults.Reverify)
}

func usageArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("Usage: %s <pid> <path_to_directory>", cmd.Root().Name())
	}
	return nil
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".symlink-cleaner"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SYMLINK_CLEANER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
	}
}

// loadConfig merges defaults, config file, env and flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if noReverify, _ := cmd.Flags().GetBool("no-reverify"); noReverify {
		cfg.Reverify = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runCleaner(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	target, err := cleaner.ParseTarget(args[0], args[1])
	if err != nil {
		return err
	}

	base := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogJSON)
	base.SetOutput(cmd.OutOrStdout())
	base.SetErrorOutput(cmd.ErrOrStderr())
	logger := base.WithField("component", "symlink-cleaner")

	mode, _ := teardown.ParseMode(cfg.TeardownMode)
	format, _ := report.ParseFormat(cfg.Output)

	var metrics *report.Metrics
	if cfg.MetricsFile != "" {
		metrics = report.NewMetrics()
	}

	c := cleaner.New(cleaner.Options{
		ExpectedName: cfg.ExpectedName,
		Interval:     cfg.PollDuration(),
		Prober:       observe.NewProcessProber(),
		Clock:        observe.Real(),
		Guard:        teardown.NewGuard(mode, cfg.Reverify),
		Restorer:     restore.NewRestorer(cfg.ExpectedName, cfg.BackupSuffix),
		Logger:       logger,
		Metrics:      metrics,
	})

	// Termination of this process is the only way out of an unbounded wait
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Warn(fmt.Sprintf("Received signal %v, giving up", sig))
			cancel()
		case <-ctx.Done():
		}
	}()

	result, err := c.Run(ctx, target)
	if err != nil {
		return err
	}

	if metrics != nil {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error("Failed to write metrics file", map[string]interface{}{"path": cfg.MetricsFile, "error": err.Error()})
		}
	}

	if format != report.FormatText {
		return report.Write(cmd.OutOrStdout(), result, format)
	}
	return nil
}
