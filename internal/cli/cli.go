// ============================================================================
// sns-bulkupload CLI - Command Line Interface
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: Cobra commands that load the run configuration, build the SNS
//          client and drive the controller
//
// Command Structure:
//   sns-bulkupload                 # Root command
//   ├── --config, -c               # Config file (default BulkUpload.properties)
//   ├── --log-level, --log-format  # slog handler settings
//   ├── run                        # Register every token in the input file
//   │   ├── --workers              # Override numOfThreads
//   │   └── --metrics-addr         # Serve /metrics while running
//   ├── validate                   # Check config and platform application
//   │   └── --skip-remote          # Config only, no SNS call
//   └── --version
//
// Configuration:
//   Properties file (BulkUpload.properties) or YAML when the name ends in
//   .yaml/.yml. See internal/config.
//
// Signal Handling:
//   SIGINT and SIGTERM stop the reading of new records. Registrations that
//   are already running finish and are written before the process exits
//   with code 130.
//
// Exit Codes:
//   Errors returned by the commands carry an exitcode.Error; main maps them
//   to the process status.
//
// ============================================================================

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/ChuLiYu/sns-bulkupload/internal/config"
	"github.com/ChuLiYu/sns-bulkupload/internal/controller"
	"github.com/ChuLiYu/sns-bulkupload/internal/exitcode"
	"github.com/ChuLiYu/sns-bulkupload/internal/logging"
	"github.com/ChuLiYu/sns-bulkupload/internal/metrics"
	"github.com/ChuLiYu/sns-bulkupload/internal/registration"
)

// Version is reported by --version. Overridden at build time with -ldflags.
var Version = "1.0.0"

// DefaultConfigFile is read when --config is not given.
const DefaultConfigFile = "BulkUpload.properties"

// RegistrarFactory builds the registration client for a loaded config.
type RegistrarFactory func(ctx context.Context, cfg *config.Config) (controller.Registrar, error)

// NewSNSRegistrar is the production RegistrarFactory.
func NewSNSRegistrar(ctx context.Context, cfg *config.Config) (controller.Registrar, error) {
	api, err := registration.NewSNSAPI(ctx, registration.Options{
		Region:          cfg.Region(),
		EndpointURL:     cfg.EndpointURL,
		CredentialsFile: cfg.CredentialsFile,
	})
	if err != nil {
		return nil, exitcode.Wrap(exitcode.CredentialFailure, err)
	}
	return registration.NewClient(api, cfg.RequestTimeout), nil
}

type rootOptions struct {
	configFile   string
	logLevel     string
	logFormat    string
	newRegistrar RegistrarFactory
}

// BuildCLI builds the command tree backed by the real SNS client.
func BuildCLI() *cobra.Command {
	return buildCLI(NewSNSRegistrar)
}

func buildCLI(newRegistrar RegistrarFactory) *cobra.Command {
	opts := &rootOptions{newRegistrar: newRegistrar}

	rootCmd := &cobra.Command{
		Use:   "sns-bulkupload",
		Short: "Bulk-register device tokens as SNS platform endpoints",
		Long: `sns-bulkupload reads a delimited file of device tokens and creates an
Amazon SNS platform endpoint for each one. Results are appended to an
accepted file and a rejected file, each line tagged with its input line
number.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logging.Setup(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat); err != nil {
				return exitcode.Wrap(exitcode.MalformedConfig, err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", DefaultConfigFile, "config file path (.properties or .yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text, json")

	rootCmd.AddCommand(buildRunCommand(opts))
	rootCmd.AddCommand(buildValidateCommand(opts))

	return rootCmd
}

func buildRunCommand(opts *rootOptions) *cobra.Command {
	var workers int
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start registering the tokens listed in the input file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runUpload(ctx, cmd.OutOrStdout(), opts, workers, metricsAddr)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent registrations (overrides numOfThreads)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")

	return cmd
}

func runUpload(ctx context.Context, out io.Writer, opts *rootOptions, workers int, metricsAddr string) error {
	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return err
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	slog.Info("Starting bulk upload", "config", opts.configFile, "settings", cfg.String())

	registrar, err := opts.newRegistrar(ctx, cfg)
	if err != nil {
		return exitcode.Wrap(exitcode.CredentialFailure, err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	if metricsAddr != "" {
		srv := metrics.StartServer(metricsAddr, reg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	ctrl := controller.New(cfg, registrar,
		controller.WithLogger(slog.Default()),
		controller.WithMetrics(collector))

	summary, runErr := ctrl.Run(ctx)
	printSummary(out, cfg, summary)
	return runErr
}

func buildValidateCommand(opts *rootOptions) *cobra.Command {
	var skipRemote bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and the platform application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validate(cmd.Context(), cmd.OutOrStdout(), opts, skipRemote)
		},
	}

	cmd.Flags().BoolVar(&skipRemote, "skip-remote", false, "only check the config file, do not call SNS")

	return cmd
}

func validate(ctx context.Context, out io.Writer, opts *rootOptions, skipRemote bool) error {
	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Config OK: %s\n", cfg)

	if skipRemote {
		return nil
	}

	registrar, err := opts.newRegistrar(ctx, cfg)
	if err != nil {
		return exitcode.Wrap(exitcode.CredentialFailure, err)
	}
	if err := registrar.VerifyApplication(ctx, cfg.ApplicationARN); err != nil {
		return exitcode.Wrap(exitcode.NotFound, err)
	}
	fmt.Fprintf(out, "Platform application OK: %s\n", cfg.ApplicationARN)
	return nil
}

// loadConfig maps config loading failures onto exit codes.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	switch {
	case err == nil:
		return cfg, nil
	case errors.Is(err, config.ErrRead):
		return nil, exitcode.Wrap(exitcode.FileAccess, err)
	default:
		return nil, exitcode.Wrap(exitcode.MalformedConfig, err)
	}
}

func printSummary(out io.Writer, cfg *config.Config, s controller.Summary) {
	fmt.Fprintln(out, "Bulk upload summary:")
	fmt.Fprintf(out, "  ├─ Records read:  %d\n", s.Read)
	fmt.Fprintf(out, "  ├─ Accepted:      %d  -> %s\n", s.Accepted, cfg.AcceptedFile)
	fmt.Fprintf(out, "  ├─ Rejected:      %d  -> %s\n", s.Rejected, cfg.RejectedFile)
	fmt.Fprintf(out, "  ├─ Malformed:     %d  -> %s\n", s.Malformed, cfg.RejectedFile)
	fmt.Fprintf(out, "  └─ Elapsed:       %s\n", s.Elapsed.Round(time.Millisecond))
}
