package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pfrederiksen/aquabot/internal/config"
	"github.com/pfrederiksen/aquabot/internal/credentials"
	"github.com/pfrederiksen/aquabot/internal/logger"
	"github.com/pfrederiksen/aquabot/internal/metrics"
	"github.com/pfrederiksen/aquabot/internal/notifier"
	"github.com/pfrederiksen/aquabot/internal/reading"
	"github.com/pfrederiksen/aquabot/internal/scheduler"
	"github.com/pfrederiksen/aquabot/internal/scraper"
	"github.com/pfrederiksen/aquabot/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// EnvFile is loaded into the environment before flag defaults are computed
const EnvFile = ".env"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg, envErr := config.FromEnv(EnvFile)
	if envErr != nil {
		cfg = config.Defaults()
	}

	cmd := &cobra.Command{
		Use:   "aquabot",
		Short: "Post the daily Edwards Aquifer level once per day",
		Long: `A daemon that watches the Edwards Aquifer index well page and, once the
configured time of day has passed, posts the day's reading exactly once.
Failed fetches and posts are retried every poll interval until they succeed
or the day rolls over.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			return runDaemon(cmd, cfg)
		},
	}

	// Define flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.URL, "url", cfg.URL, "Data page to scrape (env: AQUABOT_URL)")
	flags.DurationVar(&cfg.RequestTimeout, "request-timeout", cfg.RequestTimeout, "Timeout for each fetch and post (env: AQUABOT_REQUEST_TIMEOUT)")
	flags.StringVar(&cfg.SiteName, "site-name", cfg.SiteName, "Well name used in the message (env: AQUABOT_SITE_NAME)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error (env: AQUABOT_LOG_LEVEL)")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Also append logs to this file (env: AQUABOT_LOG_FILE)")

	local := cmd.Flags()
	local.StringVar(&cfg.Threshold, "threshold", cfg.Threshold, "Local time of day (HH:MM) after which the reading is posted (env: AQUABOT_THRESHOLD)")
	local.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Time between checks (env: AQUABOT_POLL_INTERVAL)")
	local.StringVar(&cfg.Timezone, "timezone", cfg.Timezone, "IANA time zone the threshold and calendar day are evaluated in (env: AQUABOT_TIMEZONE)")
	local.StringVar(&cfg.CredentialsPath, "credentials", cfg.CredentialsPath, "Twitter credentials JSON file; empty reads TWITTER_* variables (env: AQUABOT_CREDENTIALS)")
	local.StringVar(&cfg.StateFile, "state-file", cfg.StateFile, "Persist the last posted date here so restarts do not post twice (env: AQUABOT_STATE_FILE)")
	local.BoolVar(&cfg.RequireFresh, "require-fresh", cfg.RequireFresh, "Retry instead of posting when the reading equals the last posted one (env: AQUABOT_REQUIRE_FRESH)")
	local.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Print messages instead of posting them")
	local.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve Prometheus metrics on this address, e.g. :9090 (env: AQUABOT_METRICS_ADDR)")

	cmd.AddCommand(newCheckCmd(&cfg))

	return cmd
}

// newCheckCmd fetches the page once and prints the message that would be posted
func newCheckCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Fetch the current reading once and print the message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}

			sc := scraper.New(cfg.URL, cfg.RequestTimeout)
			r, err := sc.FetchReading(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching reading: %w", err)
			}

			message := reading.FormatMessage(cfg.SiteName, r)
			return notifier.NewDryRunNotifier(cmd.OutOrStdout()).Notify(cmd.Context(), message)
		},
	}
}

// runDaemon is the main command logic
func runDaemon(cmd *cobra.Command, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log, logCloser, err := logger.Open(level, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logCloser.Close() // nolint:errcheck

	threshold, err := cfg.ThresholdMinutes()
	if err != nil {
		return err
	}
	location, err := cfg.Location()
	if err != nil {
		return err
	}

	n, err := newNotifier(cmd.OutOrStdout(), cfg)
	if err != nil {
		return err
	}

	recorder := metrics.New()
	opts := []scheduler.Option{scheduler.WithMetrics(recorder)}

	if cfg.StateFile != "" {
		store, err := storage.New(cfg.StateFile)
		if err != nil {
			return fmt.Errorf("initializing storage: %w", err)
		}
		opts = append(opts, scheduler.WithStore(store))
	}

	sched, err := scheduler.New(scheduler.Config{
		ThresholdMinutes: threshold,
		PollInterval:     cfg.PollInterval,
		Location:         location,
		SiteName:         cfg.SiteName,
		RequireFresh:     cfg.RequireFresh,
	}, scraper.New(cfg.URL, cfg.RequestTimeout), n, log, opts...)
	if err != nil {
		return fmt.Errorf("initializing scheduler: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		shutdown := serveMetrics(cfg.MetricsAddr, recorder, log)
		defer shutdown()
	}

	err = sched.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// newNotifier loads credentials once; a failure here stops the process
func newNotifier(out io.Writer, cfg config.Config) (notifier.Notifier, error) {
	if cfg.DryRun {
		return notifier.NewDryRunNotifier(out), nil
	}

	var creds credentials.Twitter
	var err error
	if cfg.CredentialsPath == "" {
		creds, err = credentials.FromEnv()
	} else {
		creds, err = credentials.Load(cfg.CredentialsPath)
	}
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	tw, err := notifier.NewTwitterNotifier(creds, cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("initializing Twitter client: %w", err)
	}
	return tw, nil
}

// serveMetrics starts the metrics endpoint and returns a function that stops it
func serveMetrics(addr string, recorder *metrics.Recorder, log *logger.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Serving metrics", logger.Fields{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", logger.Fields{"addr": addr}, err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
