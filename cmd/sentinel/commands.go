package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"PriceSentinel/internal/api"
	"PriceSentinel/internal/chat"
	"PriceSentinel/internal/collector"
	"PriceSentinel/internal/config"
	"PriceSentinel/internal/forecast"
	"PriceSentinel/internal/intent"
	"PriceSentinel/internal/logger"
	"PriceSentinel/internal/metrics"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/notifier"
	"PriceSentinel/internal/prediction"
	"PriceSentinel/internal/responder"
	"PriceSentinel/internal/scheduler"
	"PriceSentinel/internal/series"

	"github.com/spf13/cobra"
)

// app carries what every command needs after config loading.
type app struct {
	cfgPath string
	cfg     *config.Config
	log     *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "sentinel",
		Short:         "PriceSentinel - Bitcoin price forecast service and chat bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Path(a.cfgPath))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log, err := logger.New(cfg.Log)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			a.cfg, a.log = cfg, log
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.cfgPath, "config", "", "configuration file path (default: $CONFIG_PATH or "+config.DefaultPath+")")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve GET /predict and run the daily series update",
			RunE:  func(cmd *cobra.Command, _ []string) error { return a.serve(cmd.Context()) },
		},
		&cobra.Command{
			Use:   "bot",
			Short: "Run the Telegram conversation bot",
			RunE:  func(cmd *cobra.Command, _ []string) error { return a.bot(cmd.Context()) },
		},
		&cobra.Command{
			Use:   "update",
			Short: "Append today's closing price to the series once",
			RunE:  func(cmd *cobra.Command, _ []string) error { return a.update(cmd.Context()) },
		},
		&cobra.Command{
			Use:   "predict",
			Short: "Compute one prediction and print it as JSON",
			RunE:  func(cmd *cobra.Command, _ []string) error { return a.predict(cmd.Context()) },
		},
		&cobra.Command{
			Use:   "import-csv",
			Short: "Copy the CSV dataset into the SQLite series store",
			RunE:  func(cmd *cobra.Command, _ []string) error { return a.importCSV(cmd.Context()) },
		},
	)
	return rootCmd
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func (a *app) serve(parent context.Context) error {
	if err := a.cfg.ValidateServe(); err != nil {
		return err
	}
	ctx, stop := signalContext(parent)
	defer stop()

	rec := metrics.New()
	store, err := series.Open(a.cfg.Series)
	if err != nil {
		return fmt.Errorf("open series: %w", err)
	}
	defer store.Close()
	a.log.Info("series store ready", logger.String("backend", a.cfg.Series.Backend))

	svc := prediction.NewService(store, forecast.NewTimeGPTClient(a.cfg.Forecast), a.log, rec)
	srv := api.NewServer(svc, a.log, rec, api.WithConfig(a.cfg.HTTP))
	if err := srv.Start(); err != nil {
		return err
	}

	if a.cfg.Schedule.Enabled {
		sched, err := a.newScheduler(ctx, store, rec)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	a.log.Info("PriceSentinel is running, press Ctrl+C to stop")
	<-ctx.Done()
	a.log.Info("shutdown signal received, stopping")
	return srv.Stop(context.Background())
}

func (a *app) newScheduler(ctx context.Context, store series.Store, rec *metrics.Recorder) (*scheduler.Scheduler, error) {
	fetcher, err := collector.NewFetcher(a.cfg.Collector)
	if err != nil {
		return nil, err
	}
	col := collector.NewCollector(fetcher, store, a.log, rec)

	var reporter scheduler.Reporter
	if a.cfg.Telegram.Token != "" && a.cfg.Telegram.ReportChatID != 0 {
		reporter = notifier.NewTelegramBot(a.cfg.Telegram, a.log)
	}

	sched := scheduler.NewScheduler(ctx, a.cfg.Schedule, col, reporter, a.log)
	if err := sched.RegisterAll(); err != nil {
		return nil, fmt.Errorf("register cron tasks: %w", err)
	}
	a.log.Info("daily update scheduled", logger.String("source", fetcher.Name()))
	return sched, nil
}

func (a *app) bot(parent context.Context) error {
	if err := a.cfg.ValidateBot(); err != nil {
		return err
	}
	ctx, stop := signalContext(parent)
	defer stop()

	rec := metrics.New()
	backend, err := chat.New(ctx, a.cfg.Chat)
	if err != nil {
		return fmt.Errorf("init chat backend: %w", err)
	}
	if c, ok := backend.(io.Closer); ok {
		defer c.Close()
	}
	source := prediction.NewRemoteClient(a.cfg.Prediction.URL, a.cfg.Prediction.Timeout)
	router := intent.NewRouter(a.cfg.Intent.TopicKeywords, a.cfg.Intent.ActionKeywords)
	resp := responder.New(router, source, backend, a.log, rec)

	tg := notifier.NewTelegramBot(a.cfg.Telegram, a.log)
	a.log.Info("bot is running", logger.String("chat_provider", a.cfg.Chat.Provider))
	tg.StartPolling(ctx, func(ctx context.Context, ev model.Event) (string, bool) {
		reply, ok := resp.Handle(ctx, ev)
		return reply.Text, ok
	})
	return nil
}

func (a *app) update(parent context.Context) error {
	if err := a.cfg.ValidateUpdate(); err != nil {
		return err
	}
	ctx, stop := signalContext(parent)
	defer stop()

	store, err := series.Open(a.cfg.Series)
	if err != nil {
		return fmt.Errorf("open series: %w", err)
	}
	defer store.Close()

	fetcher, err := collector.NewFetcher(a.cfg.Collector)
	if err != nil {
		return err
	}
	_, _, err = collector.NewCollector(fetcher, store, a.log, nil).UpdateToday(ctx)
	return err
}

func (a *app) predict(parent context.Context) error {
	if err := a.cfg.ValidatePredict(); err != nil {
		return err
	}
	ctx, stop := signalContext(parent)
	defer stop()

	store, err := series.Open(a.cfg.Series)
	if err != nil {
		return fmt.Errorf("open series: %w", err)
	}
	defer store.Close()

	svc := prediction.NewService(store, forecast.NewTimeGPTClient(a.cfg.Forecast), a.log, nil)
	artifact, err := svc.GetPrediction(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(prediction.EncodePayload(artifact))
}

func (a *app) importCSV(ctx context.Context) error {
	src := series.NewCSVStore(a.cfg.Series.Path)
	dst, err := series.NewSQLiteStore(a.cfg.Series.SQLitePath)
	if err != nil {
		return err
	}
	defer dst.Close()

	n, err := series.ImportCSV(ctx, src, dst)
	if err != nil {
		return err
	}
	a.log.Info("import finished",
		logger.Int("imported", n),
		logger.String("from", a.cfg.Series.Path),
		logger.String("to", a.cfg.Series.SQLitePath))
	return nil
}
