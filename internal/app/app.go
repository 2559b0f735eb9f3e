package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/five82/haarview/internal/config"
	"github.com/five82/haarview/internal/logging"
	"github.com/five82/haarview/internal/notify"
	"github.com/five82/haarview/internal/policy"
	"github.com/five82/haarview/internal/prefs"
	"github.com/five82/haarview/internal/preview"
	"github.com/five82/haarview/internal/state"
	"github.com/five82/haarview/internal/ui"
	"github.com/five82/haarview/internal/wavelet"
	"github.com/five82/haarview/internal/workflow"
)

// Options configure the haarview application.
type Options struct {
	ConfigPath string // empty uses ~/.config/haarview/config.toml
	PrefsPath  string // empty uses ~/.config/haarview/prefs.toml
	EnvFile    string // empty uses .env in the working directory
}

// services holds everything built from configuration that both front ends
// share.
type services struct {
	cfg     config.Config
	logger  *zap.Logger
	logPath string
	deps    workflow.Deps
}

func (s *services) close() {
	_ = s.logger.Sync()
}

// setup loads configuration and wires the wavelet client, policy and
// workflow dependencies. Notifications are delivered to sink.
func setup(opts Options, sink notify.Sink) (*services, error) {
	if err := config.LoadDotEnv(opts.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, logPath, err := logging.New(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	client, err := wavelet.NewClient(cfg.APIURL, cfg.RequestTimeout)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("init wavelet client: %w", err)
	}
	logger.Info("haarview starting",
		zap.String("api_url", client.BaseURL()),
		zap.String("output_dir", cfg.OutputDir),
		zap.Duration("request_timeout", cfg.RequestTimeout),
	)

	return &services{
		cfg:     cfg,
		logger:  logger,
		logPath: logPath,
		deps: workflow.Deps{
			Policy: policy.New(client, sink, logger.Named("policy")),
			Loader: preview.NewLoader(client),
			Saver:  workflow.DirSaver{Dir: cfg.OutputDir},
			Logger: logger.Named("workflow"),
		},
	}, nil
}

// Run boots the haarview TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	store := &state.Store{}
	svc, err := setup(opts, store)
	if err != nil {
		return err
	}
	defer svc.close()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		svc.logger.Warn("load prefs", zap.Error(err))
	}

	nav := workflow.NewNavigator(svc.deps.Factory())
	err = ui.Run(ui.Options{
		Context:   ctx,
		Navigator: nav,
		Store:     store,
		Logger:    svc.logger.Named("ui"),
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		LogPath:   svc.logPath,
		APIURL:    svc.cfg.APIURL,
		OutputDir: svc.cfg.OutputDir,
	})
	svc.logger.Info("haarview stopped", zap.Error(err))
	return err
}
