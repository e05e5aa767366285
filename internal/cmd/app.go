package cmd

import (
	"fmt"

	"github.com/matthieukhl/quotedesk/internal/backend"
	"github.com/matthieukhl/quotedesk/internal/config"
	"github.com/matthieukhl/quotedesk/internal/export"
	"github.com/matthieukhl/quotedesk/internal/intake"
	"github.com/matthieukhl/quotedesk/internal/inventory"
	"github.com/matthieukhl/quotedesk/internal/logger"
	"github.com/matthieukhl/quotedesk/internal/quotation"
	"github.com/matthieukhl/quotedesk/internal/types"
	"github.com/matthieukhl/quotedesk/internal/view"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// app holds what every command needs
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	backend types.Backend
	fs      afero.Fs
}

func loadApp() (*app, error) {
	cfg, err := config.LoadConfigFrom(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	b, err := backend.NewBackend(&cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend: %w", err)
	}

	return &app{cfg: cfg, log: log, backend: b, fs: afero.NewOsFs()}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}

func (a *app) quotationOptions() quotation.Options {
	return quotation.Options{
		Prefix:  a.cfg.Quotation.Prefix,
		TaxRate: a.cfg.Quotation.TaxRate,
	}
}

func (a *app) controller() *view.Controller {
	return view.NewController(a.quotationOptions())
}

func (a *app) handoff() *intake.Handoff {
	return intake.NewHandoff(a.backend, a.backend.Origin(), a.cfg.Intake.SuccessDelay, a.log)
}

func (a *app) inventory() (*inventory.Client, error) {
	return inventory.NewClient(a.backend, a.cfg.Inventory.NodeID, a.log)
}

func (a *app) exporter() *export.Exporter {
	return export.NewExporter(a.backend, a.fs, a.cfg.Export.Dir, a.log)
}
