package app

import (
	"context"
	"fmt"

	"github.com/calehh/counterflag/agent"
	"github.com/calehh/counterflag/chain"
	"github.com/calehh/counterflag/config"
	"github.com/calehh/counterflag/economy"
	"github.com/calehh/counterflag/tx"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type CounterApp struct {
	cfg    *config.Config
	logger cmtlog.Logger

	reader    agent.Reader
	submitter tx.Submitter
	store     *agent.RunStore
	counter   *agent.Counter
	queriers  map[string]Querier
}

// NewCounterApp builds the chain client, the vote submitter and the run
// store described by cfg.
func NewCounterApp(cfg *config.Config, logger cmtlog.Logger) (app *CounterApp, err error) {
	reader, err := chain.NewClient(cfg.Chain.RPC, cfg.Chain.Timeout, logger)
	if err != nil {
		return nil, err
	}

	var submitter tx.Submitter
	if cfg.Vote.DryRun {
		submitter = tx.NewDryRunSubmitter(logger)
	} else {
		submitter, err = tx.NewCommandSubmitter(cfg.Vote.Command, cfg.Vote.Args, cfg.Vote.Timeout, logger)
		if err != nil {
			return nil, err
		}
	}

	var store *agent.RunStore
	if cfg.Store.Enabled {
		if err = config.EnsureRoot(cfg); err != nil {
			return nil, err
		}
		store, err = agent.OpenRunStore(cfg.Store.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("open run store: %w", err)
		}
	}

	app, err = NewCounterAppWith(cfg, reader, submitter, store, logger)
	if err != nil && store != nil {
		store.Close()
	}
	return app, err
}

// NewCounterAppWith wires the app around the given collaborators. store may
// be nil.
func NewCounterAppWith(cfg *config.Config, reader agent.Reader, submitter tx.Submitter, store *agent.RunStore, logger cmtlog.Logger) (app *CounterApp, err error) {
	logger = logger.With("module", "app")

	fallback, err := economy.ParseHistoryFallback(cfg.Vote.HistoryFallback)
	if err != nil {
		return nil, err
	}
	counter, err := agent.NewCounter(agent.CounterConfig{
		Name:            cfg.Agent.Name,
		RegenPerDay:     cfg.Vote.RegenPerDay,
		HistoryFallback: fallback,
		HistoryLimit:    cfg.Chain.HistoryLimit,
		MinWeight:       cfg.Vote.MinWeight,
	}, reader, submitter, store, logger)
	if err != nil {
		return nil, err
	}

	app = &CounterApp{
		cfg:       cfg,
		logger:    logger,
		reader:    reader,
		submitter: submitter,
		store:     store,
		counter:   counter,
		queriers:  make(map[string]Querier),
	}
	app.registerQuerier()
	return app, nil
}

func (app *CounterApp) Counter() *agent.Counter {
	return app.counter
}

func (app *CounterApp) Store() *agent.RunStore {
	return app.store
}

func (app *CounterApp) Run(ctx context.Context, rawURL string) (*agent.Outcome, error) {
	return app.counter.Run(ctx, rawURL)
}

func (app *CounterApp) NewService() *agent.Service {
	return agent.NewService(app.cfg.Service.ListenAddr, app.counter, app.store, app.logger)
}

func (app *CounterApp) Stop() {
	if app.store == nil {
		return
	}
	if err := app.store.Close(); err != nil {
		app.logger.Error("close store fail", "err", err)
	}
	app.logger.Info("counterflag app stopped")
}

func (app *CounterApp) registerQuerier() {
	app.queriers["/account/"] = NewAccountQuerier(app.reader, app.counter, app.logger)
	app.queriers["/value/"] = NewValueQuerier(app.reader, app.counter, app.logger)
	app.queriers["/weight/"] = NewWeightQuerier(app.reader, app.counter, app.logger)
	app.queriers["/flags/"] = NewFlagsQuerier(app.reader, app.counter, app.logger)
}
