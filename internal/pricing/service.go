// Package pricing orchestrates a pricing run: validation, Monte Carlo,
// Black-Scholes cross-check, and persistence of the resulting record.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"OptionPrisma/internal/calculator"
	"OptionPrisma/internal/metrics"
	"OptionPrisma/internal/model"
	"OptionPrisma/internal/montecarlo"
	"OptionPrisma/internal/store"
	"OptionPrisma/internal/validator"
)

// maxIDAttempts bounds how many identifiers Run tries before giving up.
const maxIDAttempts = 3

// Service prices options and manages their stored records. It holds no
// locks of its own; the store serializes access.
type Service struct {
	engine             *montecarlo.Engine
	store              store.Store
	logger             *zap.Logger
	metrics            *metrics.Metrics // nil disables instrumentation
	defaultSimulations int
	now                func() time.Time
}

// NewService wires the service. defaultSims fills num_simulations when a
// request omits it; values <= 0 fall back to model.DefaultSimulations.
func NewService(engine *montecarlo.Engine, st store.Store, logger *zap.Logger, m *metrics.Metrics, defaultSims int) *Service {
	if defaultSims <= 0 {
		defaultSims = model.DefaultSimulations
	}
	return &Service{
		engine:             engine,
		store:              st,
		logger:             logger,
		metrics:            m,
		defaultSimulations: defaultSims,
		now:                time.Now,
	}
}

// Run prices in, persists the record and returns it. A nil seed draws a
// fresh random stream. Any failure aborts the run before anything is saved.
func (s *Service) Run(ctx context.Context, in model.PricingInputs, seed *uint64) (*model.SimulationRecord, error) {
	start := time.Now()
	rec, err := s.price(in, seed)
	if err != nil {
		s.observe(in, err, 0, start)
		return nil, err
	}

	if err := s.save(ctx, rec); err != nil {
		s.observe(in, err, 0, start)
		s.logger.Error("save simulation failed", zap.String("simulation_id", rec.SimulationID), zap.Error(err))
		return nil, fmt.Errorf("save simulation: %w", err)
	}

	s.observe(rec.Inputs, nil, rec.Inputs.NumSimulations, start)
	s.logger.Info("simulation completed",
		zap.String("simulation_id", rec.SimulationID),
		zap.String("option_type", string(rec.Inputs.OptionType)),
		zap.Int("paths", rec.Inputs.NumSimulations),
		zap.Float64("mc_price", rec.OptionPrice),
		zap.Float64("bs_price", rec.BlackScholesPrice),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rec, nil
}

// save stores rec, minting a new identifier when the current one collides.
func (s *Service) save(ctx context.Context, rec *model.SimulationRecord) error {
	for attempt := 1; ; attempt++ {
		err := s.store.Save(ctx, rec)
		if !errors.Is(err, model.ErrDuplicateID) || attempt == maxIDAttempts {
			return err
		}
		s.logger.Warn("simulation id collision, minting a new one", zap.String("simulation_id", rec.SimulationID))
		rec.SimulationID = NewID(rec.Timestamp)
	}
}

// Quote prices in without persisting. The returned record carries an
// identifier and timestamp like a stored one.
func (s *Service) Quote(in model.PricingInputs, seed *uint64) (*model.SimulationRecord, error) {
	return s.price(in, seed)
}

// Get returns the stored record for id, or model.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*model.SimulationRecord, error) {
	return s.store.Get(ctx, id)
}

// List returns all stored records in creation order.
func (s *Service) List(ctx context.Context) ([]*model.SimulationRecord, error) {
	return s.store.List(ctx)
}

// Delete removes the record for id, returning model.ErrNotFound when absent.
func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrNotFound
	}
	s.logger.Info("simulation deleted", zap.String("simulation_id", id))
	return nil
}

func (s *Service) price(in model.PricingInputs, seed *uint64) (*model.SimulationRecord, error) {
	if in.NumSimulations == 0 {
		in.NumSimulations = s.defaultSimulations
	}
	if err := validator.Validate(in); err != nil {
		return nil, err
	}

	est, err := s.engine.Simulate(in, seed)
	if err != nil {
		return nil, fmt.Errorf("monte carlo: %w", err)
	}
	bsPrice, err := calculator.BlackScholesPrice(in)
	if err != nil {
		return nil, fmt.Errorf("black-scholes price: %w", err)
	}
	greeks, err := calculator.BlackScholesGreeks(in)
	if err != nil {
		return nil, fmt.Errorf("black-scholes greeks: %w", err)
	}

	now := s.now().UTC()
	rec := &model.SimulationRecord{
		SimulationID:         NewID(now),
		OptionPrice:          est.Price,
		StdError:             est.StdError,
		ConfidenceInterval95: est.ConfidenceInterval95,
		BlackScholesPrice:    bsPrice,
		Greeks:               greeks,
		Inputs:               in,
		Timestamp:            now,
	}
	if seed != nil {
		v := *seed
		rec.Seed = &v
	}
	return rec, nil
}

func (s *Service) observe(in model.PricingInputs, err error, paths int, start time.Time) {
	if s.metrics == nil {
		return
	}
	outcome := metrics.OutcomeSuccess
	switch {
	case model.IsValidation(err):
		outcome = metrics.OutcomeInvalid
	case err != nil:
		outcome = metrics.OutcomeFailed
	}
	optType := string(in.OptionType)
	if !in.OptionType.Valid() {
		optType = "unknown"
	}
	s.metrics.ObserveRun(optType, outcome, paths, time.Since(start))
}

// NewID builds a simulation identifier of the form sim_<unix>_<8 hex>.
func NewID(at time.Time) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("sim_%d_%s", at.Unix(), hex[:8])
}
