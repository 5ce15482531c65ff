package pricing

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"OptionPrisma/internal/metrics"
	"OptionPrisma/internal/model"
	"OptionPrisma/internal/montecarlo"
	"OptionPrisma/internal/store"
)

func atm(t model.OptionType) model.PricingInputs {
	return model.PricingInputs{
		SpotPrice:      100,
		StrikePrice:    100,
		TimeToMaturity: 1,
		Volatility:     0.2,
		RiskFreeRate:   0.05,
		OptionType:     t,
		NumSimulations: 20_000,
	}
}

func seed(v uint64) *uint64 { return &v }

func newTestService(st store.Store) (*Service, *metrics.Metrics) {
	m := metrics.New()
	return NewService(montecarlo.NewEngine(2), st, zap.NewNop(), m, 0), m
}

// failingStore rejects every Save.
type failingStore struct {
	*store.MemoryStore
}

func (f failingStore) Save(context.Context, *model.SimulationRecord) error {
	return &model.StorageError{Op: "save", Err: errors.New("disk full")}
}

func TestRun_PersistsRecord(t *testing.T) {
	st := store.NewMemoryStore()
	svc, m := newTestService(st)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	svc.now = func() time.Time { return fixed }

	rec, err := svc.Run(context.Background(), atm(model.Call), seed(42))
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^sim_\d+_[0-9a-f]{8}$`), rec.SimulationID)
	assert.Equal(t, fixed.UTC(), rec.Timestamp)
	assert.Equal(t, time.UTC, rec.Timestamp.Location())
	assert.InDelta(t, 10.4506, rec.BlackScholesPrice, 1e-4)
	assert.InDelta(t, rec.BlackScholesPrice, rec.OptionPrice, 4*rec.StdError)
	assert.InDelta(t, 1.96*rec.StdError, rec.ConfidenceInterval95, 1e-12)
	assert.Greater(t, rec.Greeks.Delta, 0.5)
	assert.Less(t, rec.Greeks.Delta, 0.7)
	require.NotNil(t, rec.Seed)
	assert.Equal(t, uint64(42), *rec.Seed)

	stored, err := svc.Get(context.Background(), rec.SimulationID)
	require.NoError(t, err)
	assert.Equal(t, rec.OptionPrice, stored.OptionPrice)
	assert.Equal(t, rec.Inputs, stored.Inputs)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SimulationsTotal.WithLabelValues("call", metrics.OutcomeSuccess)))
	assert.Equal(t, 20_000.0, testutil.ToFloat64(m.PathsTotal))
}

func TestRun_SeededRunsRepeat(t *testing.T) {
	svc, _ := newTestService(store.NewMemoryStore())

	a, err := svc.Run(context.Background(), atm(model.Put), seed(7))
	require.NoError(t, err)
	b, err := svc.Run(context.Background(), atm(model.Put), seed(7))
	require.NoError(t, err)

	assert.NotEqual(t, a.SimulationID, b.SimulationID)
	assert.Equal(t, a.OptionPrice, b.OptionPrice)
	assert.Equal(t, a.StdError, b.StdError)
}

func TestRun_DefaultSimulations(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(montecarlo.NewEngine(2), st, zap.NewNop(), nil, 5_000)

	in := atm(model.Call)
	in.NumSimulations = 0
	rec, err := svc.Run(context.Background(), in, seed(1))
	require.NoError(t, err)
	assert.Equal(t, 5_000, rec.Inputs.NumSimulations)
}

func TestRun_InvalidInputsPersistNothing(t *testing.T) {
	st := store.NewMemoryStore()
	svc, m := newTestService(st)

	in := atm(model.Call)
	in.SpotPrice = -1
	rec, err := svc.Run(context.Background(), in, nil)
	require.Error(t, err)
	assert.Nil(t, rec)

	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "spot_price", ve.Field)

	all, err := st.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SimulationsTotal.WithLabelValues("call", metrics.OutcomeInvalid)))
}

func TestRun_ZeroVolatilityIsComputationError(t *testing.T) {
	st := store.NewMemoryStore()
	svc, _ := newTestService(st)

	in := atm(model.Call)
	in.Volatility = 0
	_, err := svc.Run(context.Background(), in, nil)
	require.Error(t, err)
	assert.True(t, model.IsComputation(err))
	assert.False(t, model.IsValidation(err))

	all, err := st.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

// collidingStore reports the first n saves as identifier collisions.
type collidingStore struct {
	*store.MemoryStore
	collisions int
	tried      []string
}

func (c *collidingStore) Save(ctx context.Context, rec *model.SimulationRecord) error {
	c.tried = append(c.tried, rec.SimulationID)
	if len(c.tried) <= c.collisions {
		return fmt.Errorf("save %s: %w", rec.SimulationID, model.ErrDuplicateID)
	}
	return c.MemoryStore.Save(ctx, rec)
}

func TestRun_IDCollisionMintsNewID(t *testing.T) {
	st := &collidingStore{MemoryStore: store.NewMemoryStore(), collisions: 1}
	svc, _ := newTestService(st)

	rec, err := svc.Run(context.Background(), atm(model.Call), seed(5))
	require.NoError(t, err)
	require.Len(t, st.tried, 2)
	assert.NotEqual(t, st.tried[0], st.tried[1])
	assert.Equal(t, st.tried[1], rec.SimulationID)

	_, err = svc.Get(context.Background(), rec.SimulationID)
	assert.NoError(t, err)
}

func TestRun_IDCollisionGivesUp(t *testing.T) {
	st := &collidingStore{MemoryStore: store.NewMemoryStore(), collisions: 10}
	svc, _ := newTestService(st)

	rec, err := svc.Run(context.Background(), atm(model.Call), nil)
	require.ErrorIs(t, err, model.ErrDuplicateID)
	assert.Nil(t, rec)
	assert.Len(t, st.tried, maxIDAttempts)
}

func TestRun_StorageFailure(t *testing.T) {
	svc, m := newTestService(failingStore{store.NewMemoryStore()})

	rec, err := svc.Run(context.Background(), atm(model.Call), nil)
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.True(t, model.IsStorage(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SimulationsTotal.WithLabelValues("call", metrics.OutcomeFailed)))
}

func TestQuote_DoesNotPersist(t *testing.T) {
	st := store.NewMemoryStore()
	svc, _ := newTestService(st)

	rec, err := svc.Quote(atm(model.Call), seed(3))
	require.NoError(t, err)
	assert.NotEmpty(t, rec.SimulationID)
	assert.Greater(t, rec.OptionPrice, 0.0)

	_, err = svc.Get(context.Background(), rec.SimulationID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestListAndDelete(t *testing.T) {
	svc, _ := newTestService(store.NewMemoryStore())
	ctx := context.Background()

	first, err := svc.Run(ctx, atm(model.Call), seed(1))
	require.NoError(t, err)
	second, err := svc.Run(ctx, atm(model.Put), seed(2))
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.SimulationID, all[0].SimulationID)
	assert.Equal(t, second.SimulationID, all[1].SimulationID)

	require.NoError(t, svc.Delete(ctx, first.SimulationID))
	assert.ErrorIs(t, svc.Delete(ctx, first.SimulationID), model.ErrNotFound)

	_, err = svc.Get(ctx, first.SimulationID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestNewID(t *testing.T) {
	at := time.Unix(1_700_000_000, 0)
	id := NewID(at)
	assert.Regexp(t, `^sim_1700000000_[0-9a-f]{8}$`, id)
	assert.NotEqual(t, id, NewID(at))
}
