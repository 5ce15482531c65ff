package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"OptionPrisma/internal/model"
)

// SQLiteStore persists simulation records to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, &model.StorageError{Op: "init", Err: err}
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, &model.StorageError{Op: "open", Err: err}
	}
	// One connection: writes are serialized and ":memory:" stays a single database.
	db.SetMaxOpenConns(1)

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, &model.StorageError{Op: "open", Err: fmt.Errorf("set WAL mode: %w", err)}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, &model.StorageError{Op: "migrate", Err: err}
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS simulations (
			simulation_id          TEXT PRIMARY KEY,
			created_at             INTEGER NOT NULL,
			option_price           REAL NOT NULL,
			std_error              REAL NOT NULL,
			confidence_interval_95 REAL NOT NULL,
			black_scholes_price    REAL NOT NULL,
			delta                  REAL NOT NULL,
			gamma                  REAL NOT NULL,
			vega                   REAL NOT NULL,
			theta                  REAL NOT NULL,
			rho                    REAL NOT NULL,
			spot_price             REAL NOT NULL,
			strike_price           REAL NOT NULL,
			time_to_maturity       REAL NOT NULL,
			volatility             REAL NOT NULL,
			risk_free_rate         REAL NOT NULL,
			option_type            TEXT NOT NULL,
			num_simulations        INTEGER NOT NULL,
			seed                   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_simulations_created ON simulations(created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

const selectColumns = `simulation_id, created_at, option_price, std_error, confidence_interval_95,
	black_scholes_price, delta, gamma, vega, theta, rho,
	spot_price, strike_price, time_to_maturity, volatility, risk_free_rate,
	option_type, num_simulations, seed`

func (s *SQLiteStore) Save(ctx context.Context, rec *model.SimulationRecord) error {
	var seed sql.NullInt64
	if rec.Seed != nil {
		// Bit-preserving: seeds above MaxInt64 come back unchanged via uint64().
		seed = sql.NullInt64{Int64: int64(*rec.Seed), Valid: true}
	}
	in := rec.Inputs
	g := rec.Greeks

	_, err := s.db.ExecContext(ctx, `INSERT INTO simulations
		(`+selectColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.SimulationID, rec.Timestamp.UnixNano(),
		rec.OptionPrice, rec.StdError, rec.ConfidenceInterval95,
		rec.BlackScholesPrice, g.Delta, g.Gamma, g.Vega, g.Theta, g.Rho,
		in.SpotPrice, in.StrikePrice, in.TimeToMaturity, in.Volatility, in.RiskFreeRate,
		string(in.OptionType), in.NumSimulations, seed,
	)
	if isPrimaryKeyViolation(err) {
		return duplicate(rec.SimulationID)
	}
	if err != nil {
		return &model.StorageError{Op: "save", Err: err}
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.SimulationRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM simulations WHERE simulation_id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, &model.StorageError{Op: "get", Err: err}
	}
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*model.SimulationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM simulations ORDER BY created_at, simulation_id`)
	if err != nil {
		return nil, &model.StorageError{Op: "list", Err: err}
	}
	defer rows.Close()

	var out []*model.SimulationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, &model.StorageError{Op: "list", Err: err}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.StorageError{Op: "list", Err: err}
	}
	return out, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM simulations WHERE simulation_id = ?`, id)
	if err != nil {
		return false, &model.StorageError{Op: "delete", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &model.StorageError{Op: "delete", Err: err}
	}
	return n > 0, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isPrimaryKeyViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(se.Error(), "simulations.simulation_id")
	}
	return false
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*model.SimulationRecord, error) {
	var (
		rec       model.SimulationRecord
		createdAt int64
		optType   string
		seed      sql.NullInt64
	)
	in := &rec.Inputs
	g := &rec.Greeks
	err := sc.Scan(
		&rec.SimulationID, &createdAt,
		&rec.OptionPrice, &rec.StdError, &rec.ConfidenceInterval95,
		&rec.BlackScholesPrice, &g.Delta, &g.Gamma, &g.Vega, &g.Theta, &g.Rho,
		&in.SpotPrice, &in.StrikePrice, &in.TimeToMaturity, &in.Volatility, &in.RiskFreeRate,
		&optType, &in.NumSimulations, &seed,
	)
	if err != nil {
		return nil, err
	}
	in.OptionType = model.OptionType(optType)
	rec.Timestamp = time.Unix(0, createdAt).UTC()
	if seed.Valid {
		v := uint64(seed.Int64)
		rec.Seed = &v
	}
	return &rec, nil
}
