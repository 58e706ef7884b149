package storage

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Arti-Code/biosynth/stats"
)

// StatsLogger records bucketed rolling statistics into a SQLite
// database, one row per named series per bucket flush. Grounded on the
// teacher's SQLiteLogger, simplified from a per-neuron snapshot table
// to a single flat series-point table matching stats.Series.
type StatsLogger struct {
	db *sql.DB
}

// NewStatsLogger opens dataSourceName, recreating it if it already
// exists so every run starts from an empty log.
func NewStatsLogger(dataSourceName string) (*StatsLogger, error) {
	_ = os.Remove(dataSourceName)

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", dataSourceName, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database %s: %w", dataSourceName, err)
	}

	logger := &StatsLogger{db: db}
	if err := logger.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create stats tables: %w", err)
	}
	return logger, nil
}

func (l *StatsLogger) createTables() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS SeriesPoints (
		PointID    INTEGER PRIMARY KEY AUTOINCREMENT,
		SeriesName TEXT NOT NULL,
		SimTime    REAL NOT NULL,
		Value      REAL NOT NULL
	);`
	_, err := l.db.Exec(schema)
	return err
}

// DBForTest returns the underlying database handle for use in tests.
func (l *StatsLogger) DBForTest() *sql.DB {
	return l.db
}

// seriesNames mirrors the set stats.Stats tracks; kept local so this
// package doesn't need stats to export its internal list.
var seriesNames = []string{
	stats.SeriesLifetimes, stats.SeriesSizes, stats.SeriesBirths, stats.SeriesDeaths,
	stats.SeriesPoints, stats.SeriesNodeCounts, stats.SeriesLinkCounts,
	stats.SeriesPopulation, stats.SeriesPlantCount,
}

// LogBucket appends the most recent point of every tracked series to
// the database, called once per stats-bucket flush (spec §4.6 step 9).
func (l *StatsLogger) LogBucket(s *stats.Stats) error {
	if l.db == nil {
		return fmt.Errorf("stats logger not initialized")
	}

	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin sqlite transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO SeriesPoints (SeriesName, SimTime, Value) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for _, name := range seriesNames {
		series := s.Series(name)
		if series == nil {
			continue
		}
		point, ok := series.Last()
		if !ok {
			continue
		}
		if _, err := stmt.Exec(name, point.Time, point.Value); err != nil {
			return fmt.Errorf("failed to insert point for series %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sqlite transaction: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (l *StatsLogger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}
