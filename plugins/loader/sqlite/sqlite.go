// Package sqlite implements a SQLite loader persisting parameter samples.
// Each batch is written in one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"stellab.xyz/argus/internal/core"
	"stellab.xyz/argus/internal/log"
	"stellab.xyz/argus/internal/telemetry"
	"stellab.xyz/argus/pkg/plugin"
)

const schema = `
CREATE TABLE IF NOT EXISTS samples (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	parameter   TEXT NOT NULL,
	apid        INTEGER NOT NULL,
	seq_count   INTEGER NOT NULL,
	sample_time REAL NOT NULL,
	raw         TEXT NOT NULL,
	eng         TEXT NOT NULL,
	unit        TEXT,
	calibration TEXT
);
CREATE INDEX IF NOT EXISTS idx_samples_parameter_time ON samples(parameter, sample_time);
`

const insertSQL = `INSERT INTO samples
	(parameter, apid, seq_count, sample_time, raw, eng, unit, calibration)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// Config represents SQLite loader configuration.
type Config struct {
	Path string `mapstructure:"path"`
}

// SQLiteLoader writes samples to a SQLite database.
type SQLiteLoader struct {
	name string
	cfg  Config
	db   *sql.DB
	rows int
}

// NewSQLiteLoader creates a new SQLite loader.
func NewSQLiteLoader() plugin.Loader {
	return &SQLiteLoader{name: "sqlite"}
}

// Name returns the plugin name.
func (l *SQLiteLoader) Name() string {
	return l.name
}

// Init opens the database and ensures the schema exists.
func (l *SQLiteLoader) Init(config map[string]any) error {
	if err := plugin.DecodeConfig(config, &l.cfg); err != nil {
		return err
	}
	if l.cfg.Path == "" {
		return fmt.Errorf("path is required")
	}

	db, err := sql.Open("sqlite", l.cfg.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fmt.Errorf("create schema: %w", err)
	}
	l.db = db
	return nil
}

// Load inserts all samples of the batch in one transaction.
func (l *SQLiteLoader) Load(ctx context.Context, ds *telemetry.Dataset) error {
	if l.db == nil {
		return fmt.Errorf("loader not initialized")
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", core.ErrSinkFailure, err)
	}
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: prepare: %v", core.ErrSinkFailure, err)
	}
	defer stmt.Close()

	for _, name := range ds.ParameterNames() {
		rec := ds.Parameters[name]
		for _, s := range rec.Samples {
			_, err := stmt.ExecContext(ctx,
				s.Name, s.APID, s.SeqCount, s.SampleTime,
				s.Raw.String(), s.Eng.String(), s.Unit, s.CalibrationID)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("%w: insert %s: %v", core.ErrSinkFailure, s.Name, err)
			}
			l.rows++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", core.ErrSinkFailure, err)
	}
	return nil
}

// Close closes the database.
func (l *SQLiteLoader) Close() error {
	if l.db == nil {
		return nil
	}
	log.GetLogger().WithFields(map[string]interface{}{
		"path": l.cfg.Path,
		"rows": l.rows,
	}).Info("sqlite loader closed")
	return l.db.Close()
}
