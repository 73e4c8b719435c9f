package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/parttimehacker/diystatus/internal/domain"
	"github.com/parttimehacker/diystatus/internal/ports"
)

// TimescaleSink archives published averages in a TimescaleDB (or plain
// Postgres) table:
//
//	CREATE TABLE host_averages (
//	    host          text        NOT NULL,
//	    ts            timestamptz NOT NULL,
//	    cpu_percent   double precision,
//	    cpu_celsius   double precision,
//	    disk_free_gib double precision,
//	    samples       integer,
//	    PRIMARY KEY (host, ts)
//	);
type TimescaleSink struct {
	db        *sql.DB
	tableName string
}

func NewTimescaleSink(db *sql.DB, table string) *TimescaleSink {
	return &TimescaleSink{db: db, tableName: table}
}

func (t *TimescaleSink) Name() string { return "timescaledb" }

func (t *TimescaleSink) WriteAverages(ctx context.Context, host string, at time.Time, avg domain.Averages) error {
	query := fmt.Sprintf("INSERT INTO %s (host, ts, cpu_percent, cpu_celsius, disk_free_gib, samples) "+
		"VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT (host, ts) DO NOTHING", t.tableName)

	_, err := t.db.ExecContext(ctx, query,
		host,
		at,
		avg.CPUPercent,
		avg.TemperatureCelsius,
		avg.DiskFreeGiB,
		avg.Samples,
	)
	if err != nil {
		return fmt.Errorf("archive averages: %w", err)
	}
	return nil
}

var _ ports.Archive = (*TimescaleSink)(nil)
