package ingest_test

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/noharmcheck/internal/config"
	"github.com/gyeh/noharmcheck/internal/db"
	"github.com/gyeh/noharmcheck/internal/fixture"
	"github.com/gyeh/noharmcheck/internal/ingest"
	"github.com/gyeh/noharmcheck/internal/logging"
	"github.com/gyeh/noharmcheck/internal/model"
	"github.com/gyeh/noharmcheck/internal/schema"
)

const (
	testPort     = 15433
	testDB       = "noharmtest"
	testUser     = "postgres"
	testPassword = "postgres"
	fixtureRows  = 25
)

var (
	testDSN string
	pg      *embeddedpostgres.EmbeddedPostgres
)

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		fmt.Fprintln(os.Stderr, "SKIP: database tests need embedded postgres (-short set)")
		os.Exit(m.Run())
	}

	testDSN = fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
		testUser, testPassword, testPort, testDB)

	pg = embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(uint32(testPort)).
			Database(testDB).
			Username(testUser).
			Password(testPassword).
			Version(embeddedpostgres.V16).
			StartTimeout(30 * time.Second),
	)

	if err := pg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start embedded postgres: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if err := pg.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop embedded postgres: %v\n", err)
	}

	os.Exit(code)
}

// setupDB connects, drops the registry schemas and applies migrations.
func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if pg == nil {
		t.Skip("embedded postgres not started")
	}
	ctx := context.Background()

	pool, err := db.NewPool(ctx, testDSN)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	for _, s := range []string{"noharm", "ingest"} {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", s)); err != nil {
			t.Fatalf("drop schema %s: %v", s, err)
		}
	}

	log := logging.Setup("text")
	if err := db.ApplyMigrations(ctx, pool, log); err != nil {
		pool.Close()
		t.Fatalf("migrations: %v", err)
	}

	t.Cleanup(func() { pool.Close() })
	return pool
}

// writeBatch writes a fixture batch and returns a config pointing at it.
func writeBatch(t *testing.T, format string, broken bool) *config.Config {
	t.Helper()
	tables := fixture.Batch(schema.Default, fixtureRows)
	if broken {
		fixture.Break(tables)
	}
	paths, err := fixture.WriteDir(t.TempDir(), tables, format)
	if err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return &config.Config{Files: paths}
}

func countRows(t *testing.T, pool *pgxpool.Pool, query string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := pool.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("count %q: %v", query, err)
	}
	return n
}

func runStatus(t *testing.T, pool *pgxpool.Pool, runID string) string {
	t.Helper()
	var status string
	err := pool.QueryRow(context.Background(),
		"SELECT status FROM ingest.runs WHERE run_id = $1", runID).Scan(&status)
	if err != nil {
		t.Fatalf("query run status: %v", err)
	}
	return status
}

func TestMigrations_Idempotent(t *testing.T) {
	pool := setupDB(t)
	if err := db.ApplyMigrations(context.Background(), pool, logging.Setup("text")); err != nil {
		t.Fatalf("second migration run: %v", err)
	}
	names, err := db.MigrationNames()
	if err != nil || len(names) == 0 {
		t.Fatalf("expected embedded migrations, got %v (%v)", names, err)
	}
}

func TestPipeline_ConformingBatchPromoted(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text")

	cfg := writeBatch(t, "csv", false)
	cfg.ActivateRun = true

	summary, err := ingest.Run(ctx, pool, log, schema.Default, cfg)
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}

	total := int64(fixtureRows * len(model.AllCategories))

	t.Run("summary", func(t *testing.T) {
		if summary.Rejected || summary.AlreadyLoaded {
			t.Errorf("unexpected summary flags: %+v", summary)
		}
		if summary.Status != "ok" {
			t.Errorf("status: got %q, want ok", summary.Status)
		}
		if summary.FilesLoaded != len(model.AllCategories) {
			t.Errorf("files loaded: got %d", summary.FilesLoaded)
		}
		if summary.RecordsRead != total || summary.RecordsStaged != total || summary.RecordsPromoted != total {
			t.Errorf("record counts: read=%d staged=%d promoted=%d, want %d",
				summary.RecordsRead, summary.RecordsStaged, summary.RecordsPromoted, total)
		}
		if !summary.Promoted {
			t.Error("expected run to be promoted")
		}
	})

	t.Run("run_registered", func(t *testing.T) {
		if got := runStatus(t, pool, summary.RunID); got != db.RunPromoted {
			t.Errorf("run status: got %q, want %q", got, db.RunPromoted)
		}
		var sha string
		err := pool.QueryRow(ctx, "SELECT batch_sha256 FROM ingest.runs WHERE run_id = $1", summary.RunID).Scan(&sha)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if sha != summary.BatchSHA256 {
			t.Errorf("batch sha: got %s, want %s", sha, summary.BatchSHA256)
		}
	})

	t.Run("run_files", func(t *testing.T) {
		n := countRows(t, pool, "SELECT count(*) FROM ingest.run_files WHERE run_id = $1 AND status = 'ok'", summary.RunID)
		if n != int64(len(model.AllCategories)) {
			t.Errorf("ok run files: got %d", n)
		}
		var format string
		var records int
		err := pool.QueryRow(ctx,
			"SELECT format, record_count FROM ingest.run_files WHERE run_id = $1 AND category = 'sectors'",
			summary.RunID).Scan(&format, &records)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if format != "csv" || records != fixtureRows {
			t.Errorf("sectors run file: format=%s records=%d", format, records)
		}
	})

	t.Run("serving_records_by_category", func(t *testing.T) {
		for _, c := range model.AllCategories {
			n := countRows(t, pool, "SELECT count(*) FROM noharm.records WHERE category = $1", string(c.Key))
			if n != fixtureRows {
				t.Errorf("%s: got %d records, want %d", c.Key, n, fixtureRows)
			}
		}
	})

	t.Run("record_key_and_payload", func(t *testing.T) {
		var nome string
		err := pool.QueryRow(ctx,
			`SELECT payload->>'nome' FROM noharm.records
			 WHERE category = 'sectors' AND record_key = '1'`).Scan(&nome)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if nome == "" {
			t.Error("expected payload to keep the sector name")
		}
	})

	t.Run("staging_cleaned_up", func(t *testing.T) {
		if n := countRows(t, pool, "SELECT count(*) FROM ingest.stage_records"); n != 0 {
			t.Errorf("expected empty staging, got %d", n)
		}
	})

	t.Run("same_batch_skipped", func(t *testing.T) {
		again, err := ingest.Run(ctx, pool, log, schema.Default, cfg)
		if err != nil {
			t.Fatalf("second run: %v", err)
		}
		if !again.AlreadyLoaded || again.RunID != summary.RunID {
			t.Errorf("expected skip pointing at %s, got %+v", summary.RunID, again)
		}
		if n := countRows(t, pool, "SELECT count(*) FROM ingest.runs"); n != 1 {
			t.Errorf("expected one registered run, got %d", n)
		}
	})

	t.Run("forced_rerun_replaces", func(t *testing.T) {
		forced := *cfg
		forced.Force = true
		again, err := ingest.Run(ctx, pool, log, schema.Default, &forced)
		if err != nil {
			t.Fatalf("forced run: %v", err)
		}
		if again.AlreadyLoaded || again.RunID == summary.RunID {
			t.Errorf("expected a new run, got %+v", again)
		}
		if n := countRows(t, pool, "SELECT count(*) FROM noharm.records"); n != total {
			t.Errorf("serving records after replace: got %d, want %d", n, total)
		}
		n := countRows(t, pool, "SELECT count(*) FROM noharm.records WHERE run_id = $1", summary.RunID)
		if n != 0 {
			t.Errorf("records of the replaced run remain: %d", n)
		}
	})
}

func TestPipeline_AcceptedKeepsStaging(t *testing.T) {
	pool := setupDB(t)
	cfg := writeBatch(t, "json", false)
	cfg.KeepStaging = true

	summary, err := ingest.Run(context.Background(), pool, logging.Setup("text"), schema.Default, cfg)
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	if summary.Promoted {
		t.Error("expected run not to be promoted")
	}
	if got := runStatus(t, pool, summary.RunID); got != db.RunAccepted {
		t.Errorf("run status: got %q, want %q", got, db.RunAccepted)
	}
	total := int64(fixtureRows * len(model.AllCategories))
	if n := countRows(t, pool, "SELECT count(*) FROM ingest.stage_records WHERE run_id = $1", summary.RunID); n != total {
		t.Errorf("staged records: got %d, want %d", n, total)
	}
	if n := countRows(t, pool, "SELECT count(*) FROM noharm.records"); n != 0 {
		t.Errorf("expected no serving records, got %d", n)
	}
}

func TestPipeline_ParquetBatch(t *testing.T) {
	pool := setupDB(t)
	cfg := writeBatch(t, "parquet", false)
	cfg.ActivateRun = true

	summary, err := ingest.Run(context.Background(), pool, logging.Setup("text"), schema.Default, cfg)
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	if n := countRows(t, pool, "SELECT count(*) FROM noharm.records WHERE category = 'prescriptions'"); n != fixtureRows {
		t.Errorf("prescriptions: got %d, want %d", n, fixtureRows)
	}
	if summary.RecordsByFile[model.Units] != fixtureRows {
		t.Errorf("units records: got %d", summary.RecordsByFile[model.Units])
	}
}

func TestPipeline_BrokenBatchRejected(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	cfg := writeBatch(t, "csv", true)
	cfg.ActivateRun = true

	summary, err := ingest.Run(ctx, pool, logging.Setup("text"), schema.Default, cfg)
	if !errors.Is(err, ingest.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if summary == nil || !summary.Rejected || summary.IssueCount == 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if got := runStatus(t, pool, summary.RunID); got != db.RunRejected {
		t.Errorf("run status: got %q, want %q", got, db.RunRejected)
	}

	var issues int
	err = pool.QueryRow(ctx,
		`SELECT jsonb_array_length(issues) FROM ingest.run_files
		 WHERE run_id = $1 AND category = 'prescriptions'`, summary.RunID).Scan(&issues)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if issues == 0 {
		t.Error("expected prescriptions issues to be stored")
	}

	if n := countRows(t, pool, "SELECT count(*) FROM ingest.stage_records"); n != 0 {
		t.Errorf("rejected batch staged %d records", n)
	}
	if n := countRows(t, pool, "SELECT count(*) FROM noharm.records"); n != 0 {
		t.Errorf("rejected batch promoted %d records", n)
	}
}

func TestPipeline_IncompleteBatchRejected(t *testing.T) {
	pool := setupDB(t)
	cfg := writeBatch(t, "csv", false)
	delete(cfg.Files, model.Frequency)

	summary, err := ingest.Run(context.Background(), pool, logging.Setup("text"), schema.Default, cfg)
	if !errors.Is(err, ingest.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if summary.FilesLoaded != len(model.AllCategories)-1 {
		t.Errorf("files loaded: got %d", summary.FilesLoaded)
	}
	n := countRows(t, pool, "SELECT count(*) FROM ingest.run_files WHERE run_id = $1 AND status = 'unchecked'", summary.RunID)
	if n != int64(len(model.AllCategories)-1) {
		t.Errorf("unchecked run files: got %d", n)
	}
}
