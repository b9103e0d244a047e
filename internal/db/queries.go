package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	embedsql "github.com/gyeh/noharmcheck/internal/sql"
)

// Run statuses stored in ingest.runs.status.
const (
	RunPending  = "pending"
	RunRejected = "rejected"
	RunStaging  = "staging"
	RunStaged   = "staged"
	RunAccepted = "accepted"
	RunPromoted = "promoted"
	RunFailed   = "failed"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries runs the embedded registry statements against a DBTX.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to tx.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

type RegisterRunParams struct {
	RunID        uuid.UUID
	BatchSHA256  string
	SchemaLabel  string
	Status       string
	ReportStatus string
	IssueCount   int
	WarningCount int
	Report       json.RawMessage
}

func (q *Queries) RegisterRun(ctx context.Context, arg RegisterRunParams) error {
	_, err := q.db.Exec(ctx, embedsql.RegisterRun,
		arg.RunID,
		arg.BatchSHA256,
		arg.SchemaLabel,
		arg.Status,
		arg.ReportStatus,
		arg.IssueCount,
		arg.WarningCount,
		arg.Report,
	)
	return err
}

type LookupRunRow struct {
	RunID  uuid.UUID
	Status string
}

// LookupRunBySHA returns the latest accepted or promoted run of a batch
// digest. found is false when there is none.
func (q *Queries) LookupRunBySHA(ctx context.Context, batchSHA256 string) (row LookupRunRow, found bool, err error) {
	err = q.db.QueryRow(ctx, embedsql.LookupRunBySHA, batchSHA256).Scan(&row.RunID, &row.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return LookupRunRow{}, false, nil
	}
	if err != nil {
		return LookupRunRow{}, false, err
	}
	return row, true, nil
}

func (q *Queries) UpdateRunStatus(ctx context.Context, runID uuid.UUID, status string) error {
	tag, err := q.db.Exec(ctx, embedsql.UpdateRunStatus, runID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s not registered", runID)
	}
	return nil
}

type InsertRunFileParams struct {
	RunID         uuid.UUID
	Category      string
	SourceFile    string
	FileSHA256    string
	FileSizeBytes int64
	Format        string
	Encoding      string
	Status        string
	RecordCount   int
	ColumnCount   int
	Issues        []string
	Warnings      []string
}

func (q *Queries) InsertRunFile(ctx context.Context, arg InsertRunFileParams) error {
	issues, err := jsonList(arg.Issues)
	if err != nil {
		return fmt.Errorf("encode issues: %w", err)
	}
	warnings, err := jsonList(arg.Warnings)
	if err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}
	_, err = q.db.Exec(ctx, embedsql.InsertRunFile,
		arg.RunID,
		arg.Category,
		arg.SourceFile,
		arg.FileSHA256,
		arg.FileSizeBytes,
		arg.Format,
		arg.Encoding,
		arg.Status,
		arg.RecordCount,
		arg.ColumnCount,
		issues,
		warnings,
	)
	return err
}

// ClearPromotedCategories deletes the serving records of every category the
// run has staged.
func (q *Queries) ClearPromotedCategories(ctx context.Context, runID uuid.UUID) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, embedsql.ClearPromotedCategories, runID)
}

// PromoteRun copies the run's staged records into noharm.records.
func (q *Queries) PromoteRun(ctx context.Context, runID uuid.UUID) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, embedsql.PromoteRun, runID)
}

func (q *Queries) DeleteStagingRun(ctx context.Context, runID uuid.UUID) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, embedsql.DeleteStagingRun, runID)
}

func (q *Queries) AnalyzeRecords(ctx context.Context) error {
	_, err := q.db.Exec(ctx, embedsql.AnalyzeRecords)
	return err
}

func jsonList(items []string) (json.RawMessage, error) {
	if items == nil {
		items = []string{}
	}
	return json.Marshal(items)
}
