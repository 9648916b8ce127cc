package sinks

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/joeydtaylor/steeze-relay/pkg/core"
	"github.com/joeydtaylor/steeze-relay/pkg/manifest"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"
)

// webhookRow is the wpwebhooks table.
type webhookRow struct {
	bun.BaseModel `bun:"table:wpwebhooks,alias:wp"`

	ID             int64  `bun:"id,pk,autoincrement"`
	ProjectID      string `bun:"project_id,notnull"`
	UserID         string `bun:"user_id,notnull"`
	RevisionNumber int    `bun:"revision_number,type:integer,notnull"`
	Timestamp      int64  `bun:"timestamp,type:bigint,notnull"`
	OntologyID     *int   `bun:"ontology_id,type:integer"`
}

func rowFromRecord(r core.WebhookRecord) *webhookRow {
	return &webhookRow{
		ProjectID:      r.ProjectID,
		UserID:         r.UserID,
		RevisionNumber: r.RevisionNumber,
		Timestamp:      r.Timestamp,
		OntologyID:     r.OntologyID,
	}
}

func (w webhookRow) record() core.WebhookRecord {
	return core.WebhookRecord{
		ID:             w.ID,
		ProjectID:      w.ProjectID,
		UserID:         w.UserID,
		RevisionNumber: w.RevisionNumber,
		Timestamp:      w.Timestamp,
		OntologyID:     w.OntologyID,
	}
}

// RecordWriter inserts one wpwebhooks row per delivery on a connection that
// lives only for that delivery.
type RecordWriter struct {
	dialect manifest.Dialect
	dsn     string
	debug   bool
	log     *zap.Logger
}

func NewRecordWriter(cfg manifest.RecordSink, zl *zap.Logger) *RecordWriter {
	if zl == nil {
		zl = zap.NewNop()
	}
	return &RecordWriter{
		dialect: cfg.Dialect,
		dsn:     cfg.ConnString(),
		debug:   cfg.Debug,
		log:     zl,
	}
}

func (w *RecordWriter) Name() string { return "record:" + string(w.dialect) }

func (w *RecordWriter) Deliver(ctx context.Context, d core.Delivery) error {
	rec, err := core.ParseWebhookRecord(d.Event.Body)
	if err != nil {
		return err
	}

	db, err := w.open()
	if err != nil {
		return w.fail("connect", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			w.log.Warn("record store close failed", zap.String("eventId", d.Event.ID), zap.Error(cerr))
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		return w.fail("connect", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		return w.fail("sync", err)
	}

	row := rowFromRecord(rec)
	if _, err := db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return w.fail("insert", err)
	}
	w.log.Debug("webhook record written",
		zap.String("eventId", d.Event.ID),
		zap.Int64("id", row.ID),
		zap.String("projectId", row.ProjectID),
	)
	return nil
}

func (w *RecordWriter) open() (*bun.DB, error) {
	var (
		sqldb *sql.DB
		db    *bun.DB
		err   error
	)
	switch w.dialect {
	case manifest.DialectPostgres:
		if sqldb, err = sql.Open("postgres", w.dsn); err != nil {
			return nil, err
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	case manifest.DialectSQLite:
		if sqldb, err = sql.Open("sqlite3", w.dsn); err != nil {
			return nil, err
		}
		db = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		return nil, fmt.Errorf("unsupported dialect %q", w.dialect)
	}
	sqldb.SetMaxOpenConns(1)
	if w.debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*webhookRow)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (w *RecordWriter) fail(stage string, err error) error {
	return &core.DeliveryError{Sink: w.Name(), Stage: stage, Err: err}
}
