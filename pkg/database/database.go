package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/booketlist/booketlist/pkg/config"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type logQueryHook struct {
	log logger.Logger
}

func (*logQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (qh *logQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	data := logger.Data{"duration": time.Since(event.StartTime).String()}
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		qh.log.Err(event.Err).Debug(event.Query, data)
		return
	}
	qh.log.Debug(event.Query, data)
}

// New opens the SQLite database described by cfg and applies the connection
// pragmas every query relies on, foreign key enforcement included.
func New(cfg *config.Config) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseFilePath)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Pragmas are per connection, so the pool is pinned to one connection that
	// never expires. That also keeps an in-memory database the same database
	// and serializes writers instead of surfacing SQLITE_BUSY.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)
	sqldb.SetConnMaxIdleTime(0)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	// print out all queries in debug mode
	if cfg.DatabaseDebug {
		db.AddQueryHook(&logQueryHook{logger.NewWithLevel("debug")})
	}

	// The file may live on a volume that isn't mounted yet when the process
	// starts, so give it a few attempts.
	for i := 0; i < cfg.DatabaseConnectRetryCount; i++ {
		_, err = db.Exec("SELECT 1")
		if err != nil {
			time.Sleep(cfg.DatabaseConnectRetryDelay)
			continue
		}
		break
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := ApplyPragmas(context.Background(), db, cfg.DatabaseBusyTimeout); err != nil {
		return nil, err
	}

	return db, nil
}

// ApplyPragmas switches on foreign key enforcement and configures locking
// behaviour. In-memory databases ignore the WAL request and report "memory".
func ApplyPragmas(ctx context.Context, db bun.IDB, busyTimeout time.Duration) error {
	_, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON")
	if err != nil {
		return errors.Wrap(err, "failed to enable foreign keys")
	}

	var mode string
	err = db.NewRaw("PRAGMA journal_mode = WAL").Scan(ctx, &mode)
	if err != nil {
		return errors.Wrap(err, "failed to enable WAL mode")
	}

	// busy_timeout makes SQLite wait before returning SQLITE_BUSY.
	_, err = db.ExecContext(ctx, "PRAGMA busy_timeout = ?", busyTimeout.Milliseconds())
	if err != nil {
		return errors.Wrap(err, "failed to set busy_timeout")
	}

	return nil
}
