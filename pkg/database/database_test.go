package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/booketlist/booketlist/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EnablesForeignKeys(t *testing.T) {
	t.Parallel()

	db, err := New(config.NewForTest())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var enabled int
	err = db.NewRaw("PRAGMA foreign_keys").Scan(context.Background(), &enabled)
	require.NoError(t, err)
	assert.Equal(t, 1, enabled)
}

func TestNew_FileDatabaseUsesWAL(t *testing.T) {
	t.Parallel()

	cfg := config.NewForTest()
	cfg.DatabaseFilePath = filepath.Join(t.TempDir(), "booketlist.db")

	db, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var mode string
	err = db.NewRaw("PRAGMA journal_mode").Scan(context.Background(), &mode)
	require.NoError(t, err)
	assert.Equal(t, "wal", mode)
}

func TestNew_EveryQuerySeesForeignKeys(t *testing.T) {
	t.Parallel()

	cfg := config.NewForTest()
	cfg.DatabaseFilePath = filepath.Join(t.TempDir(), "booketlist.db")

	db, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)

	// Hold a transaction open so any extra connection would have to be dialed.
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	results := make(chan int, 4)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var enabled int
			if err := db.NewRaw("PRAGMA foreign_keys").Scan(ctx, &enabled); err != nil {
				enabled = -1
			}
			results <- enabled
		}()
	}

	var inTx int
	require.NoError(t, tx.NewRaw("PRAGMA foreign_keys").Scan(ctx, &inTx))
	assert.Equal(t, 1, inTx)
	require.NoError(t, tx.Commit())

	wg.Wait()
	close(results)
	for enabled := range results {
		assert.Equal(t, 1, enabled)
	}
}

func TestNew_RejectsOrphanedRows(t *testing.T) {
	t.Parallel()

	db, err := New(config.NewForTest())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE parents (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE children (id INTEGER PRIMARY KEY, parent_id INTEGER NOT NULL REFERENCES parents (id))`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO parents (id) VALUES (1)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO children (parent_id) VALUES (1)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO children (parent_id) VALUES (2)`)
	require.Error(t, err)

	_, err = db.Exec(`DELETE FROM parents WHERE id = 1`)
	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err))
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	db, err := New(config.NewForTest())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE emails (email TEXT NOT NULL UNIQUE)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO emails (email) VALUES ('ana@x.com')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO emails (email) VALUES ('ana@x.com')`)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsForeignKeyViolation(err))
	assert.False(t, IsUniqueViolation(nil))
}
