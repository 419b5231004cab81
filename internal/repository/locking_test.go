package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlRecorder captures every statement GORM builds. With DryRun and pinging
// disabled the dialector never touches a real database, so these tests can
// assert on the generated SQL offline.
type sqlRecorder struct {
	mu    sync.Mutex
	stmts []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{}) {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{}) {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}
func (r *sqlRecorder) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	sql, _ := fc()
	r.mu.Lock()
	r.stmts = append(r.stmts, sql)
	r.mu.Unlock()
}

func (r *sqlRecorder) last(t *testing.T) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.stmts)
	return r.stmts[len(r.stmts)-1]
}

func newDryRunDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(postgres.Open("host=localhost user=postgres dbname=rideboard"), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 rec,
	})
	require.NoError(t, err)
	return db, rec
}

// The ledger's serialization rests on LockByID actually emitting FOR UPDATE;
// a plain SELECT here would silently drop the row lock.
func TestOfferingLockByID_EmitsForUpdate(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewOfferingRepository(db)

	_, _ = repo.LockByID(context.Background(), db, 1)

	assert.Contains(t, rec.last(t), "FOR UPDATE")
}

func TestRequestLockByID_EmitsForUpdate(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewRequestRepository(db)

	_, _ = repo.LockByID(context.Background(), db, 1)

	assert.Contains(t, rec.last(t), "FOR UPDATE")
}

// Unlocked reads must stay unlocked.
func TestOfferingFindByID_NoLock(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewOfferingRepository(db)

	_, _ = repo.FindByID(context.Background(), 1)

	assert.NotContains(t, rec.last(t), "FOR UPDATE")
}

// The seat update carries its range guard in the WHERE clause.
func TestAdjustSeats_CarriesRangeGuard(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewOfferingRepository(db)

	// DryRun updates report zero rows affected, which the guard treats as
	// a rejection; only the generated SQL matters here.
	_ = repo.AdjustSeats(context.Background(), db, 1, -1)

	last := rec.last(t)
	assert.Contains(t, last, "available_seats + ")
	assert.Contains(t, last, "<= total_seats")
}
