package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lukewarren/accountd/internal/database/testutil"
	"github.com/lukewarren/accountd/internal/models"
	"github.com/lukewarren/accountd/internal/services"
	"github.com/lukewarren/accountd/internal/tracking"
)

func newActivityService(t *testing.T) *services.ActivityService {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	svc, err := services.NewActivityService(db, tracking.NewTracker(nil))
	require.NoError(t, err)

	old := models.ActivityLog{UserID: "u1", Action: "login", CreatedAt: time.Now().AddDate(0, 0, -200)}
	fresh := models.ActivityLog{UserID: "u1", Action: "login", CreatedAt: time.Now()}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&fresh).Error)

	return svc
}

func TestRunOncePrunesOldEntries(t *testing.T) {
	svc := newActivityService(t)

	cleaner := NewCleaner(svc, 90)
	require.True(t, cleaner.Enabled())
	require.NoError(t, cleaner.RunOnce(context.Background()))

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRunOnceDisabledWithoutRetention(t *testing.T) {
	svc := newActivityService(t)

	cleaner := NewCleaner(svc, 0)
	require.False(t, cleaner.Enabled())
	require.NoError(t, cleaner.RunOnce(context.Background()))

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestStartIsNoopWhenDisabled(t *testing.T) {
	cleaner := NewCleaner(nil, 30)
	require.False(t, cleaner.Enabled())
	require.NoError(t, cleaner.Start())
	<-cleaner.Stop().Done()
}
