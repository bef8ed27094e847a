package jobs_test

import (
	"testing"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/longbox-dev/longbox/internal/config"
	"github.com/longbox-dev/longbox/internal/jobs"
	"github.com/longbox-dev/longbox/internal/operations"
	"github.com/longbox-dev/longbox/internal/store"
	"github.com/longbox-dev/longbox/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func scheduleTestContext(t *testing.T) *fakeJobContext {
	t.Helper()
	ctx := &fakeJobContext{
		db:  testutil.SetupTestDB(t),
		cfg: &config.Config{},
		ops: operations.NewRegistry(),
	}
	ctx.jobMgr = jobs.NewManager(ctx)
	return ctx
}

func TestConfigureSyncSchedule_Disabled(t *testing.T) {
	ctx := scheduleTestContext(t)
	s := gocron.NewScheduler(time.UTC)

	// No schedule saved yet: the disabled default installs nothing.
	err := jobs.ConfigureSyncSchedule(s, ctx)
	assert.NoError(t, err)
	assert.Empty(t, s.Jobs())
}

func TestConfigureSyncSchedule_DailyAndWeekly(t *testing.T) {
	ctx := scheduleTestContext(t)
	st := store.New(ctx.DB())
	s := gocron.NewScheduler(time.UTC)

	st.SaveSyncSchedule("daily", "04:00", 0)
	if err := jobs.ConfigureSyncSchedule(s, ctx); err != nil {
		t.Fatalf("ConfigureSyncSchedule failed: %v", err)
	}
	assert.Len(t, s.Jobs(), 1)

	// Reconfiguring replaces the previous schedule job instead of stacking.
	st.SaveSyncSchedule("weekly", "05:30", 2)
	if err := jobs.ConfigureSyncSchedule(s, ctx); err != nil {
		t.Fatalf("ConfigureSyncSchedule failed: %v", err)
	}
	assert.Len(t, s.Jobs(), 1)

	// Disabling clears it.
	st.SaveSyncSchedule("disabled", "05:30", 2)
	if err := jobs.ConfigureSyncSchedule(s, ctx); err != nil {
		t.Fatalf("ConfigureSyncSchedule failed: %v", err)
	}
	assert.Empty(t, s.Jobs())
}
