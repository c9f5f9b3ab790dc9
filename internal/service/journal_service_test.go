package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/options_go_server/internal/model/dto"
	"github.com/qs3c/options_go_server/internal/repository"
	"github.com/qs3c/options_go_server/internal/testutil"
)

func setupJournalService(t *testing.T) (*JournalService, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	return NewJournalService(repository.NewJournalRepository(db)), db
}

func TestJournalCreate(t *testing.T) {
	svc, db := setupJournalService(t)
	user := testutil.TestUser(t, db)
	now := time.Now().UTC()

	entry, err := svc.Create(user.ID, &dto.CreateJournalRequest{
		Ticker:     "nvda",
		Strategy:   "Long Call",
		OptionType: "call",
		Strike:     180,
		Expiration: "2026-10-16",
		EntryPrice: 7.20,
		Thesis:     "AI capex keeps climbing",
	}, now)
	require.NoError(t, err)

	assert.NotZero(t, entry.ID)
	assert.Equal(t, "NVDA", entry.Ticker) // uppercased like everywhere else
	assert.Equal(t, "open", entry.Status)
	assert.Equal(t, 1, entry.Contracts) // defaulted
	require.NotNil(t, entry.Expiration)
	assert.Equal(t, "2026-10-16", entry.Expiration.Format("2006-01-02"))
}

func TestJournalList_FiltersAndPaging(t *testing.T) {
	svc, db := setupJournalService(t)
	user := testutil.TestUser(t, db)

	for i := 0; i < 3; i++ {
		testutil.TestJournalEntry(t, db, user.ID, testutil.WithJournalTicker("AAPL"))
	}
	testutil.TestJournalEntry(t, db, user.ID,
		testutil.WithJournalTicker("TSLA"), testutil.WithJournalStatus("closed"))

	entries, total, err := svc.List(user.ID, 1, 20, "", "")
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, entries, 4)

	entries, total, err = svc.List(user.ID, 1, 20, "closed", "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "TSLA", entries[0].Ticker)

	entries, total, err = svc.List(user.ID, 1, 2, "", "AAPL")
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, entries, 2)
}

func TestJournalList_ScopedToUser(t *testing.T) {
	svc, db := setupJournalService(t)
	alice := testutil.TestUser(t, db)
	bob := testutil.TestUser(t, db)

	testutil.TestJournalEntry(t, db, alice.ID)

	entries, total, err := svc.List(bob.ID, 1, 20, "", "")
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, entries)
}

func TestJournalUpdate_CloseComputesPnL(t *testing.T) {
	svc, db := setupJournalService(t)
	user := testutil.TestUser(t, db)
	now := time.Now().UTC()

	entry := testutil.TestJournalEntry(t, db, user.ID)

	exit := 8.40
	status := "closed"
	updated, err := svc.Update(user.ID, entry.ID, &dto.UpdateJournalRequest{
		ExitPrice: &exit,
		Status:    &status,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, "closed", updated.Status)
	require.NotNil(t, updated.ExitDate)
	// (8.40 - 5.40) * 100 shares * 1 contract
	assert.InDelta(t, 300.0, updated.RealizedPnL, 1e-9)
}

func TestJournalUpdate_OtherUsersEntry(t *testing.T) {
	svc, db := setupJournalService(t)
	alice := testutil.TestUser(t, db)
	bob := testutil.TestUser(t, db)

	entry := testutil.TestJournalEntry(t, db, alice.ID)

	notes := "not yours"
	_, err := svc.Update(bob.ID, entry.ID, &dto.UpdateJournalRequest{Notes: &notes}, time.Now().UTC())
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestJournalDelete(t *testing.T) {
	svc, db := setupJournalService(t)
	user := testutil.TestUser(t, db)

	entry := testutil.TestJournalEntry(t, db, user.ID)
	require.NoError(t, svc.Delete(user.ID, entry.ID))

	_, err := svc.Get(user.ID, entry.ID)
	assert.ErrorIs(t, err, ErrJournalNotFound)
}

func TestJournalGet_NotFound(t *testing.T) {
	svc, db := setupJournalService(t)
	user := testutil.TestUser(t, db)

	_, err := svc.Get(user.ID, 99999)
	assert.ErrorIs(t, err, ErrJournalNotFound)
}
