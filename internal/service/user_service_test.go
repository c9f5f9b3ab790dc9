package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/options_go_server/config"
	"github.com/qs3c/options_go_server/internal/model"
	"github.com/qs3c/options_go_server/internal/model/dto"
	"github.com/qs3c/options_go_server/internal/repository"
	"github.com/qs3c/options_go_server/internal/testutil"
)

func setupUserService(t *testing.T) (*UserService, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := testSubscriptionConfig()
	cfg.JWT = config.JWTConfig{Secret: "test-secret", ExpireHours: 24}

	userRepo := repository.NewUserRepository(db)
	entitlement := NewEntitlementService(userRepo, nil, nil, cfg)
	authService := NewAuthService(userRepo, entitlement, nil, cfg)
	return NewUserService(userRepo, authService, entitlement), db
}

func TestProfile_WritesBackExpiredTrial(t *testing.T) {
	svc, db := setupUserService(t)
	now := time.Now().UTC()

	user := testutil.TestUser(t, db, testutil.WithTrialEnd(now.Add(-time.Hour)))

	info, err := svc.Profile(user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, model.PlanExpired, info.Plan)

	var reloaded model.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, model.PlanExpired, reloaded.Plan)
}

func TestUpdateProfile_ChangesUsername(t *testing.T) {
	svc, db := setupUserService(t)
	now := time.Now().UTC()

	user := testutil.TestUser(t, db, testutil.WithUsername("oldname"))

	info, err := svc.UpdateProfile(user.ID, &dto.UpdateProfileRequest{Username: "newname"}, now)
	require.NoError(t, err)
	assert.Equal(t, "newname", info.Username)

	var reloaded model.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, "newname", reloaded.Username)
}

func TestUpdateProfile_UsernameTaken(t *testing.T) {
	svc, db := setupUserService(t)
	now := time.Now().UTC()

	testutil.TestUser(t, db, testutil.WithUsername("taken"))
	user := testutil.TestUser(t, db, testutil.WithUsername("other"))

	_, err := svc.UpdateProfile(user.ID, &dto.UpdateProfileRequest{Username: "taken"}, now)
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestUsage_TrialLimits(t *testing.T) {
	svc, db := setupUserService(t)
	now := time.Now().UTC()

	user := testutil.TestUser(t, db, testutil.WithAnalysesToday(3, now))

	usage, err := svc.Usage(user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, model.PlanTrial, usage.Plan)
	assert.Equal(t, 5, usage.DailyLimit)
	assert.Equal(t, 3, usage.AnalysesToday)
	assert.Equal(t, 2, usage.Remaining)
}

func TestUsage_StaleCounterReadsAsZero(t *testing.T) {
	svc, db := setupUserService(t)
	now := time.Now().UTC()

	yesterday := now.Add(-24 * time.Hour)
	user := testutil.TestUser(t, db, testutil.WithAnalysesToday(5, yesterday))

	usage, err := svc.Usage(user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 0, usage.AnalysesToday)
	assert.Equal(t, 5, usage.Remaining)
}

func TestUsage_EliteUnlimited(t *testing.T) {
	svc, db := setupUserService(t)
	now := time.Now().UTC()

	user := testutil.TestUser(t, db, testutil.WithSubscription(model.PlanElite, now.Add(30*24*time.Hour)))

	usage, err := svc.Usage(user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, model.PlanElite, usage.Plan)
	assert.Equal(t, 0, usage.DailyLimit)
	assert.Equal(t, -1, usage.Remaining)
}
