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

func setupAuthService(t *testing.T) (*AuthService, *repository.UserRepository, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := testSubscriptionConfig()
	cfg.JWT = config.JWTConfig{Secret: "test-secret", ExpireHours: 24}

	userRepo := repository.NewUserRepository(db)
	entitlement := NewEntitlementService(userRepo, nil, nil, cfg)
	return NewAuthService(userRepo, entitlement, nil, cfg), userRepo, db
}

func TestRegister_CreatesTrialUser(t *testing.T) {
	svc, userRepo, _ := setupAuthService(t)
	now := time.Now().UTC()

	resp, err := svc.Register(&dto.RegisterRequest{
		Username: "trader1",
		Email:    "trader1@example.com",
		Password: "password123",
	}, now)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.NotZero(t, resp.UserID)

	user, err := userRepo.GetByID(resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, model.PlanTrial, user.Plan)
	require.NotNil(t, user.TrialEnd)
	// trial window is exactly 20 days from trial start
	assert.Equal(t, user.TrialStart.Add(20*24*time.Hour).Unix(), user.TrialEnd.Unix())

	// password is stored hashed, never in clear text
	require.NotNil(t, user.PasswordHash)
	assert.NotEqual(t, "password123", *user.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := setupAuthService(t)
	now := time.Now().UTC()

	req := &dto.RegisterRequest{Username: "dup1", Email: "dup@example.com", Password: "password123"}
	_, err := svc.Register(req, now)
	require.NoError(t, err)

	req2 := &dto.RegisterRequest{Username: "dup2", Email: "dup@example.com", Password: "password123"}
	_, err = svc.Register(req2, now)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _, _ := setupAuthService(t)
	now := time.Now().UTC()

	req := &dto.RegisterRequest{Username: "sameuser", Email: "a@example.com", Password: "password123"}
	_, err := svc.Register(req, now)
	require.NoError(t, err)

	req2 := &dto.RegisterRequest{Username: "sameuser", Email: "b@example.com", Password: "password123"}
	_, err = svc.Register(req2, now)
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestLogin_Success(t *testing.T) {
	svc, _, _ := setupAuthService(t)
	now := time.Now().UTC()

	_, err := svc.Register(&dto.RegisterRequest{
		Username: "loginuser",
		Email:    "login@example.com",
		Password: "password123",
	}, now)
	require.NoError(t, err)

	resp, err := svc.Login(&dto.LoginRequest{Email: "login@example.com", Password: "password123"}, now)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "loginuser", resp.User.Username)
	assert.Equal(t, model.PlanTrial, resp.User.Plan)
	assert.Equal(t, 5, resp.User.DailyLimit)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := setupAuthService(t)
	now := time.Now().UTC()

	_, err := svc.Register(&dto.RegisterRequest{
		Username: "wrongpw",
		Email:    "wrongpw@example.com",
		Password: "password123",
	}, now)
	require.NoError(t, err)

	_, err = svc.Login(&dto.LoginRequest{Email: "wrongpw@example.com", Password: "wrong"}, now)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	_, err := svc.Login(&dto.LoginRequest{Email: "nobody@example.com", Password: "x"}, time.Now().UTC())
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_ExpiredTrialWrittenBack(t *testing.T) {
	svc, userRepo, _ := setupAuthService(t)
	now := time.Now().UTC()

	_, err := svc.Register(&dto.RegisterRequest{
		Username: "expiring",
		Email:    "expiring@example.com",
		Password: "password123",
	}, now.Add(-30*24*time.Hour))
	require.NoError(t, err)

	resp, err := svc.Login(&dto.LoginRequest{Email: "expiring@example.com", Password: "password123"}, now)
	require.NoError(t, err)
	assert.Equal(t, model.PlanExpired, resp.User.Plan)

	// stored plan field updated as a cache of the derived state
	user, err := userRepo.GetByEmail("expiring@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.PlanExpired, user.Plan)
	require.NotNil(t, user.LastLogin)
}

func TestBuildUserInfo_TrialDaysRemaining(t *testing.T) {
	svc, _, db := setupAuthService(t)
	now := time.Now().UTC()

	user := testutil.TestUser(t, db, testutil.WithTrialEnd(now.Add(5*24*time.Hour+time.Hour)))

	info, err := svc.BuildUserInfo(user, now)
	require.NoError(t, err)
	assert.Equal(t, model.PlanTrial, info.Plan)
	assert.Equal(t, 5, info.TrialDaysRemaining)
}
