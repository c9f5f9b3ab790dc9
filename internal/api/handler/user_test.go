package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/options_go_server/internal/api/middleware"
	"github.com/qs3c/options_go_server/internal/model"
	"github.com/qs3c/options_go_server/internal/model/dto"
	"github.com/qs3c/options_go_server/internal/pkg/response"
	"github.com/qs3c/options_go_server/internal/repository"
	"github.com/qs3c/options_go_server/internal/service"
	"github.com/qs3c/options_go_server/internal/testutil"
)

func setupUserHandler(t *testing.T) (*UserHandler, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	cfg := testConfig()

	entitlement := service.NewEntitlementService(userRepo, nil, nil, cfg)
	authService := service.NewAuthService(userRepo, entitlement, nil, cfg)
	userService := service.NewUserService(userRepo, authService, entitlement)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return NewUserHandler(userService), db, cleanup
}

func asUser(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func TestUserHandler_GetProfile(t *testing.T) {
	handler, db, cleanup := setupUserHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithUsername("trader"))

	router := gin.New()
	router.Use(asUser(user.ID))
	router.GET("/profile", handler.GetProfile)

	w := performRequest(router, "GET", "/profile", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var info dto.UserInfo
	require.NoError(t, json.Unmarshal(data, &info))
	assert.Equal(t, "trader", info.Username)
	assert.Equal(t, model.PlanTrial, info.Plan)
}

func TestUserHandler_GetProfile_ExpiredTrial(t *testing.T) {
	handler, db, cleanup := setupUserHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithTrialEnd(time.Now().UTC().Add(-time.Hour)))

	router := gin.New()
	router.Use(asUser(user.ID))
	router.GET("/profile", handler.GetProfile)

	w := performRequest(router, "GET", "/profile", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, _ := json.Marshal(resp.Data)
	var info dto.UserInfo
	require.NoError(t, json.Unmarshal(data, &info))
	assert.Equal(t, model.PlanExpired, info.Plan)
	assert.Equal(t, 0, info.TrialDaysRemaining)
}

func TestUserHandler_GetProfile_NoAuth(t *testing.T) {
	handler, _, cleanup := setupUserHandler(t)
	defer cleanup()

	router := gin.New()
	router.GET("/profile", handler.GetProfile)

	w := performRequest(router, "GET", "/profile", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	handler, db, cleanup := setupUserHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithUsername("oldname"))

	router := gin.New()
	router.Use(asUser(user.ID))
	router.PUT("/profile", handler.UpdateProfile)

	w := performRequest(router, "PUT", "/profile", dto.UpdateProfileRequest{Username: "newname"})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)

	updated, err := repository.NewUserRepository(db).GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "newname", updated.Username)
}

func TestUserHandler_UpdateProfile_UsernameTaken(t *testing.T) {
	handler, db, cleanup := setupUserHandler(t)
	defer cleanup()

	testutil.TestUser(t, db, testutil.WithUsername("taken"))
	user := testutil.TestUser(t, db, testutil.WithUsername("other"))

	router := gin.New()
	router.Use(asUser(user.ID))
	router.PUT("/profile", handler.UpdateProfile)

	w := performRequest(router, "PUT", "/profile", dto.UpdateProfileRequest{Username: "taken"})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestUserHandler_GetUsage(t *testing.T) {
	handler, db, cleanup := setupUserHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithAnalysesToday(3, time.Now().UTC()))

	router := gin.New()
	router.Use(asUser(user.ID))
	router.GET("/usage", handler.GetUsage)

	w := performRequest(router, "GET", "/usage", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, _ := json.Marshal(resp.Data)
	var usage dto.UsageInfo
	require.NoError(t, json.Unmarshal(data, &usage))
	assert.Equal(t, 3, usage.AnalysesToday)
	assert.Equal(t, 5, usage.DailyLimit)
	assert.Equal(t, 2, usage.Remaining)
}
