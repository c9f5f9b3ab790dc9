package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/options_go_server/internal/model"
	"github.com/qs3c/options_go_server/internal/model/dto"
	"github.com/qs3c/options_go_server/internal/pkg/response"
	"github.com/qs3c/options_go_server/internal/pkg/ws"
	"github.com/qs3c/options_go_server/internal/repository"
	"github.com/qs3c/options_go_server/internal/service"
	"github.com/qs3c/options_go_server/internal/testutil"
)

func setupAlertHandler(t *testing.T) (*AlertHandler, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	alertService := service.NewAlertService(repository.NewAlertRepository(db), nil, ws.NewHub())

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return NewAlertHandler(alertService), db, cleanup
}

func alertRouter(handler *AlertHandler, userID int64) *gin.Engine {
	router := gin.New()
	router.Use(asUser(userID))
	router.POST("/alerts", handler.Create)
	router.GET("/alerts", handler.List)
	router.DELETE("/alerts/:id", handler.Delete)
	return router
}

func TestAlertHandler_Create(t *testing.T) {
	handler, db, cleanup := setupAlertHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	router := alertRouter(handler, user.ID)

	req := dto.CreateAlertRequest{
		Ticker:    "nvda",
		AlertType: model.AlertPriceAbove,
		Threshold: 180,
	}

	w := performRequest(router, "POST", "/alerts", req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, _ := json.Marshal(resp.Data)
	var alert model.Alert
	require.NoError(t, json.Unmarshal(data, &alert))
	assert.Equal(t, "NVDA", alert.Ticker)
	assert.True(t, alert.IsActive)
}

func TestAlertHandler_Create_InvalidType(t *testing.T) {
	handler, db, cleanup := setupAlertHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	router := alertRouter(handler, user.ID)

	req := dto.CreateAlertRequest{
		Ticker:    "NVDA",
		AlertType: "price_crossed",
		Threshold: 180,
	}

	w := performRequest(router, "POST", "/alerts", req)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestAlertHandler_List_OnlyOwn(t *testing.T) {
	handler, db, cleanup := setupAlertHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)
	testutil.TestAlert(t, db, user.ID)
	testutil.TestAlert(t, db, user.ID, testutil.WithAlertType(model.AlertPriceBelow, 120))
	testutil.TestAlert(t, db, other.ID)

	router := alertRouter(handler, user.ID)

	w := performRequest(router, "GET", "/alerts", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, _ := json.Marshal(resp.Data)
	var alerts []model.Alert
	require.NoError(t, json.Unmarshal(data, &alerts))
	assert.Len(t, alerts, 2)
}

func TestAlertHandler_Delete_OtherUserDenied(t *testing.T) {
	handler, db, cleanup := setupAlertHandler(t)
	defer cleanup()

	owner := testutil.TestUser(t, db)
	intruder := testutil.TestUser(t, db)
	alert := testutil.TestAlert(t, db, owner.ID)

	router := alertRouter(handler, intruder.ID)

	w := performRequest(router, "DELETE", fmt.Sprintf("/alerts/%d", alert.ID), nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodePermissionDenied, resp.Code)
}

func TestAlertHandler_Delete(t *testing.T) {
	handler, db, cleanup := setupAlertHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	alert := testutil.TestAlert(t, db, user.ID)

	router := alertRouter(handler, user.ID)

	w := performRequest(router, "DELETE", fmt.Sprintf("/alerts/%d", alert.ID), nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)

	w = performRequest(router, "DELETE", fmt.Sprintf("/alerts/%d", alert.ID), nil)
	resp = parseResponse(t, w)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}
