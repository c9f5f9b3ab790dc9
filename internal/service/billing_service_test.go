package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/options_go_server/internal/model"
	"github.com/qs3c/options_go_server/internal/pkg/billing"
	"github.com/qs3c/options_go_server/internal/repository"
	"github.com/qs3c/options_go_server/internal/testutil"
)

// fakeBillingServer mimics the payment provider API
func fakeBillingServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/customers", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "cus_new", "email": "x@example.com"})
	})
	mux.HandleFunc("/v1/checkout/sessions", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["customer"] == "" {
			http.Error(w, "missing customer", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id": "cs_1", "url": "https://pay.example.com/cs_1",
		})
	})
	mux.HandleFunc("/v1/billing_portal/sessions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"url": "https://pay.example.com/portal"})
	})
	return httptest.NewServer(mux)
}

func setupBillingService(t *testing.T) (*BillingService, *repository.UserRepository, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	server := fakeBillingServer(t)
	t.Cleanup(server.Close)

	cfg := testSubscriptionConfig()
	cfg.Billing.BaseURL = server.URL
	cfg.Billing.PriceIDs = map[string]string{"basic": "price_basic", "elite": "price_elite"}
	cfg.Billing.SuccessURL = "https://app.example.com/success"
	cfg.Billing.CancelURL = "https://app.example.com/cancel"

	userRepo := repository.NewUserRepository(db)
	entitlement := NewEntitlementService(userRepo, nil, nil, cfg)
	client := billing.NewClient(&cfg.Billing)
	return NewBillingService(client, userRepo, entitlement, nil, cfg), userRepo, db
}

func TestCreateCheckout_NewCustomer(t *testing.T) {
	svc, userRepo, db := setupBillingService(t)
	user := testutil.TestUser(t, db)

	resp, err := svc.CreateCheckout(context.Background(), user, "basic")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/cs_1", resp.URL)

	// customer id persisted for later webhook matching
	reloaded, err := userRepo.GetByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.BillingCustomerID)
	assert.Equal(t, "cus_new", *reloaded.BillingCustomerID)
}

func TestCreateCheckout_ProAliasAccepted(t *testing.T) {
	svc, _, db := setupBillingService(t)
	user := testutil.TestUser(t, db)

	resp, err := svc.CreateCheckout(context.Background(), user, "pro")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.URL)
}

func TestCreateCheckout_UnknownPlan(t *testing.T) {
	svc, _, db := setupBillingService(t)
	user := testutil.TestUser(t, db)

	_, err := svc.CreateCheckout(context.Background(), user, "platinum")
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestCreatePortal_RequiresBillingCustomer(t *testing.T) {
	svc, _, db := setupBillingService(t)

	user := testutil.TestUser(t, db)
	_, err := svc.CreatePortal(context.Background(), user)
	assert.ErrorIs(t, err, ErrNoBillingInfo)

	subscribed := testutil.TestUser(t, db, testutil.WithBillingCustomer("cus_77"))
	resp, err := svc.CreatePortal(context.Background(), subscribed)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/portal", resp.URL)
}

func TestStatus(t *testing.T) {
	svc, _, db := setupBillingService(t)
	now := time.Now().UTC()

	subEnd := now.Add(15 * 24 * time.Hour)
	user := testutil.TestUser(t, db,
		testutil.WithSubscription(model.PlanElite, subEnd),
		testutil.WithBillingCustomer("cus_9"))

	status, err := svc.Status(user, now)
	require.NoError(t, err)
	assert.Equal(t, model.PlanElite, status.Plan)
	assert.True(t, status.HasBilling)
	assert.Equal(t, subEnd.Format(time.RFC3339), status.SubscriptionEnd)
}

func TestHandleWebhook_CheckoutUpgradesPlan(t *testing.T) {
	svc, userRepo, db := setupBillingService(t)
	now := time.Now().UTC()

	user := testutil.TestUser(t, db)

	event := &billing.Event{
		Type: billing.EventCheckoutCompleted,
		Data: billing.EventData{UserID: user.ID, Plan: "basic", Customer: "cus_hook"},
	}
	require.NoError(t, svc.HandleWebhook(event, now))

	reloaded, err := userRepo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PlanBasic, reloaded.Plan)
	require.NotNil(t, reloaded.SubscriptionEnd)
}

func TestHandleWebhook_CancellationByCustomerID(t *testing.T) {
	svc, userRepo, db := setupBillingService(t)
	now := time.Now().UTC()

	subEnd := now.Add(20 * 24 * time.Hour)
	user := testutil.TestUser(t, db,
		testutil.WithSubscription(model.PlanElite, subEnd),
		testutil.WithBillingCustomer("cus_cancel"))

	event := &billing.Event{
		Type: billing.EventSubscriptionCancelled,
		Data: billing.EventData{Customer: "cus_cancel"},
	}
	require.NoError(t, svc.HandleWebhook(event, now))

	reloaded, err := userRepo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PlanExpired, reloaded.Plan)
}

func TestHandleWebhook_UnknownUserIgnored(t *testing.T) {
	svc, _, _ := setupBillingService(t)

	event := &billing.Event{
		Type: billing.EventSubscriptionCancelled,
		Data: billing.EventData{Customer: "cus_ghost"},
	}
	// swallowed so the provider stops retrying
	assert.NoError(t, svc.HandleWebhook(event, time.Now().UTC()))
}

func TestHandleWebhook_UnhandledTypeIgnored(t *testing.T) {
	svc, userRepo, db := setupBillingService(t)
	user := testutil.TestUser(t, db, testutil.WithBillingCustomer("cus_1"))

	event := &billing.Event{
		Type: "invoice.payment_failed",
		Data: billing.EventData{Customer: "cus_1"},
	}
	assert.NoError(t, svc.HandleWebhook(event, time.Now().UTC()))

	reloaded, err := userRepo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Plan, reloaded.Plan)
}
