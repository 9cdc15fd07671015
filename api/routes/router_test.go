package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	authsvc "github.com/muhammed1675/LAUTECH-Rentals/internal/auth"
	inspectionsvc "github.com/muhammed1675/LAUTECH-Rentals/internal/inspections"
	paymentsvc "github.com/muhammed1675/LAUTECH-Rentals/internal/payments"
	propertysvc "github.com/muhammed1675/LAUTECH-Rentals/internal/properties"
	purchasesvc "github.com/muhammed1675/LAUTECH-Rentals/internal/purchases"
	statsvc "github.com/muhammed1675/LAUTECH-Rentals/internal/stats"
	unlocksvc "github.com/muhammed1675/LAUTECH-Rentals/internal/unlocks"
	verificationsvc "github.com/muhammed1675/LAUTECH-Rentals/internal/verifications"
	pkgAuth "github.com/muhammed1675/LAUTECH-Rentals/pkg/auth"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/config"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db/models"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/korapay"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/logger"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/pagination"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/redis"

	"gorm.io/gorm"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, req authsvc.RegisterRequest) (*authsvc.LoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Me(ctx context.Context, userID uuid.UUID) (*authsvc.Profile, error) {
	return &authsvc.Profile{}, nil
}

var stubAgentID = uuid.MustParse("4f9c2b57-6f2a-4f29-a9be-2b1f4c1f9d01")

func stubListing() *models.Property {
	return &models.Property{
		ID:           uuid.New(),
		Title:        "Self-contain near Isale General",
		AgentID:      stubAgentID,
		Status:       enums.PropertyStatusApproved,
		ContactName:  "B. Adewale",
		ContactPhone: "+2348012345678",
	}
}

type stubPropertyService struct{}

func (stubPropertyService) Create(ctx context.Context, agentID uuid.UUID, input propertysvc.ListingInput) (*models.Property, error) {
	return &models.Property{ID: uuid.New(), AgentID: agentID}, nil
}

func (stubPropertyService) Update(ctx context.Context, agentID, propertyID uuid.UUID, input propertysvc.ListingInput) (*models.Property, error) {
	panic("unimplemented")
}

func (stubPropertyService) Delete(ctx context.Context, agentID, propertyID uuid.UUID) error {
	panic("unimplemented")
}

func (stubPropertyService) Approve(ctx context.Context, adminID, propertyID uuid.UUID) (*models.Property, error) {
	return &models.Property{ID: propertyID, Status: enums.PropertyStatusApproved}, nil
}

func (stubPropertyService) Reject(ctx context.Context, adminID, propertyID uuid.UUID) (*models.Property, error) {
	return &models.Property{ID: propertyID, Status: enums.PropertyStatusRejected}, nil
}

func (stubPropertyService) Browse(ctx context.Context, filter propertysvc.BrowseFilter, params pagination.Params) ([]models.Property, error) {
	return []models.Property{*stubListing()}, nil
}

func (stubPropertyService) GetForViewer(ctx context.Context, viewerID uuid.UUID, role enums.Role, propertyID uuid.UUID) (*propertysvc.ListingDTO, error) {
	listing := stubListing()
	listing.ID = propertyID
	return propertysvc.ProjectOne(listing, viewerID, role, false), nil
}

func (stubPropertyService) ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) ([]models.Property, error) {
	return nil, nil
}

func (stubPropertyService) ListByStatus(ctx context.Context, status enums.PropertyStatus, params pagination.Params) ([]models.Property, error) {
	return nil, nil
}

func (stubPropertyService) ListAll(ctx context.Context, params pagination.Params) ([]models.Property, error) {
	return nil, nil
}

type stubWalletService struct{}

func (stubWalletService) Balance(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	return &models.Wallet{UserID: userID}, nil
}

func (stubWalletService) EnsureWallet(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	panic("unimplemented")
}

func (stubWalletService) CreditTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, tokens int) error {
	panic("unimplemented")
}

func (stubWalletService) DebitTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, tokens int) error {
	panic("unimplemented")
}

type stubPurchaseService struct{}

func (stubPurchaseService) Initiate(ctx context.Context, input purchasesvc.InitiateInput) (*purchasesvc.InitiateResult, error) {
	panic("unimplemented")
}

func (stubPurchaseService) FindByReference(ctx context.Context, ref string) (*models.TokenTransaction, error) {
	panic("unimplemented")
}

func (stubPurchaseService) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.TokenTransaction, error) {
	return nil, nil
}

func (stubPurchaseService) ListAll(ctx context.Context, params pagination.Params) ([]models.TokenTransaction, error) {
	return nil, nil
}

type stubUnlockService struct{}

func (stubUnlockService) Unlock(ctx context.Context, userID uuid.UUID, role enums.Role, propertyID uuid.UUID) (*unlocksvc.UnlockResult, error) {
	panic("unimplemented")
}

func (stubUnlockService) HasUnlocked(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	return false, nil
}

func (stubUnlockService) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Unlock, error) {
	return nil, nil
}

type stubInspectionService struct{}

func (stubInspectionService) Book(ctx context.Context, input inspectionsvc.BookInput) (*inspectionsvc.BookResult, error) {
	panic("unimplemented")
}

func (stubInspectionService) MarkCompleted(ctx context.Context, agentID, inspectionID uuid.UUID) (*models.Inspection, error) {
	return &models.Inspection{ID: inspectionID, AgentID: agentID}, nil
}

func (stubInspectionService) Reassign(ctx context.Context, inspectionID, agentID uuid.UUID) error {
	return nil
}

func (stubInspectionService) AgentContact(ctx context.Context, userID, inspectionID uuid.UUID) (*models.User, error) {
	panic("unimplemented")
}

func (stubInspectionService) FindByID(ctx context.Context, id uuid.UUID) (*models.Inspection, error) {
	panic("unimplemented")
}

func (stubInspectionService) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Inspection, error) {
	return nil, nil
}

func (stubInspectionService) ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) ([]models.Inspection, error) {
	return nil, nil
}

func (stubInspectionService) ListAll(ctx context.Context, params pagination.Params) ([]models.Inspection, error) {
	return nil, nil
}

func (stubInspectionService) ListTransactions(ctx context.Context, params pagination.Params) ([]models.InspectionTransaction, error) {
	return nil, nil
}

type stubVerificationService struct{}

func (stubVerificationService) Submit(ctx context.Context, input verificationsvc.SubmitInput) (*models.VerificationRequest, error) {
	panic("unimplemented")
}

func (stubVerificationService) Approve(ctx context.Context, adminID, requestID uuid.UUID) (*models.VerificationRequest, error) {
	panic("unimplemented")
}

func (stubVerificationService) Reject(ctx context.Context, adminID, requestID uuid.UUID) (*models.VerificationRequest, error) {
	panic("unimplemented")
}

func (stubVerificationService) FindByID(ctx context.Context, id uuid.UUID) (*models.VerificationRequest, error) {
	panic("unimplemented")
}

func (stubVerificationService) ListByStatus(ctx context.Context, status enums.VerificationStatus, params pagination.Params) ([]models.VerificationRequest, error) {
	return nil, nil
}

func (stubVerificationService) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.VerificationRequest, error) {
	return nil, nil
}

type stubUserService struct{}

func (stubUserService) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	panic("unimplemented")
}

func (stubUserService) List(ctx context.Context, params pagination.Params) ([]models.User, error) {
	return nil, nil
}

func (stubUserService) Suspend(ctx context.Context, adminID, userID uuid.UUID) error {
	return nil
}

func (stubUserService) Reinstate(ctx context.Context, adminID, userID uuid.UUID) error {
	return nil
}

func (stubUserService) SetRole(ctx context.Context, adminID, userID uuid.UUID, role enums.Role) error {
	return nil
}

type stubPaymentService struct {
	webhook func(ctx context.Context, input paymentsvc.ReconcileInput) (*paymentsvc.Outcome, error)
}

func (s stubPaymentService) Reconcile(ctx context.Context, input paymentsvc.ReconcileInput) (*paymentsvc.Outcome, error) {
	panic("unimplemented")
}

func (s stubPaymentService) VerifyPayment(ctx context.Context, ref string) (*paymentsvc.Outcome, error) {
	return &paymentsvc.Outcome{Reference: ref}, nil
}

func (s stubPaymentService) SimulatePayment(ctx context.Context, ref string, succeed bool) (*paymentsvc.Outcome, error) {
	panic("unimplemented")
}

func (s stubPaymentService) ProcessWebhook(ctx context.Context, input paymentsvc.ReconcileInput) (*paymentsvc.Outcome, error) {
	if s.webhook != nil {
		return s.webhook(ctx, input)
	}
	return &paymentsvc.Outcome{Reference: input.Reference}, nil
}

type stubStatsService struct{}

func (stubStatsService) Overview(ctx context.Context) (*statsvc.Overview, error) {
	return &statsvc.Overview{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "lautech-rentals",
			ExpirationMinutes: 30,
		},
	}
}

const testWebhookSecret = "router-test-webhook-secret"

func testGateway(t *testing.T, logg *logger.Logger) *korapay.Client {
	t.Helper()
	client, err := korapay.NewClient(config.KorapayConfig{
		SecretKey:     "sk_test_router",
		WebhookSecret: testWebhookSecret,
	}, logg)
	if err != nil {
		t.Fatalf("build gateway client: %v", err)
	}
	return client
}

func newTestRouter(t *testing.T, cfg *config.Config, payments paymentsvc.Service) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		testGateway(t, logg),
		Services{
			Auth:          stubAuthService{},
			Properties:    stubPropertyService{},
			Wallets:       stubWalletService{},
			Purchases:     stubPurchaseService{},
			Unlocks:       stubUnlockService{},
			Inspections:   stubInspectionService{},
			Verifications: stubVerificationService{},
			Users:         stubUserService{},
			Payments:      payments,
			Stats:         stubStatsService{},
		},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	return buildTokenWithUserID(t, cfg, role, uuid.New())
}

func buildTokenWithUserID(t *testing.T, cfg *config.Config, role enums.Role, userID uuid.UUID) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(t, testConfig(), stubPaymentService{})
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, stubPaymentService{})
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleSeeker))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for private ping got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, stubPaymentService{})

	nonAdmin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/stats", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleSeeker))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/stats", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestAgentSurfacesRequireAgentRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, stubPaymentService{})

	seeker := httptest.NewRequest(http.MethodGet, "/api/v1/my-listings", nil)
	seeker.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleSeeker))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, seeker)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for seeker got %d", resp.Code)
	}

	agent := httptest.NewRequest(http.MethodGet, "/api/v1/my-listings", nil)
	agent.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAgent))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, agent)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for agent got %d", resp.Code)
	}
}

func TestPropertyCreateRequiresAgentRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, stubPaymentService{})

	body := `{"title":"Room near gate","description":"Self contained room","price":90000,"location":"Ogbomoso","property_type":"hostel","contact_name":"B. Ade","contact_phone":"+2348012345678"}`

	seeker := httptest.NewRequest(http.MethodPost, "/api/v1/properties", strings.NewReader(body))
	seeker.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleSeeker))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, seeker)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for seeker create got %d", resp.Code)
	}

	agent := httptest.NewRequest(http.MethodPost, "/api/v1/properties", strings.NewReader(body))
	agent.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAgent))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, agent)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for agent create got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestPropertyBrowseIsPublicAndMasksContact(t *testing.T) {
	router := newTestRouter(t, testConfig(), stubPaymentService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous browse got %d: %s", resp.Code, resp.Body.String())
	}
	body := resp.Body.String()
	if strings.Contains(body, "+2348012345678") || strings.Contains(body, "B. Adewale") {
		t.Fatalf("raw contact leaked to anonymous browser: %s", body)
	}
	if strings.Contains(body, "ContactPhone") {
		t.Fatalf("raw model field names leaked: %s", body)
	}
	if !strings.Contains(body, `"contact_phone":"LOCKED"`) {
		t.Fatalf("expected locked contact placeholder, got %s", body)
	}
}

func TestPropertyBrowseMasksContactForSeeker(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, stubPaymentService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleSeeker))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "+2348012345678") {
		t.Fatalf("raw contact leaked to seeker without unlock: %s", resp.Body.String())
	}
}

func TestPropertyBrowseRevealsContactToOwner(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, stubPaymentService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties", nil)
	req.Header.Set("Authorization", "Bearer "+buildTokenWithUserID(t, cfg, enums.RoleAgent, stubAgentID))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "+2348012345678") {
		t.Fatalf("owning agent should see their own contact: %s", resp.Body.String())
	}
}

func TestPropertyDetailIsPublicAndMasksContact(t *testing.T) {
	router := newTestRouter(t, testConfig(), stubPaymentService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous detail got %d: %s", resp.Code, resp.Body.String())
	}
	body := resp.Body.String()
	if strings.Contains(body, "+2348012345678") {
		t.Fatalf("raw contact leaked on public detail: %s", body)
	}
	if !strings.Contains(body, `"contact_phone":"LOCKED"`) {
		t.Fatalf("expected locked contact placeholder, got %s", body)
	}
}

func TestPropertyDetailRejectsGarbageToken(t *testing.T) {
	router := newTestRouter(t, testConfig(), stubPaymentService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("presented credentials must be valid, got %d", resp.Code)
	}
}

func TestHealthEndpointsArePublic(t *testing.T) {
	router := newTestRouter(t, testConfig(), stubPaymentService{})

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	router := newTestRouter(t, testConfig(), stubPaymentService{})

	body := `{"event":"charge.success","data":{"reference":"TOKEN-20260830-0AB1C2D3","status":"success"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/korapay", strings.NewReader(body))
	req.Header.Set("x-korapay-signature", "forged")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged signature got %d", resp.Code)
	}
}

func TestWebhookAcceptsSignedPayload(t *testing.T) {
	var received *paymentsvc.ReconcileInput
	payments := stubPaymentService{
		webhook: func(ctx context.Context, input paymentsvc.ReconcileInput) (*paymentsvc.Outcome, error) {
			received = &input
			return &paymentsvc.Outcome{Reference: input.Reference, Status: "completed"}, nil
		},
	}
	router := newTestRouter(t, testConfig(), payments)

	body := `{"event":"charge.success","data":{"reference":"TOKEN-20260830-0AB1C2D3","payment_reference":"kpy-123","status":"success"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/korapay", strings.NewReader(body))
	req.Header.Set("x-korapay-signature", korapay.SignPayload(testWebhookSecret, []byte(body)))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for signed webhook got %d: %s", resp.Code, resp.Body.String())
	}
	if received == nil {
		t.Fatal("expected reconciler to receive the event")
	}
	if received.Reference != "TOKEN-20260830-0AB1C2D3" || received.ChargeStatus != "success" {
		t.Fatalf("unexpected input %+v", received)
	}
	if received.GatewayReference == nil || *received.GatewayReference != "kpy-123" {
		t.Fatalf("expected gateway reference to flow through, got %+v", received.GatewayReference)
	}
}

func TestPaymentVerifyRequiresReference(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, stubPaymentService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/verify", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleSeeker))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without reference got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/payments/verify?reference=TOKEN-20260830-0AB1C2D3", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleSeeker))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for verify got %d", resp.Code)
	}
}
