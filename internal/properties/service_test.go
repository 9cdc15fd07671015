package properties

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db/models"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/errors"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/outbox"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/pagination"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/visibility"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepository struct {
	byID        map[uuid.UUID]*models.Property
	setStatusFn func(ctx context.Context, id uuid.UUID, status enums.PropertyStatus, approvedBy *uuid.UUID) (int64, error)
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{byID: map[uuid.UUID]*models.Property{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, property *models.Property) error {
	f.byID[property.ID] = property
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	property, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return property, nil
}

func (f *fakeRepository) Update(ctx context.Context, property *models.Property) error {
	f.byID[property.ID] = property
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	if _, ok := f.byID[id]; !ok {
		return 0, nil
	}
	delete(f.byID, id)
	return 1, nil
}

func (f *fakeRepository) SetStatus(ctx context.Context, id uuid.UUID, status enums.PropertyStatus, approvedBy *uuid.UUID) (int64, error) {
	if f.setStatusFn != nil {
		return f.setStatusFn(ctx, id, status, approvedBy)
	}
	property, ok := f.byID[id]
	if !ok {
		return 0, nil
	}
	property.Status = status
	if status == enums.PropertyStatusApproved {
		property.ApprovedBy = approvedBy
	} else {
		property.ApprovedBy = nil
	}
	return 1, nil
}

func (f *fakeRepository) Browse(ctx context.Context, filter BrowseFilter, params pagination.Params) ([]models.Property, error) {
	return nil, nil
}

func (f *fakeRepository) ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) ([]models.Property, error) {
	return nil, nil
}

func (f *fakeRepository) ListByStatus(ctx context.Context, status enums.PropertyStatus, params pagination.Params) ([]models.Property, error) {
	return nil, nil
}

func (f *fakeRepository) ListAll(ctx context.Context, params pagination.Params) ([]models.Property, error) {
	return nil, nil
}

func (f *fakeRepository) CountByStatus(ctx context.Context) (map[enums.PropertyStatus]int64, error) {
	return nil, nil
}

type fakeUserLoader struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeUserLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type fakeUnlockChecker struct {
	unlocked bool
}

func (f *fakeUnlockChecker) HasUnlocked(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	return f.unlocked, nil
}

type fakeOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func validListing() ListingInput {
	return ListingInput{
		Title:        "Two-bedroom flat",
		Description:  "Tiled, borehole water",
		Price:        250000,
		Location:     "Under-G, Ogbomoso",
		PropertyType: enums.PropertyTypeApartment,
		ContactName:  "Bola Adeyemi",
		ContactPhone: "+2348012345678",
	}
}

func newTestService(t *testing.T, repo *fakeRepository, users *fakeUserLoader, unlocks *fakeUnlockChecker, publisher *fakeOutbox) Service {
	t.Helper()
	if users == nil {
		users = &fakeUserLoader{users: map[uuid.UUID]*models.User{}}
	}
	if unlocks == nil {
		unlocks = &fakeUnlockChecker{}
	}
	if publisher == nil {
		publisher = &fakeOutbox{}
	}
	svc, err := NewService(fakeTxRunner{}, repo, users, unlocks, publisher)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestService_CreateStartsPending(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo, nil, nil, nil)

	property, err := svc.Create(context.Background(), uuid.New(), validListing())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if property.Status != enums.PropertyStatusPending {
		t.Fatalf("status = %s, want pending", property.Status)
	}
}

func TestService_UpdateForcesReReview(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo, nil, nil, nil)
	agentID := uuid.New()
	adminID := uuid.New()

	property, err := svc.Create(context.Background(), agentID, validListing())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	property.Status = enums.PropertyStatusApproved
	property.ApprovedBy = &adminID

	input := validListing()
	input.Price = 300000
	updated, err := svc.Update(context.Background(), agentID, property.ID, input)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Status != enums.PropertyStatusPending {
		t.Fatalf("edited listing status = %s, want pending", updated.Status)
	}
	if updated.ApprovedBy != nil {
		t.Fatal("edit must clear the approver")
	}
	if updated.Price != 300000 {
		t.Fatalf("price = %d, want 300000", updated.Price)
	}
}

func TestService_UpdateOtherAgentsListing(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo, nil, nil, nil)

	property, err := svc.Create(context.Background(), uuid.New(), validListing())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	_, err = svc.Update(context.Background(), uuid.New(), property.ID, validListing())
	if !errors.HasCode(err, errors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestService_DeleteRemovesListing(t *testing.T) {
	repo := newFakeRepository()
	propertyID := uuid.New()
	repo.byID[propertyID] = &models.Property{ID: propertyID, AgentID: uuid.New()}
	svc := newTestService(t, repo, nil, nil, nil)

	if err := svc.Delete(context.Background(), uuid.New(), propertyID); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if _, ok := repo.byID[propertyID]; ok {
		t.Fatal("listing should be gone")
	}
}

func TestService_DeleteMissingListing(t *testing.T) {
	svc := newTestService(t, newFakeRepository(), nil, nil, nil)

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	if !errors.HasCode(err, errors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_ApproveEmitsEvent(t *testing.T) {
	repo := newFakeRepository()
	publisher := &fakeOutbox{}
	svc := newTestService(t, repo, nil, nil, publisher)
	adminID := uuid.New()

	property, err := svc.Create(context.Background(), uuid.New(), validListing())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	approved, err := svc.Approve(context.Background(), adminID, property.ID)
	if err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}
	if approved.Status != enums.PropertyStatusApproved {
		t.Fatalf("status = %s, want approved", approved.Status)
	}
	if approved.ApprovedBy == nil || *approved.ApprovedBy != adminID {
		t.Fatal("approver not recorded")
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventPropertyApproved {
		t.Fatalf("expected property_approved event, got %+v", publisher.events)
	}
}

func TestService_GetForViewerMasksContact(t *testing.T) {
	repo := newFakeRepository()
	agent := &models.User{ID: uuid.New(), Role: enums.RoleAgent}
	users := &fakeUserLoader{users: map[uuid.UUID]*models.User{agent.ID: agent}}
	unlocks := &fakeUnlockChecker{unlocked: false}
	svc := newTestService(t, repo, users, unlocks, nil)

	property, err := svc.Create(context.Background(), agent.ID, validListing())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	property.Status = enums.PropertyStatusApproved

	view, err := svc.GetForViewer(context.Background(), uuid.New(), enums.RoleSeeker, property.ID)
	if err != nil {
		t.Fatalf("GetForViewer returned error: %v", err)
	}
	if view.Contact.ContactPhone != visibility.LockedContactPlaceholder {
		t.Fatalf("contact phone %q should be locked", view.Contact.ContactPhone)
	}

	unlocks.unlocked = true
	view, err = svc.GetForViewer(context.Background(), uuid.New(), enums.RoleSeeker, property.ID)
	if err != nil {
		t.Fatalf("GetForViewer returned error: %v", err)
	}
	if view.Contact.ContactPhone != property.ContactPhone {
		t.Fatal("unlocked viewer should see the real contact phone")
	}
}

func TestService_GetForViewerSuspendedAgent(t *testing.T) {
	repo := newFakeRepository()
	agent := &models.User{ID: uuid.New(), Role: enums.RoleAgent, Suspended: true}
	users := &fakeUserLoader{users: map[uuid.UUID]*models.User{agent.ID: agent}}
	svc := newTestService(t, repo, users, nil, nil)

	property, err := svc.Create(context.Background(), agent.ID, validListing())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	property.Status = enums.PropertyStatusApproved

	_, err = svc.GetForViewer(context.Background(), uuid.New(), enums.RoleSeeker, property.ID)
	if !errors.HasCode(err, errors.CodePropertyUnavailable) {
		t.Fatalf("expected property unavailable, got %v", err)
	}
}
