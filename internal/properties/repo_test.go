package properties

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db/models"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/pagination"
)

func setupPropertiesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL DEFAULT '',
  full_name TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'seeker',
  suspended INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)

	properties := `
CREATE TABLE IF NOT EXISTS properties (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price INTEGER NOT NULL,
  location TEXT NOT NULL,
  property_type TEXT NOT NULL,
  images TEXT,
  contact_name TEXT NOT NULL DEFAULT '',
  contact_phone TEXT NOT NULL DEFAULT '',
  agent_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  approved_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(properties).Error)
	return db
}

func seedAgent(t *testing.T, db *gorm.DB, suspended bool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Exec(
		`INSERT INTO users (id, email, suspended, role) VALUES (?, ?, ?, 'agent')`,
		id, id.String()+"@example.com", suspended,
	).Error)
	return id
}

func seedListing(t *testing.T, repo Repository, agentID uuid.UUID, status enums.PropertyStatus, price int) *models.Property {
	t.Helper()
	property := &models.Property{
		ID:           uuid.New(),
		Title:        "Self-contain near gate",
		Description:  "10 minutes walk to campus",
		Price:        price,
		Location:     "Ogbomoso",
		PropertyType: enums.PropertyTypeHostel,
		ContactName:  "Bola Adeyemi",
		ContactPhone: "+2348012345678",
		AgentID:      agentID,
		Status:       status,
	}
	require.NoError(t, repo.Create(context.Background(), property))
	return property
}

func TestRepositoryBrowseVisibility(t *testing.T) {
	db := setupPropertiesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	activeAgent := seedAgent(t, db, false)
	suspendedAgent := seedAgent(t, db, true)

	visible := seedListing(t, repo, activeAgent, enums.PropertyStatusApproved, 150000)
	seedListing(t, repo, activeAgent, enums.PropertyStatusPending, 90000)
	seedListing(t, repo, suspendedAgent, enums.PropertyStatusApproved, 120000)

	rows, err := repo.Browse(ctx, BrowseFilter{}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, visible.ID, rows[0].ID)
}

func TestRepositoryBrowseFilters(t *testing.T) {
	db := setupPropertiesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	agentID := seedAgent(t, db, false)
	cheap := seedListing(t, repo, agentID, enums.PropertyStatusApproved, 80000)
	seedListing(t, repo, agentID, enums.PropertyStatusApproved, 250000)

	maxPrice := 100000
	rows, err := repo.Browse(ctx, BrowseFilter{MaxPrice: &maxPrice}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, cheap.ID, rows[0].ID)

	hostel := enums.PropertyTypeHostel
	rows, err = repo.Browse(ctx, BrowseFilter{PropertyType: &hostel, Location: "ogbomoso"}, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.Browse(ctx, BrowseFilter{Location: "ibadan"}, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepositorySetStatus(t *testing.T) {
	db := setupPropertiesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	agentID := seedAgent(t, db, false)
	adminID := uuid.New()
	property := seedListing(t, repo, agentID, enums.PropertyStatusPending, 150000)

	rows, err := repo.SetStatus(ctx, property.ID, enums.PropertyStatusApproved, &adminID)
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	reloaded, err := repo.FindByID(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PropertyStatusApproved, reloaded.Status)
	require.NotNil(t, reloaded.ApprovedBy)
	assert.Equal(t, adminID, *reloaded.ApprovedBy)

	// Rejection clears the approver.
	rows, err = repo.SetStatus(ctx, property.ID, enums.PropertyStatusRejected, &adminID)
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	reloaded, err = repo.FindByID(ctx, property.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.ApprovedBy)

	rows, err = repo.SetStatus(ctx, uuid.New(), enums.PropertyStatusApproved, &adminID)
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestRepositoryCountByStatus(t *testing.T) {
	db := setupPropertiesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	agentID := seedAgent(t, db, false)
	seedListing(t, repo, agentID, enums.PropertyStatusApproved, 100000)
	seedListing(t, repo, agentID, enums.PropertyStatusApproved, 110000)
	seedListing(t, repo, agentID, enums.PropertyStatusPending, 90000)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[enums.PropertyStatusApproved])
	assert.Equal(t, int64(1), counts[enums.PropertyStatusPending])
	assert.Zero(t, counts[enums.PropertyStatusRejected])
}
