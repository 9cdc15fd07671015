package unlocks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbpkg "github.com/muhammed1675/LAUTECH-Rentals/pkg/db"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db/models"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/pagination"
)

func setupUnlocksTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	unlocks := `
CREATE TABLE IF NOT EXISTS unlocks (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  property_id TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(unlocks).Error)
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_unlocks_user_property ON unlocks (user_id, property_id);`).Error)
	return db
}

func TestRepositoryCreateDuplicatePair(t *testing.T) {
	db := setupUnlocksTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	propertyID := uuid.New()

	first := &models.Unlock{ID: uuid.New(), UserID: userID, PropertyID: propertyID}
	require.NoError(t, repo.Create(ctx, first))

	second := &models.Unlock{ID: uuid.New(), UserID: userID, PropertyID: propertyID}
	err := repo.Create(ctx, second)
	require.Error(t, err)
	assert.True(t, dbpkg.IsUniqueViolation(err, "ux_unlocks_user_property"))

	exists, err := repo.Exists(ctx, userID, propertyID)
	require.NoError(t, err)
	assert.True(t, exists)

	// A different property for the same user still inserts.
	require.NoError(t, repo.Create(ctx, &models.Unlock{ID: uuid.New(), UserID: userID, PropertyID: uuid.New()}))
}

func TestRepositoryListByUserPagination(t *testing.T) {
	db := setupUnlocksTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		row := &models.Unlock{
			ID:         uuid.New(),
			UserID:     userID,
			PropertyID: uuid.New(),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(row).Error)
	}
	// Another user's unlock never leaks into the listing.
	require.NoError(t, db.Create(&models.Unlock{ID: uuid.New(), UserID: uuid.New(), PropertyID: uuid.New(), CreatedAt: base}).Error)

	rows, err := repo.ListByUser(ctx, userID, pagination.Params{Limit: 3})
	require.NoError(t, err)
	// Buffer row included so callers can detect the next page.
	require.Len(t, rows, 4)
	for _, row := range rows {
		assert.Equal(t, userID, row.UserID)
	}
	assert.True(t, rows[0].CreatedAt.After(rows[1].CreatedAt))
}
