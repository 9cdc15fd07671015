package stats

import (
	"context"

	"gorm.io/gorm"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db/models"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
)

// Repository runs the aggregate queries behind the admin dashboard.
type Repository interface {
	CountUsersByRole(ctx context.Context) (map[enums.Role]int64, error)
	CountSuspendedUsers(ctx context.Context) (int64, error)
	CountPropertiesByStatus(ctx context.Context) (map[enums.PropertyStatus]int64, error)
	CountInspectionsByStatus(ctx context.Context) (map[enums.InspectionStatus]int64, error)
	CountPendingVerifications(ctx context.Context) (int64, error)
	CountUnlocks(ctx context.Context) (int64, error)
	// Revenue sums completed transactions only; pending and failed rows never
	// count as money.
	TokenRevenue(ctx context.Context) (int64, error)
	InspectionRevenue(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stats repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountUsersByRole(ctx context.Context) (map[enums.Role]int64, error) {
	type row struct {
		Role  enums.Role
		Total int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("role, COUNT(*) AS total").
		Group("role").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[enums.Role]int64, len(rows))
	for _, item := range rows {
		counts[item.Role] = item.Total
	}
	return counts, nil
}

func (r *repository) CountSuspendedUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("suspended = ?", true).
		Count(&count).Error
	return count, err
}

func (r *repository) CountPropertiesByStatus(ctx context.Context) (map[enums.PropertyStatus]int64, error) {
	type row struct {
		Status enums.PropertyStatus
		Total  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Property{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[enums.PropertyStatus]int64, len(rows))
	for _, item := range rows {
		counts[item.Status] = item.Total
	}
	return counts, nil
}

func (r *repository) CountInspectionsByStatus(ctx context.Context) (map[enums.InspectionStatus]int64, error) {
	type row struct {
		Status enums.InspectionStatus
		Total  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Inspection{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[enums.InspectionStatus]int64, len(rows))
	for _, item := range rows {
		counts[item.Status] = item.Total
	}
	return counts, nil
}

func (r *repository) CountPendingVerifications(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VerificationRequest{}).
		Where("status = ?", enums.VerificationStatusPending).
		Count(&count).Error
	return count, err
}

func (r *repository) CountUnlocks(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Unlock{}).
		Count(&count).Error
	return count, err
}

func (r *repository) TokenRevenue(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.TokenTransaction{}).
		Where("status = ?", enums.TransactionStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *repository) InspectionRevenue(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.InspectionTransaction{}).
		Where("status = ?", enums.TransactionStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
