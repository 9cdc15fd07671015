package properties

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db/models"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/pagination"
)

// BrowseFilter narrows the public listing query.
type BrowseFilter struct {
	PropertyType *enums.PropertyType
	Location     string
	MinPrice     *int
	MaxPrice     *int
}

// Repository manages persistence for rental listings. Browse joins users so
// a suspended agent's listings never surface, matching the read path the
// visibility gate applies to single fetches.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, property *models.Property) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	// SetStatus applies a moderation decision. approvedBy is recorded for
	// approvals and cleared otherwise.
	SetStatus(ctx context.Context, id uuid.UUID, status enums.PropertyStatus, approvedBy *uuid.UUID) (int64, error)
	Browse(ctx context.Context, filter BrowseFilter, params pagination.Params) ([]models.Property, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) ([]models.Property, error)
	ListByStatus(ctx context.Context, status enums.PropertyStatus, params pagination.Params) ([]models.Property, error)
	ListAll(ctx context.Context, params pagination.Params) ([]models.Property, error)
	CountByStatus(ctx context.Context) (map[enums.PropertyStatus]int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a properties repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Create(property).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var property models.Property
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&property).Error; err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *repository) Update(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Save(property).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Property{})
	return result.RowsAffected, result.Error
}

func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, status enums.PropertyStatus, approvedBy *uuid.UUID) (int64, error) {
	updates := map[string]any{"status": status}
	if status == enums.PropertyStatusApproved {
		updates["approved_by"] = approvedBy
	} else {
		updates["approved_by"] = nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Property{}).
		Where("id = ?", id).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repository) Browse(ctx context.Context, filter BrowseFilter, params pagination.Params) ([]models.Property, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Property{}).
		Joins("JOIN users ON users.id = properties.agent_id").
		Where("properties.status = ?", enums.PropertyStatusApproved).
		Where("users.suspended = ?", false)

	if filter.PropertyType != nil {
		query = query.Where("properties.property_type = ?", *filter.PropertyType)
	}
	if filter.Location != "" {
		query = query.Where("LOWER(properties.location) LIKE ?", "%"+strings.ToLower(filter.Location)+"%")
	}
	if filter.MinPrice != nil {
		query = query.Where("properties.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("properties.price <= ?", *filter.MaxPrice)
	}
	return r.page(ctx, query, "properties", params)
}

func (r *repository) ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) ([]models.Property, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Property{}).
		Where("agent_id = ?", agentID)
	return r.page(ctx, query, "properties", params)
}

func (r *repository) ListByStatus(ctx context.Context, status enums.PropertyStatus, params pagination.Params) ([]models.Property, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Property{}).
		Where("status = ?", status)
	return r.page(ctx, query, "properties", params)
}

func (r *repository) ListAll(ctx context.Context, params pagination.Params) ([]models.Property, error) {
	query := r.db.WithContext(ctx).Model(&models.Property{})
	return r.page(ctx, query, "properties", params)
}

func (r *repository) page(ctx context.Context, query *gorm.DB, table string, params pagination.Params) ([]models.Property, error) {
	query = query.
		Order(table + ".created_at DESC").
		Order(table + ".id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"("+table+".created_at < ?) OR ("+table+".created_at = ? AND "+table+".id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Property
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[enums.PropertyStatus]int64, error) {
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
