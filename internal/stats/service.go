package stats

import (
	"context"
	"fmt"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
)

// Overview is the admin dashboard snapshot.
type Overview struct {
	Users struct {
		Total     int64 `json:"total"`
		Seekers   int64 `json:"seekers"`
		Agents    int64 `json:"agents"`
		Admins    int64 `json:"admins"`
		Suspended int64 `json:"suspended"`
	} `json:"users"`
	Properties struct {
		Total    int64 `json:"total"`
		Pending  int64 `json:"pending"`
		Approved int64 `json:"approved"`
		Rejected int64 `json:"rejected"`
	} `json:"properties"`
	Inspections struct {
		Total     int64 `json:"total"`
		Pending   int64 `json:"pending"`
		Assigned  int64 `json:"assigned"`
		Completed int64 `json:"completed"`
	} `json:"inspections"`
	PendingVerifications int64 `json:"pending_verifications"`
	TotalUnlocks         int64 `json:"total_unlocks"`
	Revenue              struct {
		Tokens      int64 `json:"tokens"`
		Inspections int64 `json:"inspections"`
		Total       int64 `json:"total"`
	} `json:"revenue"`
}

// Service assembles the admin overview.
type Service interface {
	Overview(ctx context.Context) (*Overview, error)
}

type service struct {
	repo Repository
}

// NewService builds the stats service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stats repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Overview(ctx context.Context) (*Overview, error) {
	overview := &Overview{}

	roles, err := s.repo.CountUsersByRole(ctx)
	if err != nil {
		return nil, err
	}
	overview.Users.Seekers = roles[enums.RoleSeeker]
	overview.Users.Agents = roles[enums.RoleAgent]
	overview.Users.Admins = roles[enums.RoleAdmin]
	overview.Users.Total = overview.Users.Seekers + overview.Users.Agents + overview.Users.Admins

	if overview.Users.Suspended, err = s.repo.CountSuspendedUsers(ctx); err != nil {
		return nil, err
	}

	propertyCounts, err := s.repo.CountPropertiesByStatus(ctx)
	if err != nil {
		return nil, err
	}
	overview.Properties.Pending = propertyCounts[enums.PropertyStatusPending]
	overview.Properties.Approved = propertyCounts[enums.PropertyStatusApproved]
	overview.Properties.Rejected = propertyCounts[enums.PropertyStatusRejected]
	overview.Properties.Total = overview.Properties.Pending + overview.Properties.Approved + overview.Properties.Rejected

	inspectionCounts, err := s.repo.CountInspectionsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	overview.Inspections.Pending = inspectionCounts[enums.InspectionStatusPending]
	overview.Inspections.Assigned = inspectionCounts[enums.InspectionStatusAssigned]
	overview.Inspections.Completed = inspectionCounts[enums.InspectionStatusCompleted]
	overview.Inspections.Total = overview.Inspections.Pending + overview.Inspections.Assigned + overview.Inspections.Completed

	if overview.PendingVerifications, err = s.repo.CountPendingVerifications(ctx); err != nil {
		return nil, err
	}
	if overview.TotalUnlocks, err = s.repo.CountUnlocks(ctx); err != nil {
		return nil, err
	}
	if overview.Revenue.Tokens, err = s.repo.TokenRevenue(ctx); err != nil {
		return nil, err
	}
	if overview.Revenue.Inspections, err = s.repo.InspectionRevenue(ctx); err != nil {
		return nil, err
	}
	overview.Revenue.Total = overview.Revenue.Tokens + overview.Revenue.Inspections

	return overview, nil
}
