package repository

import (
	"context"
	"fmt"

	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
	"gorm.io/gorm"
)

type postgresEventRepository struct {
	db       *gorm.DB
	capacity int
}

func NewPostgresEventRepository(db *gorm.DB, capacity int) security.EventRepository {
	return &postgresEventRepository{
		db:       db,
		capacity: capacity,
	}
}

func (r *postgresEventRepository) Append(ctx context.Context, event *security.Event) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to insert security event: %w", err)
		}
		err := tx.Exec(`
			DELETE FROM security_events
			WHERE id NOT IN (
				SELECT id FROM security_events
				ORDER BY timestamp DESC, id DESC
				LIMIT ?
			)`, r.capacity).Error
		if err != nil {
			return fmt.Errorf("failed to trim security events: %w", err)
		}
		return nil
	})
}

func (r *postgresEventRepository) List(ctx context.Context) ([]*security.Event, error) {
	var events []*security.Event
	err := r.db.WithContext(ctx).
		Order("timestamp DESC, id DESC").
		Limit(r.capacity).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *postgresEventRepository) Page(ctx context.Context, filter security.Filter) (*security.Page, error) {
	query := r.db.WithContext(ctx).Model(&security.Event{})
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count security events: %w", err)
	}

	events := []*security.Event{}
	err := query.Session(&gorm.Session{}).
		Order("timestamp DESC, id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query security events: %w", err)
	}

	return &security.Page{
		Events: events,
		Total:  int(total),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}
