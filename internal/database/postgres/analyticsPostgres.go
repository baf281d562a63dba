package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/ds124wfegd/shortlink/internal/entity"
)

type AnalyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) AnalyticsRepositoryInterface {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) InsertEvent(ctx context.Context, event *entity.AnalyticsEvent) error {
	query := `INSERT INTO analytics_events (id, link_id, timestamp, ip_address, user_agent, referrer, referrer_category, country, city, device_type, browser, os)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.LinkID, event.Timestamp, event.IPAddress, event.UserAgent,
		event.Referrer, event.ReferrerCategory, event.Country, event.City,
		event.DeviceType, event.Browser, event.OS)
	return err
}

func (r *AnalyticsRepository) ListEventsSince(ctx context.Context, linkID string, since time.Time) ([]entity.AnalyticsEvent, error) {
	query := `SELECT id, link_id, timestamp, ip_address, user_agent, referrer, referrer_category, country, city, device_type, browser, os
		FROM analytics_events WHERE link_id = $1 AND timestamp >= $2 ORDER BY timestamp ASC`
	rows, err := r.db.QueryContext(ctx, query, linkID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []entity.AnalyticsEvent
	for rows.Next() {
		var event entity.AnalyticsEvent
		err := rows.Scan(&event.ID, &event.LinkID, &event.Timestamp, &event.IPAddress, &event.UserAgent,
			&event.Referrer, &event.ReferrerCategory, &event.Country, &event.City,
			&event.DeviceType, &event.Browser, &event.OS)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

func (r *AnalyticsRepository) DeleteByLink(ctx context.Context, linkID string) error {
	query := `DELETE FROM analytics_events WHERE link_id = $1`
	_, err := r.db.ExecContext(ctx, query, linkID)
	return err
}
