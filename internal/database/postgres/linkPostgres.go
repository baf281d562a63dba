package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/ds124wfegd/shortlink/internal/entity"

	_ "github.com/lib/pq"
)

type LinkRepository struct {
	db *sql.DB
}

func NewLinkRepository(db *sql.DB) LinkRepositoryInterface {
	return &LinkRepository{db: db}
}

const linkColumns = `id, short_code, destination, owner_id, guest_session_id, clicks, is_active, expires_at, created_at, last_accessed_at, last_activity_at`

func (r *LinkRepository) Create(ctx context.Context, link *entity.Link) error {
	query := `INSERT INTO links (` + linkColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, query,
		link.ID, link.ShortCode, link.Destination, link.OwnerID, link.GuestSessionID,
		link.Clicks, link.IsActive, link.ExpiresAt, link.CreatedAt, link.LastAccessedAt, link.LastActivityAt)
	return err
}

func (r *LinkRepository) GetByShortCode(ctx context.Context, shortCode string) (*entity.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE short_code = $1`
	return r.scanLink(r.db.QueryRowContext(ctx, query, shortCode))
}

func (r *LinkRepository) GetByID(ctx context.Context, id string) (*entity.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1`
	return r.scanLink(r.db.QueryRowContext(ctx, query, id))
}

func (r *LinkRepository) scanLink(row *sql.Row) (*entity.Link, error) {
	var link entity.Link
	err := row.Scan(&link.ID, &link.ShortCode, &link.Destination, &link.OwnerID, &link.GuestSessionID,
		&link.Clicks, &link.IsActive, &link.ExpiresAt, &link.CreatedAt, &link.LastAccessedAt, &link.LastActivityAt)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *LinkRepository) Exists(ctx context.Context, shortCode string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM links WHERE short_code = $1`
	err := r.db.QueryRowContext(ctx, query, shortCode).Scan(&count)
	return count > 0, err
}

// RecordVisit bumps the click count and activity timestamps in a
// single statement, so concurrent redirects on a hot link never lose
// updates.
func (r *LinkRepository) RecordVisit(ctx context.Context, shortCode string, at time.Time) error {
	query := `UPDATE links SET clicks = clicks + 1, last_accessed_at = $2, last_activity_at = $2, is_active = TRUE WHERE short_code = $1`
	_, err := r.db.ExecContext(ctx, query, shortCode, at)
	return err
}

func (r *LinkRepository) Deactivate(ctx context.Context, shortCode string) error {
	query := `UPDATE links SET is_active = FALSE WHERE short_code = $1`
	_, err := r.db.ExecContext(ctx, query, shortCode)
	return err
}

func (r *LinkRepository) UpdateDestination(ctx context.Context, shortCode, destination string) error {
	query := `UPDATE links SET destination = $2, last_activity_at = CURRENT_TIMESTAMP WHERE short_code = $1`
	_, err := r.db.ExecContext(ctx, query, shortCode, destination)
	return err
}

func (r *LinkRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM links WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
