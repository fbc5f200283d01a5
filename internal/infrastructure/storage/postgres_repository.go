package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"DealsTracker/internal/domain"
	"DealsTracker/internal/ports"
)

const uniqueViolation = "23505"

var dealColumns = []string{
	"id", "title", "country", "value", "status", "type", "impact",
	"description", "strategic_intent", "why_india_needs_this", "key_items", "date",
	"review_status", "source_url", "source_title", "fetched_at", "created_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists deals into Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.DealRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores a new deal; title or source URL collisions yield domain.ErrDuplicate.
func (r *PostgresRepository) Insert(ctx context.Context, deal domain.Deal) error {
	var fetchedAt sql.NullTime
	if deal.FetchedAt != nil {
		fetchedAt = sql.NullTime{Time: *deal.FetchedAt, Valid: true}
	}

	query, args, err := psql.Insert("deals").
		Columns(dealColumns...).
		Values(
			deal.ID, deal.Title, deal.Country, deal.Value,
			string(deal.Status), string(deal.Type), string(deal.Impact),
			deal.Description, deal.StrategicIntent, deal.WhyIndiaNeedsThis,
			pq.StringArray(nonNil(deal.KeyItems)), deal.Date,
			string(deal.ReviewStatus), deal.SourceURL, deal.SourceTitle,
			fetchedAt, deal.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert %q: %w", deal.Title, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert deal: %w", err)
	}
	return nil
}

// Get loads a single deal by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (domain.Deal, error) {
	query, args, err := psql.Select(dealColumns...).From("deals").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Deal{}, fmt.Errorf("build select: %w", err)
	}

	deal, err := scanDeal(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Deal{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Deal{}, fmt.Errorf("select deal: %w", err)
	}
	return deal, nil
}

// List returns deals newest first, optionally narrowed to one review status.
func (r *PostgresRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Deal, error) {
	builder := psql.Select(dealColumns...).From("deals").OrderBy("created_at DESC", "id")
	if filter.ReviewStatus != "" {
		builder = builder.Where(sq.Eq{"review_status": string(filter.ReviewStatus)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query deals: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Deal, 0)
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		result = append(result, deal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

// Update rewrites the descriptive fields of an existing deal.
func (r *PostgresRepository) Update(ctx context.Context, deal domain.Deal) error {
	query, args, err := psql.Update("deals").
		SetMap(map[string]any{
			"title":                deal.Title,
			"country":              deal.Country,
			"value":                deal.Value,
			"status":               string(deal.Status),
			"type":                 string(deal.Type),
			"impact":               string(deal.Impact),
			"description":          deal.Description,
			"strategic_intent":     deal.StrategicIntent,
			"why_india_needs_this": deal.WhyIndiaNeedsThis,
			"key_items":            pq.StringArray(nonNil(deal.KeyItems)),
			"date":                 deal.Date,
		}).
		Where(sq.Eq{"id": deal.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update %q: %w", deal.Title, domain.ErrDuplicate)
		}
		return fmt.Errorf("update deal: %w", err)
	}
	return expectOneRow(res)
}

// SetReviewStatus writes only the review status column.
func (r *PostgresRepository) SetReviewStatus(ctx context.Context, id string, status domain.ReviewStatus) error {
	return r.setColumn(ctx, id, "review_status", string(status))
}

// SetCreatedAt overwrites the bookkeeping timestamp used for display order.
func (r *PostgresRepository) SetCreatedAt(ctx context.Context, id string, createdAt time.Time) error {
	return r.setColumn(ctx, id, "created_at", createdAt)
}

func (r *PostgresRepository) setColumn(ctx context.Context, id, column string, value any) error {
	query, args, err := psql.Update("deals").Set(column, value).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update %s: %w", column, err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	return expectOneRow(res)
}

// Delete removes a deal by identifier.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("deals").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete deal: %w", err)
	}
	return expectOneRow(res)
}

// ExistsBySourceURL reports whether any deal was created from url.
func (r *PostgresRepository) ExistsBySourceURL(ctx context.Context, url string) (bool, error) {
	if url == "" {
		return false, nil
	}
	return r.exists(ctx, sq.Eq{"source_url": url})
}

// ExistsByTitle reports whether the title is already taken.
func (r *PostgresRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	if title == "" {
		return false, nil
	}
	return r.exists(ctx, sq.Eq{"title": title})
}

func (r *PostgresRepository) exists(ctx context.Context, pred sq.Eq) (bool, error) {
	query, args, err := psql.Select("1").From("deals").Where(pred).Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}
	return true, nil
}

// CountByReviewStatus counts deals in one review state.
func (r *PostgresRepository) CountByReviewStatus(ctx context.Context, status domain.ReviewStatus) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From("deals").Where(sq.Eq{"review_status": string(status)}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count deals: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeal(row rowScanner) (domain.Deal, error) {
	var (
		d                   domain.Deal
		status, typ, impact string
		reviewStatus        string
		keyItems            pq.StringArray
		fetchedAt           sql.NullTime
	)
	err := row.Scan(
		&d.ID, &d.Title, &d.Country, &d.Value, &status, &typ, &impact,
		&d.Description, &d.StrategicIntent, &d.WhyIndiaNeedsThis, &keyItems, &d.Date,
		&reviewStatus, &d.SourceURL, &d.SourceTitle, &fetchedAt, &d.CreatedAt,
	)
	if err != nil {
		return domain.Deal{}, err
	}
	d.Status = domain.DealStatus(status)
	d.Type = domain.Category(typ)
	d.Impact = domain.Impact(impact)
	d.ReviewStatus = domain.ReviewStatus(reviewStatus)
	d.KeyItems = nonNil(keyItems)
	if fetchedAt.Valid {
		t := fetchedAt.Time
		d.FetchedAt = &t
	}
	return d, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
