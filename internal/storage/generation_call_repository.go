package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fleveque/market-radar/internal/model"
)

// ProviderStats aggregates the call log for one provider.
type ProviderStats struct {
	Provider      string `db:"provider" json:"provider"`
	Calls         int64  `db:"calls" json:"calls"`
	Succeeded     int64  `db:"succeeded" json:"succeeded"`
	AvgDurationMs int64  `db:"avg_duration_ms" json:"avg_duration_ms"`
}

// GenerationCallRepository handles persistence of generation call tracking.
// Go interfaces are implicit: any struct with these methods satisfies it,
// so tests can substitute an in-memory fake.
type GenerationCallRepository interface {
	Create(ctx context.Context, call *model.GenerationCall) error
	Count(ctx context.Context) (int64, error)
	CountBySuccess(ctx context.Context, success bool) (int64, error)
	StatsByProvider(ctx context.Context) ([]ProviderStats, error)
	ListRecent(ctx context.Context, limit int) ([]model.GenerationCall, error)
}

type sqliteGenerationCallRepository struct {
	db *sqlx.DB
}

// NewGenerationCallRepository creates a new SQLite-backed GenerationCallRepository.
func NewGenerationCallRepository(db *sqlx.DB) GenerationCallRepository {
	return &sqliteGenerationCallRepository{db: db}
}

func (r *sqliteGenerationCallRepository) Create(ctx context.Context, call *model.GenerationCall) error {
	// NamedExecContext uses the struct's `db:` tags to map fields to :named placeholders.
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO generation_calls (segment, provider, model, grounded, success, citation_count, error_message, duration_ms)
		VALUES (:segment, :provider, :model, :grounded, :success, :citation_count, :error_message, :duration_ms)
	`, call)
	if err != nil {
		return fmt.Errorf("creating generation call record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	call.ID = id
	return nil
}

func (r *sqliteGenerationCallRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM generation_calls")
	return count, err
}

func (r *sqliteGenerationCallRepository) CountBySuccess(ctx context.Context, success bool) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM generation_calls WHERE success = ?", success)
	return count, err
}

func (r *sqliteGenerationCallRepository) StatsByProvider(ctx context.Context) ([]ProviderStats, error) {
	stats := []ProviderStats{}
	err := r.db.SelectContext(ctx, &stats, `
		SELECT provider,
		       COUNT(*) AS calls,
		       COALESCE(SUM(success), 0) AS succeeded,
		       CAST(COALESCE(AVG(duration_ms), 0) AS INTEGER) AS avg_duration_ms
		FROM generation_calls
		GROUP BY provider
		ORDER BY provider
	`)
	if err != nil {
		return nil, fmt.Errorf("aggregating generation calls: %w", err)
	}
	return stats, nil
}

func (r *sqliteGenerationCallRepository) ListRecent(ctx context.Context, limit int) ([]model.GenerationCall, error) {
	var calls []model.GenerationCall
	err := r.db.SelectContext(ctx, &calls,
		"SELECT * FROM generation_calls ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing generation calls: %w", err)
	}
	return calls, nil
}
