package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Chrojoh/dog-collage-generator/internal/model"
)

// CallRepository handles persistence of remote provider call tracking.
// Go interfaces are implicit — any struct with these methods satisfies it,
// which is what makes the handler tests' in-memory fake painless.
type CallRepository interface {
	Create(ctx context.Context, call *model.ProviderCall) error
	Count(ctx context.Context, kind model.CallKind) (int64, error)
	CountFailed(ctx context.Context, kind model.CallKind) (int64, error)
}

// sqliteCallRepository is the SQLite implementation of CallRepository.
// The struct is unexported — only the interface is public.
type sqliteCallRepository struct {
	db *sqlx.DB
}

// NewCallRepository creates a new SQLite-backed CallRepository.
func NewCallRepository(db *sqlx.DB) CallRepository {
	return &sqliteCallRepository{db: db}
}

func (r *sqliteCallRepository) Create(ctx context.Context, call *model.ProviderCall) error {
	// NamedExecContext uses the struct's `db:` tags to map fields to :named placeholders.
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO provider_calls (kind, provider, model, image_count, prompt_chars, success, error_message, duration_ms)
		VALUES (:kind, :provider, :model, :image_count, :prompt_chars, :success, :error_message, :duration_ms)
	`, call)
	if err != nil {
		return fmt.Errorf("creating provider call record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	call.ID = id
	return nil
}

func (r *sqliteCallRepository) Count(ctx context.Context, kind model.CallKind) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM provider_calls WHERE kind = ?", kind)
	return count, err
}

func (r *sqliteCallRepository) CountFailed(ctx context.Context, kind model.CallKind) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM provider_calls WHERE kind = ? AND success = 0", kind)
	return count, err
}
