package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
	"github.com/ericfisherdev/threadpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.FlashRelay = (*FlashRelayRepo)(nil)

// FlashRelayRepo is the SQLite implementation of the FlashRelay port. Each
// slot occupies two rows of the local_storage key/value table, one for the
// text and one for the category.
type FlashRelayRepo struct {
	db *DB
}

// NewFlashRelayRepo creates a new FlashRelayRepo.
func NewFlashRelayRepo(db *DB) *FlashRelayRepo {
	return &FlashRelayRepo{db: db}
}

// Set stores msg in the slot, replacing whatever it held. An empty category
// leaves the category key unset so the reader falls back to the slot default.
func (r *FlashRelayRepo) Set(ctx context.Context, slot model.FlashSlot, msg model.FlashMessage) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set %s flash: %w", slot, err)
	}
	defer func() { _ = tx.Rollback() }()

	const upsert = `INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := tx.ExecContext(ctx, upsert, slot.MessageKey(), msg.Text); err != nil {
		return fmt.Errorf("set %s flash text: %w", slot, err)
	}

	if msg.Category != "" {
		_, err = tx.ExecContext(ctx, upsert, slot.CategoryKey(), string(msg.Category))
	} else {
		_, err = tx.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, slot.CategoryKey())
	}
	if err != nil {
		return fmt.Errorf("set %s flash category: %w", slot, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s flash: %w", slot, err)
	}
	return nil
}

// TakeAndClear reads the slot and removes both of its keys in one writer
// transaction, so a message is delivered at most once. Returns (nil, nil) for
// an empty slot.
func (r *FlashRelayRepo) TakeAndClear(ctx context.Context, slot model.FlashSlot) (*model.FlashMessage, error) {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin take %s flash: %w", slot, err)
	}
	defer func() { _ = tx.Rollback() }()

	text, found, err := lookup(ctx, tx, slot.MessageKey())
	if err != nil {
		return nil, fmt.Errorf("read %s flash text: %w", slot, err)
	}
	category, _, err := lookup(ctx, tx, slot.CategoryKey())
	if err != nil {
		return nil, fmt.Errorf("read %s flash category: %w", slot, err)
	}

	const clear = `DELETE FROM local_storage WHERE key IN (?, ?)`
	if _, err := tx.ExecContext(ctx, clear, slot.MessageKey(), slot.CategoryKey()); err != nil {
		return nil, fmt.Errorf("clear %s flash: %w", slot, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit take %s flash: %w", slot, err)
	}

	if !found || text == "" {
		return nil, nil
	}
	return &model.FlashMessage{Text: text, Category: model.AlertCategory(category)}, nil
}

func lookup(ctx context.Context, tx *sql.Tx, key string) (string, bool, error) {
	var value string
	err := tx.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
