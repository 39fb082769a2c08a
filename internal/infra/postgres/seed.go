package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"

	"paradox-quiz-service/internal/domain"
)

// SeedCatalog upserts paradoxes, keeping their slice order as catalog position.
func SeedCatalog(ctx context.Context, db *bun.DB, items []domain.Paradox) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for i, p := range items {
			data, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("marshal paradox %s: %w", p.ID, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO paradoxes (id, position, data) VALUES (?, ?, ?::jsonb)
				 ON CONFLICT (id) DO UPDATE SET position=EXCLUDED.position, data=EXCLUDED.data, updated_at=now()`,
				p.ID, i, string(data)); err != nil {
				return fmt.Errorf("upsert paradox %s: %w", p.ID, err)
			}
		}
		return nil
	})
}
