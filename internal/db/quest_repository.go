package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/l2quest/internal/game/quest"
)

var _ quest.QuestRepository = (*QuestRepository)(nil)

// QuestRepository stores quest variables in PostgreSQL. Each quest is saved as
// a full replace: delete the quest's rows, then COPY the new set.
type QuestRepository struct {
	pool *pgxpool.Pool
}

// NewQuestRepository creates a repository over a pool.
func NewQuestRepository(pool *pgxpool.Pool) *QuestRepository {
	return &QuestRepository{pool: pool}
}

// LoadByCharacterID returns every quest variable of a character, ordered by
// quest and variable name.
func (r *QuestRepository) LoadByCharacterID(ctx context.Context, charID int64) ([]quest.QuestVar, error) {
	rows, err := r.pool.Query(ctx, postgresQuestSQL.load, charID)
	if err != nil {
		return nil, fmt.Errorf("loading quests of character %d: %w", charID, err)
	}
	defer rows.Close()

	return scanQuestVars(rows, charID)
}

// SaveQuestState replaces the variables of one quest in its own transaction.
func (r *QuestRepository) SaveQuestState(ctx context.Context, charID int64, questName string, vars map[string]string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return r.SaveQuestStateTx(ctx, tx, charID, questName, vars)
	})
}

// SaveQuestStateTx replaces the variables of one quest inside tx, so a caller
// can save several quests atomically.
func (r *QuestRepository) SaveQuestStateTx(ctx context.Context, tx pgx.Tx, charID int64, questName string, vars map[string]string) error {
	if _, err := tx.Exec(ctx, postgresQuestSQL.delete, charID, questName); err != nil {
		return fmt.Errorf("clearing quest %q of character %d: %w", questName, charID, err)
	}
	if len(vars) == 0 {
		return nil
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"character_quests"},
		questVarColumns,
		pgx.CopyFromRows(questVarRecords(charID, questName, vars)),
	)
	if err != nil {
		return fmt.Errorf("copying quest %q of character %d: %w", questName, charID, err)
	}
	if int(n) != len(vars) {
		return fmt.Errorf("copying quest %q of character %d: %d of %d vars written", questName, charID, n, len(vars))
	}
	return nil
}

// DeleteQuest removes every variable of a quest.
func (r *QuestRepository) DeleteQuest(ctx context.Context, charID int64, questName string) error {
	if _, err := r.pool.Exec(ctx, postgresQuestSQL.delete, charID, questName); err != nil {
		return fmt.Errorf("deleting quest %q of character %d: %w", questName, charID, err)
	}
	return nil
}
