package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/udisondev/l2quest/internal/game/quest"
)

var _ quest.QuestRepository = (*SQLiteQuestRepository)(nil)

// OpenSQLite opens or creates the SQLite database at path and applies migrations.
// A single connection serializes writers; WAL keeps readers unblocked.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging sqlite database: %w", err)
	}

	if err := RunSQLiteMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	slog.Info("sqlite database ready", "path", path)
	return sqlDB, nil
}

// SQLiteQuestRepository manages character quest data in SQLite.
type SQLiteQuestRepository struct {
	db *sql.DB
}

// NewSQLiteQuestRepository creates a new SQLiteQuestRepository.
func NewSQLiteQuestRepository(db *sql.DB) *SQLiteQuestRepository {
	return &SQLiteQuestRepository{db: db}
}

// LoadByCharacterID returns every quest variable of a character, ordered by
// quest and variable name.
func (r *SQLiteQuestRepository) LoadByCharacterID(ctx context.Context, charID int64) ([]quest.QuestVar, error) {
	rows, err := r.db.QueryContext(ctx, sqliteQuestSQL.load, charID)
	if err != nil {
		return nil, fmt.Errorf("loading quests of character %d: %w", charID, err)
	}
	defer rows.Close()

	return scanQuestVars(rows, charID)
}

// SaveQuestState replaces all variables of a single quest in one transaction.
func (r *SQLiteQuestRepository) SaveQuestState(ctx context.Context, charID int64, questName string, vars map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("rollback failed", "characterID", charID, "quest", questName, "error", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, sqliteQuestSQL.delete, charID, questName); err != nil {
		return fmt.Errorf("clearing quest %q of character %d: %w", questName, charID, err)
	}

	if len(vars) > 0 {
		stmt, err := tx.PrepareContext(ctx, sqliteQuestSQL.insert)
		if err != nil {
			return fmt.Errorf("preparing quest var insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range questVarRecords(charID, questName, vars) {
			if _, err := stmt.ExecContext(ctx, rec...); err != nil {
				return fmt.Errorf("inserting quest %q of character %d: %w", questName, charID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// DeleteQuest removes every variable of a quest.
func (r *SQLiteQuestRepository) DeleteQuest(ctx context.Context, charID int64, questName string) error {
	if _, err := r.db.ExecContext(ctx, sqliteQuestSQL.delete, charID, questName); err != nil {
		return fmt.Errorf("deleting quest %q of character %d: %w", questName, charID, err)
	}
	return nil
}
