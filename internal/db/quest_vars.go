package db

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/udisondev/l2quest/internal/game/quest"
)

// questVarColumns are the columns of character_quests in insert order.
var questVarColumns = []string{"character_id", "quest_name", "variable", "value"}

// questSQL holds the character_quests statements for one placeholder style.
type questSQL struct {
	load   string
	delete string
	insert string
}

func newQuestSQL(placeholder func(pos int) string) questSQL {
	return questSQL{
		load: `SELECT quest_name, variable, value FROM character_quests WHERE character_id = ` +
			placeholder(1) + ` ORDER BY quest_name, variable`,
		delete: `DELETE FROM character_quests WHERE character_id = ` +
			placeholder(1) + ` AND quest_name = ` + placeholder(2),
		insert: `INSERT INTO character_quests (character_id, quest_name, variable, value) VALUES (` +
			placeholder(1) + `, ` + placeholder(2) + `, ` + placeholder(3) + `, ` + placeholder(4) + `)`,
	}
}

var (
	postgresQuestSQL = newQuestSQL(func(pos int) string { return "$" + strconv.Itoa(pos) })
	sqliteQuestSQL   = newQuestSQL(func(int) string { return "?" })
)

// rowScanner is the common cursor surface of pgx.Rows and *sql.Rows.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanQuestVars drains a load query cursor.
func scanQuestVars(rows rowScanner, charID int64) ([]quest.QuestVar, error) {
	vars := make([]quest.QuestVar, 0, 32)
	for rows.Next() {
		var v quest.QuestVar
		if err := rows.Scan(&v.QuestName, &v.Variable, &v.Value); err != nil {
			return nil, fmt.Errorf("scanning quest var of character %d: %w", charID, err)
		}
		vars = append(vars, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quest vars of character %d: %w", charID, err)
	}
	return vars, nil
}

// questVarRecords turns a var bag into insert rows ordered by variable name.
func questVarRecords(charID int64, questName string, vars map[string]string) [][]any {
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	slices.Sort(names)

	records := make([][]any, 0, len(names))
	for _, k := range names {
		records = append(records, []any{charID, questName, k, vars[k]})
	}
	return records
}
