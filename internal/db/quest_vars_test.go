package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestSQL_Placeholders(t *testing.T) {
	assert.Equal(t,
		"DELETE FROM character_quests WHERE character_id = $1 AND quest_name = $2",
		postgresQuestSQL.delete)
	assert.Equal(t,
		"DELETE FROM character_quests WHERE character_id = ? AND quest_name = ?",
		sqliteQuestSQL.delete)
	assert.Contains(t, postgresQuestSQL.insert, "VALUES ($1, $2, $3, $4)")
	assert.Contains(t, sqliteQuestSQL.load, "WHERE character_id = ? ORDER BY quest_name, variable")
}

func TestQuestVarRecords(t *testing.T) {
	got := questVarRecords(7, "Q00001_LettersOfLove", map[string]string{
		"cond":    "2",
		"<state>": "Started",
		"asked":   "true",
	})

	// Порядок по имени переменной
	assert.Equal(t, [][]any{
		{int64(7), "Q00001_LettersOfLove", "<state>", "Started"},
		{int64(7), "Q00001_LettersOfLove", "asked", "true"},
		{int64(7), "Q00001_LettersOfLove", "cond", "2"},
	}, got)
	assert.Empty(t, questVarRecords(7, "empty", nil))
}
