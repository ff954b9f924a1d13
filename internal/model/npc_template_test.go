package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNpc(t *testing.T) {
	tmpl := NewNpcTemplate(30006, "Minion Lukas", "Trader", 30)
	npc := NewNpc(5001, tmpl)

	assert.Equal(t, uint32(5001), npc.ObjectID())
	assert.Equal(t, int32(30006), npc.TemplateID())
	assert.Equal(t, "Minion Lukas", npc.Name())
	assert.Equal(t, "Trader", npc.Template().Title())
	assert.Equal(t, int32(30), npc.Template().Level())
}
