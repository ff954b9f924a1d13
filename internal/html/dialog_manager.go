package html

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// QuestLink is one entry of the quest choice list shown by multi-quest NPCs.
type QuestLink struct {
	Name        string // quest name used in the bypass
	Description string // title shown to the player
	InProgress  bool
}

// DialogManager resolves NPC and quest dialog HTML.
type DialogManager struct {
	cache *Cache
}

// NewDialogManager creates a new DialogManager backed by the given Cache.
func NewDialogManager(cache *Cache) *DialogManager {
	return &DialogManager{cache: cache}
}

// GetNpcDialog returns rendered HTML for the given NPC.
//
// Resolution order:
//  1. default/<npcID>.htm
//  2. npcdefault.htm
//
// Returns FallbackHTML if nothing found.
func (m *DialogManager) GetNpcDialog(npcID int32, data DialogData) (string, error) {
	defaultPath := "default/" + strconv.FormatInt(int64(npcID), 10) + ".htm"
	if m.cache.Exists(defaultPath) {
		return m.cache.Execute(defaultPath, data)
	}

	if m.cache.Exists("npcdefault.htm") {
		return m.cache.Execute("npcdefault.htm", data)
	}

	return m.FallbackHTML(data), nil
}

// Page renders an arbitrary page by its path under the HTML root
// ("Link merchant/30001-1.htm" bypasses).
func (m *DialogManager) Page(path string, data DialogData) (string, error) {
	if !m.cache.Exists(path) {
		return "", fmt.Errorf("page not found: %s", path)
	}
	return m.cache.Execute(path, data)
}

// QuestPage renders quests/<questName>/<page>.
func (m *DialogManager) QuestPage(questName, page string, data DialogData) (string, error) {
	p := "quests/" + questName + "/" + page
	if !m.cache.Exists(p) {
		return "", fmt.Errorf("quest page not found: %s", p)
	}
	return m.cache.Execute(p, data)
}

// Render turns a quest hook result into HTML.
//
// A result is either a page identifier ("30006-03.htm"), a complete
// "<html>" document, or a plain message. Missing pages render the fallback
// dialog. An empty result renders nothing.
func (m *DialogManager) Render(questName, result string, data DialogData) string {
	switch {
	case result == "":
		return ""
	case isRawHTML(result):
		return result
	case isPageID(result):
		out, err := m.QuestPage(questName, result, data)
		if err != nil {
			slog.Warn("quest dialog not rendered",
				"questName", questName,
				"page", result,
				"error", err)
			return m.FallbackHTML(data)
		}
		return out
	default:
		return "<html><body>" + result + "</body></html>"
	}
}

func isRawHTML(s string) bool {
	return len(s) >= 6 && strings.EqualFold(s[:6], "<html>")
}

func isPageID(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasSuffix(lower, ".htm") || strings.HasSuffix(lower, ".html")
}

// QuestListHTML lists the quests an NPC offers, each linking to
// "npc_<objectID>_Quest <name>".
func (m *DialogManager) QuestListHTML(npcObjectID uint32, quests []QuestLink) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for _, q := range quests {
		title := q.Description
		if title == "" {
			title = q.Name
		}
		if q.InProgress {
			title += " (In Progress)"
		}
		fmt.Fprintf(&sb, `<a action="bypass -h npc_%d_Quest %s">%s</a><br>`, npcObjectID, q.Name, title)
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

// NoQuestHTML is shown when no quest of the NPC answers the player.
func (m *DialogManager) NoQuestHTML() string {
	return "<html><body>You are either not on a quest that involves this NPC, " +
		"or you don't meet this NPC's minimum quest requirements.</body></html>"
}

// FallbackHTML returns a hardcoded fallback dialog when no template is found.
func (m *DialogManager) FallbackHTML(data DialogData) string {
	name, _ := data["npcname"].(string)
	if name == "" {
		name = "NPC"
	}
	return "<html><body>" + name + ":<br>I have nothing to say to you.<br></body></html>"
}
