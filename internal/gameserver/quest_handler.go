package gameserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/l2quest/internal/game/quest"
	"github.com/udisondev/l2quest/internal/html"
	"github.com/udisondev/l2quest/internal/model"
)

// JournalEntry is one line of the player's quest journal.
type JournalEntry struct {
	QuestID     int32
	QuestName   string
	Description string
	Cond        int
}

// Talk handles a click on an NPC. First-talk hooks may replace the NPC's
// default dialog; otherwise the default dialog is shown.
func (h *Host) Talk(ctx context.Context, player *model.Player, npc *model.Npc) string {
	res := h.quests.Dispatch(ctx, &quest.Event{
		Type:     quest.EventFirstTalk,
		Player:   player,
		NpcID:    npc.TemplateID(),
		TargetID: npc.ObjectID(),
	})
	data := dialogData(player, npc)
	if !res.Empty() {
		return h.send(player, npc, h.dialogs.Render(res.Quest.Name(), res.Page, data))
	}

	content, err := h.dialogs.GetNpcDialog(npc.TemplateID(), data)
	if err != nil {
		slog.Warn("npc dialog not rendered",
			"npcID", npc.TemplateID(),
			"error", err)
		content = h.dialogs.FallbackHTML(data)
	}
	return h.send(player, npc, content)
}

// QuestTalk handles the "Quest" link of an NPC dialog. With an empty quest name
// a single quest is talked to directly and several quests are offered as a list.
func (h *Host) QuestTalk(ctx context.Context, player *model.Player, npc *model.Npc, questName string) string {
	if questName == "" {
		quests := h.quests.GetQuestsForNPC(npc.TemplateID())
		switch len(quests) {
		case 0:
			return h.send(player, npc, h.dialogs.NoQuestHTML())
		case 1:
			questName = quests[0].Name()
		default:
			return h.send(player, npc, h.dialogs.QuestListHTML(npc.ObjectID(), h.questLinks(player, quests)))
		}
	}

	res := h.quests.Dispatch(ctx, &quest.Event{
		Type:      quest.EventTalk,
		Player:    player,
		NpcID:     npc.TemplateID(),
		TargetID:  npc.ObjectID(),
		QuestName: questName,
	})
	if res.Empty() {
		return h.send(player, npc, h.dialogs.NoQuestHTML())
	}
	return h.send(player, npc, h.dialogs.Render(res.Quest.Name(), res.Page, dialogData(player, npc)))
}

func (h *Host) questLinks(player *model.Player, quests []*quest.Quest) []html.QuestLink {
	links := make([]html.QuestLink, 0, len(quests))
	for _, q := range quests {
		qs := h.quests.GetQuestState(player.CharacterID(), q.Name())
		links = append(links, html.QuestLink{
			Name:        q.Name(),
			Description: q.Description(),
			InProgress:  qs != nil && qs.IsStarted(),
		})
	}
	return links
}

// QuestEvent fires a dialog event token of a quest at an NPC.
func (h *Host) QuestEvent(ctx context.Context, player *model.Player, npc *model.Npc, questName, event string) string {
	res := h.quests.Dispatch(ctx, &quest.Event{
		Type:      quest.EventAdvance,
		Player:    player,
		NpcID:     npc.TemplateID(),
		TargetID:  npc.ObjectID(),
		Name:      event,
		QuestName: questName,
	})
	if res.Empty() {
		return ""
	}
	return h.send(player, npc, h.dialogs.Render(res.Quest.Name(), res.Page, dialogData(player, npc)))
}

// Bypass routes an NPC dialog link ("npc_<objectID>_<command> [args]").
func (h *Host) Bypass(ctx context.Context, player *model.Player, bypass string) (string, error) {
	cmd, err := html.ParseNpcBypass(bypass)
	if err != nil {
		return "", fmt.Errorf("bypass from %s: %w", player.Name(), err)
	}
	npc, ok := h.Npc(cmd.ObjectID)
	if !ok {
		return "", fmt.Errorf("bypass %q: npc %d: %w", bypass, cmd.ObjectID, ErrUnknownNpc)
	}

	switch cmd.Command {
	case "Quest":
		qb, err := html.ParseQuestBypass(bypass)
		if err != nil {
			return "", err
		}
		if qb.Event == "" {
			return h.QuestTalk(ctx, player, npc, qb.QuestName), nil
		}
		return h.QuestEvent(ctx, player, npc, qb.QuestName, qb.Event), nil

	case "Link":
		if len(cmd.Args) == 0 {
			return "", fmt.Errorf("bypass %q: link without page", bypass)
		}
		data := dialogData(player, npc)
		content, err := h.dialogs.Page(cmd.Args[0], data)
		if err != nil {
			slog.Warn("link page not rendered",
				"page", cmd.Args[0],
				"error", err)
			content = h.dialogs.FallbackHTML(data)
		}
		return h.send(player, npc, content), nil

	default: // Chat
		return h.Talk(ctx, player, npc), nil
	}
}

// Kill notifies quests that killer (or its pet) killed npc.
func (h *Host) Kill(ctx context.Context, killer *model.Player, npc *model.Npc, isPet bool) string {
	res := h.quests.Dispatch(ctx, &quest.Event{
		Type:     quest.EventKill,
		Player:   killer,
		NpcID:    npc.TemplateID(),
		TargetID: npc.ObjectID(),
		IsPet:    isPet,
	})
	if res.Empty() {
		return ""
	}
	return h.send(killer, npc, h.dialogs.Render(res.Quest.Name(), res.Page, dialogData(killer, npc)))
}

// EnterZone notifies quests that the player entered a zone.
func (h *Host) EnterZone(ctx context.Context, player *model.Player, zoneID int32) string {
	return h.zoneEvent(ctx, quest.EventEnterZone, player, zoneID)
}

// ExitZone notifies quests that the player left a zone.
func (h *Host) ExitZone(ctx context.Context, player *model.Player, zoneID int32) string {
	return h.zoneEvent(ctx, quest.EventExitZone, player, zoneID)
}

func (h *Host) zoneEvent(ctx context.Context, et quest.EventType, player *model.Player, zoneID int32) string {
	res := h.quests.Dispatch(ctx, &quest.Event{
		Type:   et,
		Player: player,
		ZoneID: zoneID,
	})
	if res.Empty() {
		return ""
	}
	return h.send(player, nil, h.dialogs.Render(res.Quest.Name(), res.Page, dialogData(player, nil)))
}

// AbortQuest abandons a quest from the journal.
func (h *Host) AbortQuest(ctx context.Context, player *model.Player, questID int32) error {
	if err := h.quests.AbortQuest(ctx, player, questID); err != nil {
		return fmt.Errorf("abort quest %d for %s: %w", questID, player.Name(), err)
	}

	slog.Info("quest aborted",
		"questID", questID,
		"character", player.Name())
	return nil
}

// QuestJournal lists the player's quests in progress, ordered by quest ID.
func (h *Host) QuestJournal(player *model.Player) []JournalEntry {
	active := h.quests.GetActiveQuests(player.CharacterID())
	if len(active) == 0 {
		return nil
	}

	entries := make([]JournalEntry, 0, len(active))
	for _, qs := range active {
		entries = append(entries, JournalEntry{
			QuestID:     qs.QuestID(),
			QuestName:   qs.QuestName(),
			Description: qs.Quest().Description(),
			Cond:        qs.GetCond(),
		})
	}
	return entries
}
