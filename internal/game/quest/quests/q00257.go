package quests

import "github.com/udisondev/l2quest/internal/game/quest"

// NewQ00257 creates "The Guard is Busy" quest.
// Level 6+, any race, repeatable. Kill orcs/werewolves near Gludio, turn in drops for adena.
func NewQ00257() *quest.Quest {
	const (
		questID   int32 = 257
		questName       = "Q00257_TheGuardIsBusy"
		minLevel  int32 = 6

		gilbert int32 = 30039

		orcAmulet    int32 = 752
		orcNecklace  int32 = 1085
		werewolfFang int32 = 1086
	)

	type drop struct {
		itemID int32
		chance int
	}
	monsters := map[int32]drop{
		20006: {orcAmulet, percent(50)},    // Orc Archer
		20130: {orcAmulet, percent(50)},    // Orc
		20131: {orcAmulet, percent(50)},    // Orc Grunt
		20093: {orcNecklace, percent(50)},  // Orc Fighter
		20096: {orcNecklace, percent(50)},  // Orc Fighter Sub Leader
		20098: {orcNecklace, percent(50)},  // Orc Fighter Leader
		20342: {werewolfFang, percent(20)}, // Werewolf Chieftain
		20343: {werewolfFang, percent(40)}, // Werewolf Hunter
		20132: {werewolfFang, percent(50)}, // Werewolf
	}

	q := quest.NewQuest(questID, questName)
	q.SetDescription("The Guard is Busy")
	q.AddStartNpc(gilbert)
	q.AddQuestItem(orcAmulet, orcNecklace, werewolfFang)

	q.SetOnAdvEvent(func(e *quest.Event, qs *quest.QuestState) string {
		switch e.Name {
		case "30039-03.htm":
			if !qs.IsCreated() || e.Player.Level() < minLevel {
				return ""
			}
			qs.StartQuest()
			return e.Name
		case "30039-05.htm":
			if !qs.IsStarted() {
				return ""
			}
			return e.Name
		case "30039-06.htm":
			if !qs.IsStarted() {
				return ""
			}
			qs.ExitQuestRepeatable()
			qs.PlaySound(quest.SoundFinish)
			return e.Name
		}
		return ""
	})

	q.AddTalkID(func(e *quest.Event, qs *quest.QuestState) string {
		switch qs.State() {
		case quest.StateCreated:
			if e.Player.Level() < minLevel {
				return "30039-01.htm"
			}
			return "30039-02.htm"

		case quest.StateStarted:
			amulets := qs.GetQuestItemsCount(orcAmulet)
			others := qs.GetQuestItemsCount(orcNecklace, werewolfFang)
			if amulets+others == 0 {
				return "30039-04.htm"
			}

			reward := amulets*10 + others*20
			if amulets+others >= 10 {
				reward += 1000
			}
			qs.TakeItems(orcAmulet, -1)
			qs.TakeItems(orcNecklace, -1)
			qs.TakeItems(werewolfFang, -1)
			qs.GiveAdena(reward)
			return "30039-07.htm"
		}
		return ""
	}, gilbert)

	ids := make([]int32, 0, len(monsters))
	for id := range monsters {
		ids = append(ids, id)
	}
	q.AddKillID(func(e *quest.Event, qs *quest.QuestState) string {
		if !qs.IsStarted() {
			return ""
		}
		if d, ok := monsters[e.NpcID]; ok {
			qs.DropItemsUncapped(d.itemID, 1, d.chance)
		}
		return ""
	}, ids...)

	return q
}
