package quests

import "github.com/udisondev/l2quest/internal/game/quest"

// NewQ00629 creates "Clean Up the Swamp of Screams" quest.
// Level 66+, any race, repeatable party quest. Stakato talons drop to a random
// party member on the quest; 100 talons are exchanged for 20 Golden Ram Coins.
func NewQ00629() *quest.Quest {
	const (
		questID   int32 = 629
		questName       = "Q00629_CleanUpTheSwampOfScreams"
		minLevel  int32 = 66

		pierce int32 = 31553

		talonOfStakato int32 = 7250
		goldenRamCoin  int32 = 7251

		talonsPerExchange int64 = 100
		coinsPerExchange  int64 = 20
	)

	chances := map[int32]int{
		21508: 599_000, // Splinter Stakato
		21509: 524_000, // Splinter Stakato Worker
		21510: 640_000, // Splinter Stakato Soldier
		21511: 830_000, // Splinter Stakato Drone
		21512: 974_000, // Splinter Stakato Drone (Queen's guard)
		21513: 682_000, // Needle Stakato
		21514: 595_000, // Needle Stakato Worker
		21515: 611_000, // Needle Stakato Soldier
		21516: 748_000, // Needle Stakato Drone
		21517: 980_000, // Needle Stakato Drone (Queen's guard)
	}

	q := quest.NewQuest(questID, questName)
	q.SetDescription("Clean Up the Swamp of Screams")
	q.AddStartNpc(pierce)
	q.AddQuestItem(talonOfStakato)

	q.SetOnAdvEvent(func(e *quest.Event, qs *quest.QuestState) string {
		switch e.Name {
		case "31553-03.htm":
			if !qs.IsCreated() || e.Player.Level() < minLevel {
				return ""
			}
			qs.StartQuest()
			return e.Name
		case "31553-07.htm":
			if !qs.IsStarted() {
				return ""
			}
			if qs.GetQuestItemsCount(talonOfStakato) < talonsPerExchange {
				return "31553-06.htm"
			}
			qs.TakeItems(talonOfStakato, talonsPerExchange)
			qs.RewardItems(goldenRamCoin, coinsPerExchange)
			qs.PlaySound(quest.SoundMiddle)
			return e.Name
		case "31553-09.htm":
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
				return "31553-02.htm"
			}
			return "31553-01.htm"
		case quest.StateStarted:
			if qs.GetQuestItemsCount(talonOfStakato) >= talonsPerExchange {
				return "31553-04.htm"
			}
			return "31553-05.htm"
		}
		return ""
	}, pierce)

	ids := make([]int32, 0, len(chances))
	for id := range chances {
		ids = append(ids, id)
	}
	q.AddKillID(func(e *quest.Event, qs *quest.QuestState) string {
		member := qs.RandomPartyMember(1)
		if member == nil {
			return ""
		}
		member.DropItemsUncapped(talonOfStakato, 1, chances[e.NpcID])
		return ""
	}, ids...)

	return q
}
