package quests

import "github.com/udisondev/l2quest/internal/game/quest"

// NewQ00303 creates "Collect Arrowheads" quest.
// Level 10+, any race, one-time. Collect 10 Orcish Arrowheads from Tunath Orc Marksmen.
func NewQ00303() *quest.Quest {
	const (
		questID   int32 = 303
		questName       = "Q00303_CollectArrowheads"
		minLevel  int32 = 10

		minia             int32 = 30029
		tunathOrcMarksman int32 = 20361

		orcishArrowhead int32 = 963
		required        int64 = 10
	)

	q := quest.NewQuest(questID, questName)
	q.SetDescription("Collect Arrowheads")
	q.AddStartNpc(minia)
	q.AddQuestItem(orcishArrowhead)

	q.SetOnAdvEvent(func(e *quest.Event, qs *quest.QuestState) string {
		if e.Name == "30029-04.htm" && qs.IsCreated() && e.Player.Level() >= minLevel {
			qs.StartQuest()
			return e.Name
		}
		return ""
	})

	q.AddTalkID(func(e *quest.Event, qs *quest.QuestState) string {
		switch qs.State() {
		case quest.StateCreated:
			if e.Player.Level() < minLevel {
				return "30029-02.htm"
			}
			return "30029-03.htm"

		case quest.StateStarted:
			if !qs.IsCond(2) || qs.GetQuestItemsCount(orcishArrowhead) < required {
				return "30029-05.htm"
			}
			qs.GiveAdena(1000)
			qs.RewardExpAndSp(2000, 0)
			qs.ExitQuest(true)
			qs.PlaySound(quest.SoundFinish)
			return "30029-06.htm"

		case quest.StateCompleted:
			return alreadyCompleted
		}
		return ""
	}, minia)

	q.AddKillID(func(e *quest.Event, qs *quest.QuestState) string {
		if qs.IsCond(1) && qs.DropItems(orcishArrowhead, 1, required, percent(40)) {
			qs.SetCond(2)
		}
		return ""
	}, tunathOrcMarksman)

	return q
}
