package quests

import "github.com/udisondev/l2quest/internal/game/quest"

// NewQ00001 creates "Letters of Love" quest.
// Level 2+, any race, one-time. Deliver letters between Darin, Roxxy, and Baulro.
func NewQ00001() *quest.Quest {
	const (
		questID   int32 = 1
		questName       = "Q00001_LettersOfLove"
		minLevel  int32 = 2

		darin  int32 = 30048
		roxxy  int32 = 30006
		baulro int32 = 30033

		darinLetter  int32 = 687
		roxxyKerch   int32 = 688
		darinReceipt int32 = 1079
		baulroPotion int32 = 1080

		rewardNecklace int32 = 906
	)

	q := quest.NewQuest(questID, questName)
	q.SetDescription("Letters of Love")
	q.AddStartNpc(darin)
	q.AddQuestItem(darinLetter, roxxyKerch, darinReceipt, baulroPotion)

	q.SetOnAdvEvent(func(e *quest.Event, qs *quest.QuestState) string {
		switch e.Name {
		case "30048-06.htm":
			if !qs.IsCreated() || e.Player.Level() < minLevel {
				return ""
			}
			qs.StartQuest()
			qs.GiveItems(darinLetter, 1)
			return e.Name
		}
		return ""
	})

	// Darin: start + cond transitions
	q.AddTalkID(func(e *quest.Event, qs *quest.QuestState) string {
		switch qs.State() {
		case quest.StateCreated:
			if e.Player.Level() < minLevel {
				return "30048-01.htm"
			}
			return "30048-02.htm"

		case quest.StateStarted:
			switch qs.GetCond() {
			case 1:
				return "30048-07.htm"
			case 2:
				// Платок от Roxxy
				if !qs.HasQuestItems(roxxyKerch) {
					return "30048-07.htm"
				}
				qs.TakeItems(roxxyKerch, -1)
				qs.GiveItems(darinReceipt, 1)
				qs.SetCond(3)
				qs.PlaySound(quest.SoundMiddle)
				return "30048-08.htm"
			case 3:
				return "30048-09.htm"
			case 4:
				if !qs.HasQuestItems(baulroPotion) {
					return "30048-09.htm"
				}
				qs.RewardItems(rewardNecklace, 1)
				qs.RewardExpAndSp(5672, 446)
				qs.ExitQuest(true)
				qs.PlaySound(quest.SoundFinish)
				return "30048-10.htm"
			}

		case quest.StateCompleted:
			return alreadyCompleted
		}
		return ""
	}, darin)

	// Roxxy: give kerchief
	q.AddTalkID(func(e *quest.Event, qs *quest.QuestState) string {
		switch {
		case qs.IsCond(1) && qs.HasQuestItems(darinLetter):
			qs.TakeItems(darinLetter, -1)
			qs.GiveItems(roxxyKerch, 1)
			qs.SetCond(2)
			qs.PlaySound(quest.SoundMiddle)
			return "30006-01.htm"
		case qs.IsStarted() && qs.GetCond() >= 2:
			return "30006-02.htm"
		}
		return ""
	}, roxxy)

	// Baulro: give potion
	q.AddTalkID(func(e *quest.Event, qs *quest.QuestState) string {
		switch {
		case qs.IsCond(3) && qs.HasQuestItems(darinReceipt):
			qs.TakeItems(darinReceipt, -1)
			qs.GiveItems(baulroPotion, 1)
			qs.SetCond(4)
			qs.PlaySound(quest.SoundMiddle)
			return "30033-01.htm"
		case qs.IsCond(4):
			return "30033-02.htm"
		}
		return ""
	}, baulro)

	return q
}
