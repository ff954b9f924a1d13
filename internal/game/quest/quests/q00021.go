package quests

import (
	"time"

	"github.com/udisondev/l2quest/internal/game/quest"
)

// NewQ00021 creates "Hidden Truth" quest.
// Level 63+, any race, one-time. Enter the crypt, call the ghost of von
// Hellmann at his tombstone and speak with it before it fades away.
func NewQ00021() *quest.Quest {
	const (
		questID   int32 = 21
		questName       = "Q00021_HiddenTruth"
		minLevel  int32 = 63

		mysteriousWizard int32 = 31522
		tombstone        int32 = 31523
		ghostOfHellmann  int32 = 31524

		cryptZone int32 = 21

		crossOfEinhasad int32 = 7140

		ghostTimer    = "ghost_leaves"
		ghostLifetime = 2 * time.Minute
	)

	q := quest.NewQuest(questID, questName)
	q.SetDescription("Hidden Truth")
	q.AddStartNpc(mysteriousWizard)

	q.SetOnAdvEvent(func(e *quest.Event, qs *quest.QuestState) string {
		switch e.Name {
		case "31522-02.htm":
			if !qs.IsCreated() || e.Player.Level() < minLevel {
				return ""
			}
			qs.StartQuest()
			return e.Name
		case ghostTimer:
			// Призрак ушёл: нужно снова позвать его у надгробия
			if qs.IsCond(3) {
				qs.SetCond(2)
			}
			return ""
		}
		return ""
	})

	q.AddTalkID(func(e *quest.Event, qs *quest.QuestState) string {
		switch qs.State() {
		case quest.StateCreated:
			if e.Player.Level() < minLevel {
				return "31522-03.htm"
			}
			return "31522-01.htm"
		case quest.StateStarted:
			return "31522-05.htm"
		case quest.StateCompleted:
			return alreadyCompleted
		}
		return ""
	}, mysteriousWizard)

	q.AddEnterZoneID(func(e *quest.Event, qs *quest.QuestState) string {
		if qs.IsCond(1) {
			qs.SetCond(2)
			qs.PlaySound(quest.SoundMiddle)
		}
		return ""
	}, cryptZone)

	q.AddExitZoneID(func(e *quest.Event, qs *quest.QuestState) string {
		switch {
		case qs.IsCond(3):
			qs.CancelQuestTimer(ghostTimer)
			qs.SetCond(1)
		case qs.IsCond(2):
			qs.SetCond(1)
		}
		return ""
	}, cryptZone)

	// Надгробие: первый клик вызывает призрака, иначе обычный диалог.
	q.AddFirstTalkID(func(e *quest.Event, qs *quest.QuestState) string {
		if !qs.IsCond(2) {
			return ""
		}
		qs.SetCond(3)
		qs.StartQuestTimer(ghostTimer, ghostLifetime, e.TargetID)
		return "31523-01.htm"
	}, tombstone)

	q.AddTalkID(func(e *quest.Event, qs *quest.QuestState) string {
		switch {
		case qs.IsCond(3):
			qs.CancelQuestTimer(ghostTimer)
			qs.RewardItems(crossOfEinhasad, 1)
			qs.RewardExpAndSp(131228, 11978)
			qs.ExitQuest(false)
			qs.PlaySound(quest.SoundFinish)
			return "31524-01.htm"
		case qs.IsCompleted():
			return "31524-02.htm"
		}
		return ""
	}, ghostOfHellmann)

	return q
}
