package quests

import "github.com/udisondev/l2quest/internal/game/quest"

// NewQ00162 creates "Curse of the Underground Fortress" quest.
// Level 12+, not for Dark Elves, one-time. Collect 3 Elf Skulls and 10 Bone
// Fragments from the undead of the fortress; both sets must be complete.
func NewQ00162() *quest.Quest {
	const (
		questID   int32 = 162
		questName       = "Q00162_CurseOfTheUndergroundFortress"
		minLevel  int32 = 12

		unoren int32 = 30147

		boneFragment int32 = 1158
		elfSkull     int32 = 1159
		boneShield   int32 = 625

		bonesNeeded  int64 = 10
		skullsNeeded int64 = 3
	)

	// Привидения чаще несут черепа, скелеты чаще кости.
	terrors := []quest.DropRow{
		{ItemID: elfSkull, Count: 1, MaxCount: skullsNeeded, Chance: percent(25)},
		{ItemID: boneFragment, Count: 1, MaxCount: bonesNeeded, Chance: percent(10)},
	}
	skeletons := []quest.DropRow{
		{ItemID: elfSkull, Count: 1, MaxCount: skullsNeeded, Chance: percent(5)},
		{ItemID: boneFragment, Count: 1, MaxCount: bonesNeeded, Chance: percent(25)},
	}
	tables := map[int32][]quest.DropRow{
		20033: terrors,   // Shade Horror
		20345: terrors,   // Dark Terror
		20371: terrors,   // Mist Terror
		20463: skeletons, // Dungeon Skeleton Archer
		20464: skeletons, // Dungeon Skeleton
		20504: skeletons, // Dread Soldier
	}

	q := quest.NewQuest(questID, questName)
	q.SetDescription("Curse of the Underground Fortress")
	q.AddStartNpc(unoren)
	q.AddQuestItem(boneFragment, elfSkull)

	q.SetOnAdvEvent(func(e *quest.Event, qs *quest.QuestState) string {
		if e.Name != "30147-04.htm" || !qs.IsCreated() {
			return ""
		}
		if e.Player.RaceID() == RaceDarkElf || e.Player.Level() < minLevel {
			return ""
		}
		qs.StartQuest()
		return e.Name
	})

	q.AddTalkID(func(e *quest.Event, qs *quest.QuestState) string {
		switch qs.State() {
		case quest.StateCreated:
			switch {
			case e.Player.RaceID() == RaceDarkElf:
				return "30147-00.htm"
			case e.Player.Level() < minLevel:
				return "30147-01.htm"
			}
			return "30147-02.htm"

		case quest.StateStarted:
			if !qs.IsCond(2) {
				return "30147-05.htm"
			}
			qs.RewardItems(boneShield, 1)
			qs.GiveAdena(24000)
			qs.RewardExpAndSp(22652, 1004)
			qs.ExitQuest(true)
			qs.PlaySound(quest.SoundFinish)
			return "30147-06.htm"

		case quest.StateCompleted:
			return alreadyCompleted
		}
		return ""
	}, unoren)

	ids := make([]int32, 0, len(tables))
	for id := range tables {
		ids = append(ids, id)
	}
	q.AddKillID(func(e *quest.Event, qs *quest.QuestState) string {
		if !qs.IsCond(1) {
			return ""
		}
		if qs.DropMultipleItems(tables[e.NpcID]) {
			qs.SetCond(2)
		}
		return ""
	}, ids...)

	return q
}
