package quest

import (
	"context"
	"testing"
)

// TestSmokeQuest_CollectArrowheads проверяет полный жизненный цикл квеста.
// Q00303: Minion Lukas просит собрать 10 Orc Arrowheads.
// NPC 30006 = Minion Lukas (start/complete)
// NPC 20006 = Orc Archers (kill target, drops Arrowhead item 963)
func TestSmokeQuest_CollectArrowheads(t *testing.T) {
	const (
		questID       int32 = 303
		questName           = "Q00303_CollectArrowheads"
		npcLukasID    int32 = 30006
		orcArcherID   int32 = 20006
		arrowheadItem int32 = 963
		requiredCount int64 = 10
	)

	// 1. Создаём квест
	q := NewQuest(questID, questName)
	q.AddStartNpc(npcLukasID)
	q.AddQuestItem(arrowheadItem)

	q.AddTalkID(func(e *Event, qs *QuestState) string {
		switch qs.State() {
		case StateCreated:
			return "30006-01.htm"
		case StateStarted:
			if qs.IsCond(2) {
				qs.GiveAdena(1000)
				qs.RewardExpAndSp(500, 50)
				qs.PlaySound(SoundFinish)
				qs.ExitQuest(true)
				return "30006-05.htm"
			}
			return "30006-04.htm"
		case StateCompleted:
			return "30006-06.htm"
		}
		return ""
	}, npcLukasID)

	q.SetOnAdvEvent(func(e *Event, qs *QuestState) string {
		if e.Name == "30006-03.htm" && qs.IsCreated() {
			qs.StartQuest()
			return e.Name
		}
		return ""
	})

	q.AddKillID(func(e *Event, qs *QuestState) string {
		if !qs.IsCond(1) {
			return ""
		}
		if qs.DropItems(arrowheadItem, 1, requiredCount, 400_000) {
			qs.SetCond(2)
		}
		return ""
	}, orcArcherID)

	// 2. Регистрируем квест
	repo := newMockRepo()
	b := NewRegistryBuilder()
	if err := b.Add(q); err != nil {
		t.Fatalf("Add: %v", err)
	}
	m := NewManager(b.Build(), repo, WithSource(&seqSource{draws: []int{900_000, 100_000}}))
	defer m.Shutdown()

	player := newFakePlayer(1001)
	online(t, m, player)
	ctx := context.Background()
	talk := &Event{Type: EventTalk, Player: player, NpcID: npcLukasID}
	kill := &Event{Type: EventKill, Player: player, NpcID: orcArcherID}

	// 3. Первый разговор: предложение квеста
	if res := m.Dispatch(ctx, talk); res.Page != "30006-01.htm" {
		t.Errorf("talk (created) = %q, want 30006-01.htm", res.Page)
	}

	// Убийство до принятия квеста ничего не даёт
	m.Dispatch(ctx, kill)
	if player.ItemCount(arrowheadItem) != 0 {
		t.Error("kill before accepting should not drop")
	}

	// 4. Принимаем
	accept := &Event{Type: EventAdvance, Player: player, NpcID: npcLukasID, Name: "30006-03.htm", QuestName: questName}
	if res := m.Dispatch(ctx, accept); res.Page != "30006-03.htm" {
		t.Errorf("accept = %q, want 30006-03.htm", res.Page)
	}
	if res := m.Dispatch(ctx, talk); res.Page != "30006-04.htm" {
		t.Errorf("talk (in progress) = %q, want 30006-04.htm", res.Page)
	}

	// 5. Первый бросок промахивается, дальше выпадает каждый раз
	kills := 0
	for m.GetQuestState(player.CharacterID(), questName).GetCond() == 1 {
		m.Dispatch(ctx, kill)
		kills++
		if kills > 20 {
			t.Fatal("quest never reached cond 2")
		}
	}
	if kills != 11 {
		t.Errorf("kills to reach quota = %d, want 11", kills)
	}
	if player.ItemCount(arrowheadItem) != requiredCount {
		t.Errorf("arrowheads = %d, want %d", player.ItemCount(arrowheadItem), requiredCount)
	}
	if player.lastSound() != string(SoundMiddle) {
		t.Errorf("last sound = %q, want %q", player.lastSound(), SoundMiddle)
	}
	if got := repo.savedVars(questName)[VarCond]; got != "2" {
		t.Errorf("persisted cond = %q, want 2", got)
	}

	// 6. Сдаём квест
	if res := m.Dispatch(ctx, talk); res.Page != "30006-05.htm" {
		t.Errorf("talk (turn in) = %q, want 30006-05.htm", res.Page)
	}
	qs := m.GetQuestState(player.CharacterID(), questName)
	if !qs.IsCompleted() {
		t.Error("quest should be completed")
	}
	if player.ItemCount(arrowheadItem) != 0 {
		t.Error("arrowheads should be destroyed on completion")
	}
	if player.ItemCount(ItemAdena) != 1000 || player.exp != 500 || player.sp != 50 {
		t.Errorf("reward = adena %d exp %d sp %d", player.ItemCount(ItemAdena), player.exp, player.sp)
	}
	if got := repo.savedVars(questName)[ReservedVarState]; got != "Completed" {
		t.Errorf("persisted <state> = %q, want Completed", got)
	}

	// 7. Завершённый квест не перезапускается
	if res := m.Dispatch(ctx, accept); !res.Empty() {
		t.Errorf("accept after completion = %q, want empty", res.Page)
	}
	if res := m.Dispatch(ctx, talk); res.Page != "30006-06.htm" {
		t.Errorf("talk (completed) = %q, want 30006-06.htm", res.Page)
	}
	if !qs.IsCompleted() {
		t.Error("completed quest must stay completed")
	}
}

// TestSmokeQuest_AbandonQuest проверяет отмену квеста.
func TestSmokeQuest_AbandonQuest(t *testing.T) {
	q := NewQuest(1, "abandon_test")
	q.AddStartNpc(100)
	q.AddTalkID(func(e *Event, qs *QuestState) string {
		if qs.IsCreated() {
			qs.StartQuest()
			qs.GiveItems(999, 3)
		}
		return "hello"
	}, 100)
	q.AddQuestItem(999)

	m := buildManager(t, nil, q)
	player := newFakePlayer(1001)
	online(t, m, player)
	charID := player.CharacterID()

	m.Dispatch(context.Background(), &Event{Type: EventTalk, Player: player, NpcID: 100})
	if len(m.GetActiveQuests(charID)) != 1 {
		t.Fatal("quest should be active")
	}

	// Отменяем
	if err := m.AbortQuest(context.Background(), player, 1); err != nil {
		t.Fatalf("AbortQuest: %v", err)
	}

	if m.GetQuestState(charID, "abandon_test") != nil {
		t.Error("quest state should be nil after abandon")
	}
	if player.ItemCount(999) != 0 {
		t.Error("quest items should be removed after abandon")
	}

	// Активные квесты должны быть пустыми
	if active := m.GetActiveQuests(charID); len(active) != 0 {
		t.Errorf("active quests = %d, want 0", len(active))
	}
}
