package quest

import (
	"slices"
	"testing"
)

func TestNewQuest(t *testing.T) {
	q := NewQuest(303, "Q00303_CollectArrowheads")

	if q.ID() != 303 {
		t.Errorf("ID() = %d, want 303", q.ID())
	}
	if q.Name() != "Q00303_CollectArrowheads" {
		t.Errorf("Name() = %q, want Q00303_CollectArrowheads", q.Name())
	}
	if q.Description() != "" {
		t.Errorf("Description() = %q, want empty", q.Description())
	}

	q.SetDescription("Collect Arrowheads")
	if q.Description() != "Collect Arrowheads" {
		t.Errorf("Description() = %q, want Collect Arrowheads", q.Description())
	}
}

func TestQuest_AddHooks(t *testing.T) {
	q := NewQuest(1, "test_quest")

	talkCalled := false
	killCalled := false

	q.AddTalkID(func(e *Event, qs *QuestState) string {
		talkCalled = true
		return "talk_response"
	}, 30006)
	q.AddKillID(func(e *Event, qs *QuestState) string {
		killCalled = true
		return "kill_response"
	}, 20001)

	// Проверяем наличие хуков
	if !q.HasHook(EventTalk, 30006) {
		t.Error("expected talk hook for NPC 30006")
	}
	if !q.HasHook(EventKill, 20001) {
		t.Error("expected kill hook for NPC 20001")
	}
	if q.HasHook(EventTalk, 99999) {
		t.Error("unexpected talk hook for NPC 99999")
	}
	if q.HasHook(EventFirstTalk, 30006) {
		t.Error("unexpected first talk hook for NPC 30006")
	}

	// Вызываем хуки
	qs := NewQuestState(q, 100, StateStarted)

	hook := q.GetHook(EventTalk, 30006)
	if hook == nil {
		t.Fatal("GetHook returned nil for registered talk hook")
	}
	if got := hook(&Event{Type: EventTalk, NpcID: 30006}, qs); got != "talk_response" {
		t.Errorf("talk hook result = %q, want talk_response", got)
	}
	if !talkCalled {
		t.Error("talk hook was not called")
	}

	hook = q.GetHook(EventKill, 20001)
	if hook == nil {
		t.Fatal("GetHook returned nil for registered kill hook")
	}
	if got := hook(&Event{Type: EventKill, NpcID: 20001}, qs); got != "kill_response" {
		t.Errorf("kill hook result = %q, want kill_response", got)
	}
	if !killCalled {
		t.Error("kill hook was not called")
	}

	if q.GetHook(EventKill, 99999) != nil {
		t.Error("GetHook for unregistered NPC should return nil")
	}
}

func TestQuest_OneHookManyNPCs(t *testing.T) {
	q := NewQuest(1, "test_quest")
	noop := func(*Event, *QuestState) string { return "" }

	q.AddKillID(noop, 20001, 20002, 20003)

	for _, id := range []int32{20001, 20002, 20003} {
		if !q.HasHook(EventKill, id) {
			t.Errorf("expected kill hook for NPC %d", id)
		}
	}

	got := q.registeredKeys(EventKill)
	want := []int32{20001, 20002, 20003}
	if !slices.Equal(got, want) {
		t.Errorf("registeredKeys(kill) = %v, want %v", got, want)
	}
}

func TestQuest_StartNpcs(t *testing.T) {
	q := NewQuest(1, "test_quest")
	q.AddStartNpc(30001, 30002)

	if !q.IsStartNpc(30001) || !q.IsStartNpc(30002) {
		t.Error("expected 30001 and 30002 to be start NPCs")
	}
	if q.IsStartNpc(30003) {
		t.Error("30003 should not be a start NPC")
	}
	if len(q.StartNpcs()) != 2 {
		t.Errorf("len(StartNpcs()) = %d, want 2", len(q.StartNpcs()))
	}
}

func TestQuest_QuestItems(t *testing.T) {
	q := NewQuest(1, "test_quest")
	q.AddQuestItem(1000, 1001)
	q.AddQuestItem(1002)

	items := q.QuestItems()
	if len(items) != 3 {
		t.Fatalf("len(QuestItems()) = %d, want 3", len(items))
	}
	if !q.IsQuestItem(1001) {
		t.Error("1001 should be a quest item")
	}
	if q.IsQuestItem(57) {
		t.Error("adena should not be a quest item")
	}
}

func TestQuest_AllEventTypes(t *testing.T) {
	q := NewQuest(1, "test_quest")
	noop := func(*Event, *QuestState) string { return "" }

	q.AddTalkID(noop, 1)
	q.AddFirstTalkID(noop, 2)
	q.AddKillID(noop, 3)
	q.AddEnterZoneID(noop, 4)
	q.AddExitZoneID(noop, 5)
	q.SetOnAdvEvent(noop)

	tests := []struct {
		eventType EventType
		key       int32
	}{
		{EventTalk, 1},
		{EventFirstTalk, 2},
		{EventKill, 3},
		{EventEnterZone, 4},
		{EventExitZone, 5},
		{EventAdvance, 0},
	}

	for _, tt := range tests {
		t.Run(tt.eventType.String(), func(t *testing.T) {
			if !q.HasHook(tt.eventType, tt.key) {
				t.Errorf("expected hook for %s key %d", tt.eventType, tt.key)
			}
		})
	}
}

func TestEventType_String(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      string
	}{
		{EventTalk, "talk"},
		{EventFirstTalk, "first_talk"},
		{EventAdvance, "advance"},
		{EventKill, "kill"},
		{EventEnterZone, "enter_zone"},
		{EventExitZone, "exit_zone"},
	}
	for _, tt := range tests {
		if got := tt.eventType.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.eventType, got, tt.want)
		}
	}
}
