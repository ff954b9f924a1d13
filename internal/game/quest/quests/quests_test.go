package quests

import (
	"context"
	"errors"
	"testing"

	"github.com/udisondev/l2quest/internal/game/quest"
	"github.com/udisondev/l2quest/internal/model"
)

// fixedSource always draws v (mod n): 0 hits every chance and picks the first
// party member, quest.ChanceScale-1 misses every chance below 100%.
type fixedSource struct{ v int }

func (s fixedSource) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return s.v % n
}

var (
	alwaysHit = fixedSource{v: 0}
	neverHit  = fixedSource{v: quest.ChanceScale - 1}
)

// testPlayer creates a player with given params for quest tests.
func testPlayer(t *testing.T, charID int64, level int32, raceID int32) *model.Player {
	t.Helper()
	p, err := model.NewPlayer(uint32(charID), charID, "Tester", level, raceID, 0)
	if err != nil {
		t.Fatalf("creating test player: %v", err)
	}
	return p
}

// setupQuestManager creates a manager with the given quests and no persistence.
func setupQuestManager(t *testing.T, src quest.Option, quests ...*quest.Quest) *quest.Manager {
	t.Helper()
	b := quest.NewRegistryBuilder()
	for _, q := range quests {
		if err := b.Add(q); err != nil {
			t.Fatalf("Add(%s): %v", q.Name(), err)
		}
	}
	m := quest.NewManager(b.Build(), nil, src)
	t.Cleanup(m.Shutdown)
	return m
}

func login(t *testing.T, m *quest.Manager, p *model.Player) {
	t.Helper()
	if err := m.LoadPlayer(context.Background(), p); err != nil {
		t.Fatalf("LoadPlayer: %v", err)
	}
}

func talk(m *quest.Manager, p *model.Player, npcID int32) string {
	return m.Dispatch(context.Background(), &quest.Event{
		Type:     quest.EventTalk,
		Player:   p,
		NpcID:    npcID,
		TargetID: 100,
	}).Page
}

func advance(m *quest.Manager, p *model.Player, npcID int32, questName, event string) string {
	return m.Dispatch(context.Background(), &quest.Event{
		Type:      quest.EventAdvance,
		Player:    p,
		NpcID:     npcID,
		TargetID:  100,
		Name:      event,
		QuestName: questName,
	}).Page
}

func kill(m *quest.Manager, p *model.Player, npcID int32, times int) {
	for range times {
		m.Dispatch(context.Background(), &quest.Event{Type: quest.EventKill, Player: p, NpcID: npcID})
	}
}

func expectPage(t *testing.T, step, got, want string) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: page = %q, want %q", step, got, want)
	}
}

func TestRegisterAll(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if got := reg.Count(); got != 6 {
		t.Errorf("Count = %d; want 6", got)
	}
	for _, name := range []string{
		"Q00001_LettersOfLove",
		"Q00021_HiddenTruth",
		"Q00162_CurseOfTheUndergroundFortress",
		"Q00257_TheGuardIsBusy",
		"Q00303_CollectArrowheads",
		"Q00629_CleanUpTheSwampOfScreams",
	} {
		if reg.QuestByName(name) == nil {
			t.Errorf("quest %s not registered", name)
		}
	}
}

func TestRegisterAll_NoDuplicates(t *testing.T) {
	b := quest.NewRegistryBuilder()
	if err := RegisterAll(b); err != nil {
		t.Fatalf("first RegisterAll: %v", err)
	}
	err := RegisterAll(b)
	if !errors.Is(err, quest.ErrDuplicateQuest) {
		t.Fatalf("second RegisterAll error = %v; want ErrDuplicateQuest", err)
	}
}

func TestPercent(t *testing.T) {
	if got := percent(40); got != 400_000 {
		t.Errorf("percent(40) = %d; want 400000", got)
	}
	if got := percent(100); got != quest.ChanceScale {
		t.Errorf("percent(100) = %d; want ChanceScale", got)
	}
}

// --- Q00001: Letters of Love (delivery chain) ---

func TestQ00001_Lifecycle(t *testing.T) {
	q := NewQ00001()
	m := setupQuestManager(t, quest.WithSource(alwaysHit), q)
	player := testPlayer(t, 1, 5, RaceHuman)
	login(t, m, player)

	var sounds []string
	player.SetSoundHandler(func(s string) { sounds = append(sounds, s) })

	expectPage(t, "offer", talk(m, player, 30048), "30048-02.htm")
	expectPage(t, "accept", advance(m, player, 30048, q.Name(), "30048-06.htm"), "30048-06.htm")
	if player.ItemCount(687) != 1 {
		t.Fatalf("Darin's letter = %d; want 1", player.ItemCount(687))
	}

	// Не тот NPC: Baulro молчит на cond 1
	expectPage(t, "baulro early", talk(m, player, 30033), "")

	expectPage(t, "roxxy", talk(m, player, 30006), "30006-01.htm")
	expectPage(t, "darin kerchief", talk(m, player, 30048), "30048-08.htm")
	expectPage(t, "baulro", talk(m, player, 30033), "30033-01.htm")
	expectPage(t, "darin reward", talk(m, player, 30048), "30048-10.htm")

	qs := m.GetQuestState(1, q.Name())
	if qs == nil || !qs.IsCompleted() {
		t.Fatal("quest should be completed")
	}
	if player.ItemCount(906) != 1 {
		t.Errorf("necklace = %d; want 1", player.ItemCount(906))
	}
	for _, id := range q.QuestItems() {
		if n := player.ItemCount(id); n != 0 {
			t.Errorf("quest item %d left in inventory: %d", id, n)
		}
	}
	if player.Experience() != 5672 || player.SP() != 446 {
		t.Errorf("exp/sp = %d/%d; want 5672/446", player.Experience(), player.SP())
	}
	if len(sounds) == 0 || sounds[0] != string(quest.SoundAccept) || sounds[len(sounds)-1] != string(quest.SoundFinish) {
		t.Errorf("sounds = %v; want accept ... finish", sounds)
	}

	expectPage(t, "after completion", talk(m, player, 30048), alreadyCompleted)
}

func TestQ00001_LevelTooLow(t *testing.T) {
	q := NewQ00001()
	m := setupQuestManager(t, quest.WithSource(alwaysHit), q)
	player := testPlayer(t, 1, 1, RaceHuman)
	login(t, m, player)

	expectPage(t, "offer", talk(m, player, 30048), "30048-01.htm")
	expectPage(t, "accept", advance(m, player, 30048, q.Name(), "30048-06.htm"), "")
	if m.GetQuestState(1, q.Name()) != nil {
		t.Error("quest state should not be stored for a refused start")
	}
}

// --- Q00257: The Guard is Busy (repeatable, uncapped drops) ---

func TestQ00257_Lifecycle(t *testing.T) {
	q := NewQ00257()
	m := setupQuestManager(t, quest.WithSource(alwaysHit), q)
	player := testPlayer(t, 1, 6, RaceHuman)
	login(t, m, player)

	expectPage(t, "offer", talk(m, player, 30039), "30039-02.htm")
	expectPage(t, "accept", advance(m, player, 30039, q.Name(), "30039-03.htm"), "30039-03.htm")

	kill(m, player, 20006, 3) // Orc Amulet
	kill(m, player, 20093, 2) // Orc Necklace
	kill(m, player, 20342, 5) // Werewolf Fang

	// 3*10 + 7*20 + бонус 1000 за 10+ трофеев
	expectPage(t, "turn in", talk(m, player, 30039), "30039-07.htm")
	if got := player.Inventory().Adena(); got != 1170 {
		t.Errorf("adena = %d; want 1170", got)
	}
	if n := player.ItemCount(752) + player.ItemCount(1085) + player.ItemCount(1086); n != 0 {
		t.Errorf("trophies left after turn-in: %d", n)
	}

	// Квест продолжается, пока игрок не откажется
	expectPage(t, "nothing to turn in", talk(m, player, 30039), "30039-04.htm")

	kill(m, player, 20132, 2)
	expectPage(t, "quit", advance(m, player, 30039, q.Name(), "30039-06.htm"), "30039-06.htm")
	if m.GetQuestState(1, q.Name()) != nil {
		t.Fatal("repeatable quest record should be dropped on quit")
	}
	if player.ItemCount(1086) != 0 {
		t.Error("quest items should be destroyed on quit")
	}
	expectPage(t, "fresh offer", talk(m, player, 30039), "30039-02.htm")
}

func TestQ00257_NoDropOnMiss(t *testing.T) {
	q := NewQ00257()
	m := setupQuestManager(t, quest.WithSource(neverHit), q)
	player := testPlayer(t, 1, 10, RaceOrc)
	login(t, m, player)

	advance(m, player, 30039, q.Name(), "30039-03.htm")
	kill(m, player, 20006, 20)

	expectPage(t, "turn in", talk(m, player, 30039), "30039-04.htm")
}

// --- Q00303: Collect Arrowheads (capped drop advancing cond) ---

func TestQ00303_QuotaAdvancesCond(t *testing.T) {
	q := NewQ00303()
	m := setupQuestManager(t, quest.WithSource(alwaysHit), q)
	player := testPlayer(t, 1, 12, RaceElf)
	login(t, m, player)

	expectPage(t, "offer", talk(m, player, 30029), "30029-03.htm")
	expectPage(t, "accept", advance(m, player, 30029, q.Name(), "30029-04.htm"), "30029-04.htm")

	kill(m, player, 20361, 9)
	qs := m.GetQuestState(1, q.Name())
	if qs.GetCond() != 1 {
		t.Fatalf("cond after 9 kills = %d; want 1", qs.GetCond())
	}
	expectPage(t, "not yet", talk(m, player, 30029), "30029-05.htm")

	kill(m, player, 20361, 1)
	if qs.GetCond() != 2 {
		t.Fatalf("cond after 10 kills = %d; want 2", qs.GetCond())
	}

	// Квота не превышается
	kill(m, player, 20361, 5)
	if n := player.ItemCount(963); n != 10 {
		t.Fatalf("arrowheads = %d; want 10", n)
	}

	expectPage(t, "reward", talk(m, player, 30029), "30029-06.htm")
	if player.Inventory().Adena() != 1000 {
		t.Errorf("adena = %d; want 1000", player.Inventory().Adena())
	}
	if player.ItemCount(963) != 0 {
		t.Error("arrowheads should be taken on completion")
	}
	if !qs.IsCompleted() {
		t.Error("quest should be completed")
	}
}

// --- Q00162: Curse of the Underground Fortress (multi-item set) ---

func TestQ00162_RaceRestriction(t *testing.T) {
	q := NewQ00162()
	m := setupQuestManager(t, quest.WithSource(alwaysHit), q)
	player := testPlayer(t, 1, 20, RaceDarkElf)
	login(t, m, player)

	expectPage(t, "offer", talk(m, player, 30147), "30147-00.htm")
	expectPage(t, "accept", advance(m, player, 30147, q.Name(), "30147-04.htm"), "")
}

func TestQ00162_SetCompletion(t *testing.T) {
	q := NewQ00162()
	m := setupQuestManager(t, quest.WithSource(alwaysHit), q)
	player := testPlayer(t, 1, 20, RaceDwarf)
	login(t, m, player)

	expectPage(t, "accept", advance(m, player, 30147, q.Name(), "30147-04.htm"), "30147-04.htm")
	qs := m.GetQuestState(1, q.Name())

	// Каждое убийство даёт и череп, и кость; черепа упираются в 3 раньше
	kill(m, player, 20033, 9)
	if player.ItemCount(1159) != 3 || player.ItemCount(1158) != 9 {
		t.Fatalf("skulls/bones = %d/%d; want 3/9", player.ItemCount(1159), player.ItemCount(1158))
	}
	if qs.GetCond() != 1 {
		t.Fatalf("cond = %d before the set is complete; want 1", qs.GetCond())
	}

	kill(m, player, 20464, 1)
	if qs.GetCond() != 2 {
		t.Fatalf("cond = %d after the set is complete; want 2", qs.GetCond())
	}

	expectPage(t, "reward", talk(m, player, 30147), "30147-06.htm")
	if player.ItemCount(625) != 1 {
		t.Error("bone shield not rewarded")
	}
	if player.ItemCount(1158)+player.ItemCount(1159) != 0 {
		t.Error("quest items should be destroyed on completion")
	}
}

// --- Q00629: Clean Up the Swamp of Screams (party drops) ---

func TestQ00629_PartyDrop(t *testing.T) {
	q := NewQ00629()
	m := setupQuestManager(t, quest.WithSource(alwaysHit), q)

	leader := testPlayer(t, 1, 70, RaceHuman)
	second := testPlayer(t, 2, 70, RaceElf)
	outsider := testPlayer(t, 3, 70, RaceOrc)
	party := model.NewParty(1, leader)
	for _, p := range []*model.Player{second, outsider} {
		if err := party.AddMember(p); err != nil {
			t.Fatalf("AddMember: %v", err)
		}
	}
	for _, p := range []*model.Player{leader, second, outsider} {
		login(t, m, p)
	}

	advance(m, leader, 31553, q.Name(), "31553-03.htm")
	advance(m, second, 31553, q.Name(), "31553-03.htm")

	// Убивает участник без квеста: дроп уходит ровно одному из взявших квест
	kill(m, outsider, 21508, 5)
	if outsider.ItemCount(7250) != 0 {
		t.Errorf("outsider got %d talons", outsider.ItemCount(7250))
	}
	if total := leader.ItemCount(7250) + second.ItemCount(7250); total != 5 {
		t.Fatalf("talons across party = %d; want 5", total)
	}
	if m.GetQuestState(3, q.Name()) != nil {
		t.Error("outsider must not get a quest record from a party kill")
	}

	expectPage(t, "exchange short", advance(m, leader, 31553, q.Name(), "31553-07.htm"), "31553-06.htm")

	kill(m, leader, 21517, 95)
	if leader.ItemCount(7250) != 100 {
		t.Fatalf("leader talons = %d; want 100", leader.ItemCount(7250))
	}
	expectPage(t, "ready", talk(m, leader, 31553), "31553-04.htm")
	expectPage(t, "exchange", advance(m, leader, 31553, q.Name(), "31553-07.htm"), "31553-07.htm")
	if leader.ItemCount(7251) != 20 || leader.ItemCount(7250) != 0 {
		t.Errorf("coins/talons = %d/%d; want 20/0", leader.ItemCount(7251), leader.ItemCount(7250))
	}

	expectPage(t, "quit", advance(m, leader, 31553, q.Name(), "31553-09.htm"), "31553-09.htm")
	if m.GetQuestState(1, q.Name()) != nil {
		t.Error("quit should drop the record")
	}
	if leader.ItemCount(7251) != 20 {
		t.Error("coins are not quest items and must survive quitting")
	}
}

func TestQ00629_SoloWithoutQuest(t *testing.T) {
	q := NewQ00629()
	m := setupQuestManager(t, quest.WithSource(alwaysHit), q)
	player := testPlayer(t, 1, 70, RaceHuman)
	login(t, m, player)

	kill(m, player, 21508, 3)
	if player.ItemCount(7250) != 0 {
		t.Error("solo player without the quest should get nothing")
	}
}

// --- Q00021: Hidden Truth (zones, first talk, timer) ---

func setupQ00021(t *testing.T) (*quest.Manager, *model.Player, *quest.Quest) {
	t.Helper()
	q := NewQ00021()
	m := setupQuestManager(t, quest.WithSource(alwaysHit), q)
	player := testPlayer(t, 1, 70, RaceHuman)
	login(t, m, player)

	expectPage(t, "offer", talk(m, player, 31522), "31522-01.htm")
	expectPage(t, "accept", advance(m, player, 31522, q.Name(), "31522-02.htm"), "31522-02.htm")
	return m, player, q
}

func firstTalk(m *quest.Manager, p *model.Player, npcID int32, objID uint32) string {
	return m.Dispatch(context.Background(), &quest.Event{
		Type:     quest.EventFirstTalk,
		Player:   p,
		NpcID:    npcID,
		TargetID: objID,
	}).Page
}

func zone(m *quest.Manager, et quest.EventType, p *model.Player, zoneID int32) {
	m.Dispatch(context.Background(), &quest.Event{Type: et, Player: p, ZoneID: zoneID})
}

func TestQ00021_GhostFlow(t *testing.T) {
	m, player, q := setupQ00021(t)
	qs := m.GetQuestState(1, q.Name())

	// Надгробие до входа в склеп: обычный диалог
	expectPage(t, "tombstone early", firstTalk(m, player, 31523, 5000), "")

	zone(m, quest.EventEnterZone, player, 21)
	if qs.GetCond() != 2 {
		t.Fatalf("cond after entering crypt = %d; want 2", qs.GetCond())
	}

	expectPage(t, "summon", firstTalk(m, player, 31523, 5000), "31523-01.htm")
	if qs.GetCond() != 3 {
		t.Fatalf("cond after summoning = %d; want 3", qs.GetCond())
	}
	tm := m.TimerManager()
	if !tm.HasTimer(q.Name(), "ghost_leaves", player.ObjectID()) {
		t.Fatal("ghost timer should be pending")
	}

	// Срабатывание таймера: призрак исчезает
	advance(m, player, 0, q.Name(), "ghost_leaves")
	if qs.GetCond() != 2 {
		t.Fatalf("cond after ghost left = %d; want 2", qs.GetCond())
	}

	expectPage(t, "summon again", firstTalk(m, player, 31523, 5000), "31523-01.htm")
	expectPage(t, "ghost", talk(m, player, 31524), "31524-01.htm")

	if !qs.IsCompleted() {
		t.Fatal("quest should be completed")
	}
	if tm.HasTimer(q.Name(), "ghost_leaves", player.ObjectID()) {
		t.Error("ghost timer should be cancelled on completion")
	}
	if player.ItemCount(7140) != 1 {
		t.Error("cross of Einhasad not rewarded")
	}
	expectPage(t, "ghost after", talk(m, player, 31524), "31524-02.htm")
}

func TestQ00021_LeavingCryptCancelsGhost(t *testing.T) {
	m, player, q := setupQ00021(t)
	qs := m.GetQuestState(1, q.Name())

	zone(m, quest.EventEnterZone, player, 21)
	firstTalk(m, player, 31523, 5000)
	zone(m, quest.EventExitZone, player, 21)

	if qs.GetCond() != 1 {
		t.Errorf("cond after leaving crypt = %d; want 1", qs.GetCond())
	}
	if m.TimerManager().HasTimer(q.Name(), "ghost_leaves", player.ObjectID()) {
		t.Error("leaving the crypt should cancel the ghost timer")
	}
}

func TestQ00021_ZoneNeedsQuest(t *testing.T) {
	q := NewQ00021()
	m := setupQuestManager(t, quest.WithSource(alwaysHit), q)
	player := testPlayer(t, 1, 70, RaceHuman)
	login(t, m, player)

	zone(m, quest.EventEnterZone, player, 21)
	if m.GetQuestState(1, q.Name()) != nil {
		t.Error("entering a zone must not create a quest record")
	}
}
