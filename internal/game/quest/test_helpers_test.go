package quest

import (
	"context"
	"sync"
	"testing"
)

// fakePlayer implements Player for engine tests.
type fakePlayer struct {
	mu sync.Mutex

	objectID uint32
	charID   int64
	name     string
	level    int32
	raceID   int32
	party    []int64

	items  map[int32]int64
	exp    int64
	sp     int64
	sounds []string
}

func newFakePlayer(charID int64) *fakePlayer {
	return &fakePlayer{
		objectID: uint32(charID) + 10000,
		charID:   charID,
		name:     "TestPlayer",
		level:    20,
		items:    make(map[int32]int64),
	}
}

func (p *fakePlayer) ObjectID() uint32        { return p.objectID }
func (p *fakePlayer) CharacterID() int64      { return p.charID }
func (p *fakePlayer) Name() string            { return p.name }
func (p *fakePlayer) Level() int32            { return p.level }
func (p *fakePlayer) RaceID() int32           { return p.raceID }
func (p *fakePlayer) ClassID() int32          { return 0 }
func (p *fakePlayer) ClassTier() int32        { return 0 }
func (p *fakePlayer) Karma() int32            { return 0 }
func (p *fakePlayer) IsNoble() bool           { return false }
func (p *fakePlayer) ClanID() int32           { return 0 }
func (p *fakePlayer) ClanLevel() int32        { return 0 }
func (p *fakePlayer) IsClanLeader() bool      { return false }
func (p *fakePlayer) PartyMemberIDs() []int64 { return p.party }

func (p *fakePlayer) ItemCount(itemID int32) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.items[itemID]
}

func (p *fakePlayer) AddItem(itemID int32, count int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items[itemID] += count
}

func (p *fakePlayer) DestroyItem(itemID int32, count int64) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	held := p.items[itemID]
	if count < 0 || count > held {
		count = held
	}
	p.items[itemID] = held - count
	if p.items[itemID] == 0 {
		delete(p.items, itemID)
	}
	return count
}

func (p *fakePlayer) AddExpAndSp(exp, sp int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exp += exp
	p.sp += sp
}

func (p *fakePlayer) PlaySound(file string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sounds = append(p.sounds, file)
}

func (p *fakePlayer) lastSound() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.sounds) == 0 {
		return ""
	}
	return p.sounds[len(p.sounds)-1]
}

// seqSource replays fixed draws, then repeats the last one.
type seqSource struct {
	mu    sync.Mutex
	draws []int
	pos   int
}

func (s *seqSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.draws) == 0 {
		return 0
	}
	v := s.draws[min(s.pos, len(s.draws)-1)]
	s.pos++
	return v % n
}

// newBoundState creates a started state bound to a fresh fake player.
func newBoundState(t *testing.T, q *Quest, draws ...int) (*QuestState, *fakePlayer) {
	t.Helper()
	p := newFakePlayer(1001)
	qs := NewQuestState(q, p.CharacterID(), StateStarted)
	e := &env{rng: &seqSource{draws: draws}, rates: DefaultRates()}
	qs.attach(p, e)
	return qs, p
}

// buildManager registers quests and creates a manager without persistence.
func buildManager(t *testing.T, opts []Option, quests ...*Quest) *Manager {
	t.Helper()
	b := NewRegistryBuilder()
	for _, q := range quests {
		if err := b.Add(q); err != nil {
			t.Fatalf("Add(%s): %v", q.Name(), err)
		}
	}
	m := NewManager(b.Build(), nil, opts...)
	t.Cleanup(m.Shutdown)
	return m
}

// online loads a player into the manager.
func online(t *testing.T, m *Manager, p Player) {
	t.Helper()
	if err := m.LoadPlayer(context.Background(), p); err != nil {
		t.Fatalf("LoadPlayer: %v", err)
	}
}
