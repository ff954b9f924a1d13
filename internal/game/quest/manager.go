package quest

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/udisondev/l2quest/internal/rnd"
)

// QuestRepository defines the interface for quest data persistence.
// Implemented in the db package.
type QuestRepository interface {
	LoadByCharacterID(ctx context.Context, charID int64) ([]QuestVar, error)
	SaveQuestState(ctx context.Context, charID int64, questName string, vars map[string]string) error
	DeleteQuest(ctx context.Context, charID int64, questName string) error
}

// QuestVar represents a single quest variable row from the database.
type QuestVar struct {
	QuestName string
	Variable  string
	Value     string
}

// Result is the outcome of a dispatched event: the page to show and the quest
// that produced it. Page is "" when no handler answered.
type Result struct {
	Quest *Quest
	Page  string
}

// Empty reports whether no handler produced a page.
func (r Result) Empty() bool {
	return r.Page == ""
}

// Option configures a Manager.
type Option func(*Manager)

// WithSource sets the random source used by drop and party helpers.
func WithSource(src rnd.Source) Option {
	return func(m *Manager) {
		if src != nil {
			m.env.rng = src
		}
	}
}

// WithRates sets drop and reward multipliers.
func WithRates(r Rates) Option {
	return func(m *Manager) {
		m.env.rates = r
	}
}

type playerEntry struct {
	player Player
	states map[string]*QuestState // questName → state
}

// Manager dispatches game events to quests and owns the per-player quest states
// of online characters. Thread-safe; events of one player are expected to arrive
// in order, events of different players may be dispatched concurrently.
type Manager struct {
	registry *Registry
	repo     QuestRepository
	timers   *TimerManager
	env      *env

	mu      sync.RWMutex
	players map[int64]*playerEntry // charID → entry
}

// NewManager creates a quest manager over a frozen registry.
// repo may be nil, in which case quest progress lives only in memory.
func NewManager(reg *Registry, repo QuestRepository, opts ...Option) *Manager {
	if reg == nil {
		reg = NewRegistryBuilder().Build()
	}
	m := &Manager{
		registry: reg,
		repo:     repo,
		timers:   NewTimerManager(),
		players:  make(map[int64]*playerEntry, 256),
		env: &env{
			rng:   rnd.Default(),
			rates: DefaultRates(),
		},
	}
	m.env.party = m
	m.env.timerStarter = m
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the quest definitions the manager routes to.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// GetQuest returns a quest by ID.
func (m *Manager) GetQuest(questID int32) *Quest {
	return m.registry.Quest(questID)
}

// GetQuestByName returns a quest by name.
func (m *Manager) GetQuestByName(name string) *Quest {
	return m.registry.QuestByName(name)
}

// QuestCount returns the number of registered quests.
func (m *Manager) QuestCount() int {
	return m.registry.Count()
}

// GetQuestsForNPC returns quests that have talk hooks for an NPC (for quest menus).
func (m *Manager) GetQuestsForNPC(npcID int32) []*Quest {
	return m.registry.QuestsForNPC(npcID)
}

// LoadPlayer brings a character online: loads its quest states from the
// repository and binds them to the player. Called on player login.
func (m *Manager) LoadPlayer(ctx context.Context, player Player) error {
	charID := player.CharacterID()
	states := make(map[string]*QuestState, 4)

	if m.repo != nil {
		vars, err := m.repo.LoadByCharacterID(ctx, charID)
		if err != nil {
			return fmt.Errorf("loading quests for character %d: %w", charID, err)
		}

		for _, v := range vars {
			q := m.registry.QuestByName(v.QuestName)
			if q == nil {
				slog.Warn("loaded quest state for unregistered quest",
					"questName", v.QuestName,
					"characterID", charID)
				continue
			}

			qs, exists := states[v.QuestName]
			if !exists {
				qs = NewQuestState(q, charID, StateCreated)
				qs.attach(player, m.env)
				states[v.QuestName] = qs
			}

			if v.Variable == ReservedVarState {
				if st, ok := ParseState(v.Value); ok {
					qs.state = st
				}
				continue
			}
			qs.vars[v.Variable] = v.Value
		}

		// Rows written without a stage marker but with progress count as started.
		for _, qs := range states {
			if qs.state == StateCreated && qs.vars[VarCond] != "" && qs.vars[VarCond] != "0" {
				qs.state = StateStarted
			}
		}
	}

	m.mu.Lock()
	m.players[charID] = &playerEntry{player: player, states: states}
	m.mu.Unlock()

	slog.Debug("loaded player quests",
		"characterID", charID,
		"questCount", len(states))

	return nil
}

// SavePlayer saves all changed quest states for a player.
func (m *Manager) SavePlayer(ctx context.Context, charID int64) error {
	if m.repo == nil {
		return nil
	}

	m.mu.RLock()
	var toSave []*QuestState
	if entry := m.players[charID]; entry != nil {
		for _, qs := range entry.states {
			if qs.IsChanged() {
				toSave = append(toSave, qs)
			}
		}
	}
	m.mu.RUnlock()

	for _, qs := range toSave {
		if err := m.repo.SaveQuestState(ctx, charID, qs.QuestName(), qs.persistedVars()); err != nil {
			return fmt.Errorf("saving quest %q for character %d: %w", qs.QuestName(), charID, err)
		}
		qs.ClearChanged()
	}

	return nil
}

// UnloadPlayer removes a player's quest states from memory and stops its timers.
// Called on player logout after saving.
func (m *Manager) UnloadPlayer(player Player) {
	m.timers.CancelAllForPlayer(player.ObjectID())

	m.mu.Lock()
	delete(m.players, player.CharacterID())
	m.mu.Unlock()
}

// GetQuestState returns a player's state for a specific quest, nil if none.
func (m *Manager) GetQuestState(charID int64, questName string) *QuestState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry := m.players[charID]
	if entry == nil {
		return nil
	}
	return entry.states[questName]
}

// GetActiveQuests returns all started quest states for a player, ordered by quest ID.
func (m *Manager) GetActiveQuests(charID int64) []*QuestState {
	m.mu.RLock()
	entry := m.players[charID]
	var active []*QuestState
	if entry != nil {
		active = make([]*QuestState, 0, len(entry.states))
		for _, qs := range entry.states {
			if qs.IsStarted() {
				active = append(active, qs)
			}
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(active, func(a, b *QuestState) int {
		return cmp.Compare(a.QuestID(), b.QuestID())
	})
	return active
}

// NewQuestState returns the player's state for the quest, creating a stored
// CREATED record when none exists.
func (m *Manager) NewQuestState(player Player, questID int32) (*QuestState, error) {
	q := m.registry.Quest(questID)
	if q == nil {
		return nil, fmt.Errorf("quest %d: %w", questID, ErrUnknownQuest)
	}

	charID := player.CharacterID()

	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.entryLocked(player)
	if existing, ok := entry.states[q.name]; ok {
		return existing, nil
	}

	qs := NewQuestState(q, charID, StateCreated)
	qs.attach(player, m.env)
	qs.changed = true
	entry.states[q.name] = qs
	return qs, nil
}

// AbortQuest abandons a started quest: quest items are destroyed, the record and
// its timers are dropped. Aborting a quest the player does not have is a no-op;
// a completed quest cannot be aborted (ErrQuestNotInProgress).
func (m *Manager) AbortQuest(ctx context.Context, player Player, questID int32) error {
	q := m.registry.Quest(questID)
	if q == nil {
		return fmt.Errorf("quest %d: %w", questID, ErrUnknownQuest)
	}

	qs := m.GetQuestState(player.CharacterID(), q.name)
	if qs == nil {
		return nil
	}
	if !qs.IsStarted() {
		return fmt.Errorf("quest %d is %s: %w", questID, qs.State(), ErrQuestNotInProgress)
	}
	qs.attach(player, m.env)
	qs.ExitQuestRepeatable()
	qs.PlaySound(SoundGiveUp)

	return m.drop(ctx, player, qs)
}

// Dispatch fires quest hooks for a game event and returns a page with its quest.
// Talks, first talks and dialog events stop at the first handler that produced a
// page. Kills and zone events reach every registered quest; the first page wins.
// Handler panics are recovered and logged: the faulty hook yields no page and its
// state is rolled back to what it was before the hook.
func (m *Manager) Dispatch(ctx context.Context, event *Event) Result {
	if event == nil || event.Player == nil {
		return Result{}
	}

	broadcast := isBroadcast(event.Type)
	var res Result
	for _, q := range m.questsFor(event) {
		hook := q.GetHook(event.Type, eventKey(event))
		if hook == nil {
			continue
		}

		qs := m.resolveState(q, event)
		if qs == nil {
			continue
		}

		page, ok := m.invoke(hook, event, qs)
		if !ok {
			continue
		}

		m.commit(ctx, event.Player, qs)
		if event.Type == EventKill {
			m.commitParty(ctx, q, event.Player)
		}

		if page == "" || !res.Empty() {
			continue
		}
		res = Result{Quest: q, Page: page}
		if !broadcast {
			break
		}
	}

	return res
}

// isBroadcast reports whether every registered quest must see the event.
func isBroadcast(t EventType) bool {
	return t == EventKill || t == EventEnterZone || t == EventExitZone
}

func eventKey(e *Event) int32 {
	if e.Type == EventEnterZone || e.Type == EventExitZone {
		return e.ZoneID
	}
	return e.NpcID
}

// questsFor resolves the quests registered for an event.
func (m *Manager) questsFor(e *Event) []*Quest {
	if e.Type == EventAdvance {
		if q := m.registry.QuestByName(e.QuestName); q != nil {
			return []*Quest{q}
		}
		return nil
	}

	quests := m.registry.Lookup(e.Type, eventKey(e))
	if e.QuestName == "" {
		return quests
	}
	for _, q := range quests {
		if q.name == e.QuestName {
			return []*Quest{q}
		}
	}
	return nil
}

// resolveState returns the state the hook runs against, or nil to skip the quest.
// Existing records are always used. A missing record is created (unstored until
// the hook changes it) only for talks and dialog events at a start NPC and for
// first talks, and for kills by a party member so the hook can hand the roll to
// another member. Solo kills, zone events and timers need an existing record.
func (m *Manager) resolveState(q *Quest, e *Event) *QuestState {
	charID := e.Player.CharacterID()

	if qs := m.GetQuestState(charID, q.name); qs != nil {
		qs.attach(e.Player, m.env)
		return qs
	}

	create := false
	switch e.Type {
	case EventTalk, EventAdvance:
		create = e.NpcID != 0 && q.IsStartNpc(e.NpcID)
	case EventFirstTalk:
		create = true
	case EventKill:
		// Партийные квесты: убийца без квеста всё равно может выбрать участника.
		create = len(e.Player.PartyMemberIDs()) > 1
	}
	if !create {
		return nil
	}

	qs := NewQuestState(q, charID, StateCreated)
	qs.attach(e.Player, m.env)
	return qs
}

// invoke runs a hook under panic recovery. A faulty hook leaves the state as it
// found it.
func (m *Manager) invoke(hook HookFunc, e *Event, qs *QuestState) (page string, ok bool) {
	before := qs.snapshot()
	defer func() {
		if r := recover(); r != nil {
			qs.restore(before)
			slog.Error("quest handler fault",
				"questName", qs.QuestName(),
				"characterID", qs.CharID(),
				"event", e.Type.String(),
				"npcID", e.NpcID,
				"name", e.Name,
				"panic", r,
				"stack", string(debug.Stack()))
			page, ok = "", false
		}
	}()
	return hook(e, qs), true
}

// commit stores and persists the state after a successful hook.
func (m *Manager) commit(ctx context.Context, player Player, qs *QuestState) {
	if qs.IsExited() {
		if err := m.drop(ctx, player, qs); err != nil {
			slog.Error("dropping quest state failed",
				"questName", qs.QuestName(),
				"characterID", qs.CharID(),
				"error", err)
		}
		return
	}

	if !qs.IsChanged() {
		return
	}

	m.mu.Lock()
	entry := m.entryLocked(player)
	if _, ok := entry.states[qs.QuestName()]; !ok {
		entry.states[qs.QuestName()] = qs
	}
	m.mu.Unlock()

	if qs.IsCompleted() {
		m.timers.CancelAllForQuestPlayer(qs.QuestName(), player.ObjectID())
	}

	if m.repo == nil {
		return
	}
	if err := m.repo.SaveQuestState(ctx, qs.CharID(), qs.QuestName(), qs.persistedVars()); err != nil {
		slog.Error("saving quest state failed",
			"questName", qs.QuestName(),
			"characterID", qs.CharID(),
			"error", err)
		return
	}
	qs.ClearChanged()
}

// commitParty persists party members' states changed by a kill hook through
// RandomPartyMember or PartyMembers.
func (m *Manager) commitParty(ctx context.Context, q *Quest, killer Player) {
	for _, qs := range m.partyStates(q, killer) {
		if qs.CharID() == killer.CharacterID() {
			continue
		}
		member := qs.Player()
		if member == nil || !(qs.IsChanged() || qs.IsExited()) {
			continue
		}
		m.commit(ctx, member, qs)
	}
}

// drop removes a record from memory and storage and cancels its timers.
func (m *Manager) drop(ctx context.Context, player Player, qs *QuestState) error {
	m.mu.Lock()
	if entry := m.players[qs.CharID()]; entry != nil {
		if cur, ok := entry.states[qs.QuestName()]; ok && cur == qs {
			delete(entry.states, qs.QuestName())
		}
	}
	m.mu.Unlock()

	m.timers.CancelAllForQuestPlayer(qs.QuestName(), player.ObjectID())

	if m.repo == nil {
		return nil
	}
	if err := m.repo.DeleteQuest(ctx, qs.CharID(), qs.QuestName()); err != nil {
		return fmt.Errorf("deleting quest %q for character %d: %w", qs.QuestName(), qs.CharID(), err)
	}
	return nil
}

// entryLocked returns the player's entry, creating it. Caller holds m.mu.
func (m *Manager) entryLocked(player Player) *playerEntry {
	charID := player.CharacterID()
	entry := m.players[charID]
	if entry == nil {
		entry = &playerEntry{player: player, states: make(map[string]*QuestState, 4)}
		m.players[charID] = entry
	}
	return entry
}

// partyStates returns the quest states of the player's online party members.
func (m *Manager) partyStates(q *Quest, player Player) []*QuestState {
	ids := player.PartyMemberIDs()
	if len(ids) == 0 {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*QuestState, 0, len(ids))
	for _, id := range ids {
		entry := m.players[id]
		if entry == nil {
			continue
		}
		if qs := entry.states[q.name]; qs != nil {
			out = append(out, qs)
		}
	}
	return out
}

func (m *Manager) startQuestTimer(q *Quest, name string, delay time.Duration, player Player, npcObjID uint32) {
	m.timers.StartTimer(q.name, name, delay, player, npcObjID, func(timerName string, _ PlayerRef, npcObjID uint32) {
		m.Dispatch(context.Background(), &Event{
			Type:      EventAdvance,
			Player:    player,
			TargetID:  npcObjID,
			Name:      timerName,
			QuestName: q.name,
		})
	})
}

func (m *Manager) cancelQuestTimer(q *Quest, name string, player Player) bool {
	return m.timers.CancelTimer(q.name, name, player.ObjectID())
}

// TimerManager returns the internal timer manager.
func (m *Manager) TimerManager() *TimerManager {
	return m.timers
}

// Shutdown stops all timers.
func (m *Manager) Shutdown() {
	m.timers.Shutdown()
}
