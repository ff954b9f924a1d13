package quest

import (
	"maps"
	"strconv"
	"sync"
	"time"
)

// State is the lifecycle stage of a quest for one player.
type State byte

// State constants matching L2J QuestState.
const (
	StateCreated   State = 0
	StateStarted   State = 1
	StateCompleted State = 2
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateStarted:
		return "Started"
	case StateCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is one of the three lifecycle stages.
func (s State) Valid() bool {
	return s <= StateCompleted
}

// ParseState converts a persisted stage name back to a State.
func ParseState(name string) (State, bool) {
	switch name {
	case "Created":
		return StateCreated, true
	case "Started":
		return StateStarted, true
	case "Completed":
		return StateCompleted, true
	default:
		return StateCreated, false
	}
}

const (
	// VarCond is the variable holding the quest progress step.
	VarCond = "cond"

	// ReservedVarState persists the lifecycle stage next to quest variables.
	ReservedVarState = "<state>"
)

// ItemAdena is the item ID of the in-game currency.
const ItemAdena int32 = 57

// QuestState tracks a single player's progress in a specific quest.
// EAV model: variables stored as map[string]string, persisted to character_quests.
// Thread-safe via mutex; item operations go straight to the bound player.
type QuestState struct {
	mu sync.RWMutex

	quest  *Quest
	charID int64
	player Player
	env    *env

	state   State
	vars    map[string]string
	changed bool // dirty flag for persistence
	exited  bool // record must be dropped (repeatable exit / abort)
}

// NewQuestState creates a quest state for the given character and quest.
func NewQuestState(q *Quest, charID int64, state State) *QuestState {
	return &QuestState{
		quest:  q,
		charID: charID,
		state:  state,
		vars:   make(map[string]string, 4),
	}
}

// Quest returns the owning quest definition.
func (qs *QuestState) Quest() *Quest {
	return qs.quest
}

// QuestID returns the quest identifier.
func (qs *QuestState) QuestID() int32 {
	return qs.quest.id
}

// QuestName returns the quest name.
func (qs *QuestState) QuestName() string {
	return qs.quest.name
}

// CharID returns the character ID.
func (qs *QuestState) CharID() int64 {
	return qs.charID
}

// Player returns the character this state is bound to (nil when offline).
func (qs *QuestState) Player() Player {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	return qs.player
}

// Bind attaches the online character that owns this state.
func (qs *QuestState) Bind(p Player) {
	qs.mu.Lock()
	qs.player = p
	qs.mu.Unlock()
}

func (qs *QuestState) attach(p Player, e *env) {
	qs.mu.Lock()
	qs.player = p
	qs.env = e
	qs.mu.Unlock()
}

func (qs *QuestState) environment() *env {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	if qs.env == nil {
		return defaultEnv
	}
	return qs.env
}

// State returns the current lifecycle stage.
func (qs *QuestState) State() State {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	return qs.state
}

// SetState moves the lifecycle forward. Unknown stages and backward moves are ignored.
func (qs *QuestState) SetState(state State) {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	if !state.Valid() || state < qs.state {
		return
	}
	if state == qs.state {
		return
	}
	qs.state = state
	qs.changed = true
}

// IsCreated returns true if the quest was not accepted yet.
func (qs *QuestState) IsCreated() bool {
	return qs.State() == StateCreated
}

// IsStarted returns true if quest is in progress.
func (qs *QuestState) IsStarted() bool {
	return qs.State() == StateStarted
}

// IsCompleted returns true if quest is finished.
func (qs *QuestState) IsCompleted() bool {
	return qs.State() == StateCompleted
}

// IsCond reports whether the quest is started and at the given progress step.
func (qs *QuestState) IsCond(cond int) bool {
	return qs.IsStarted() && qs.GetCond() == cond
}

// StartQuest accepts the quest: STARTED, cond 1, accept sound.
func (qs *QuestState) StartQuest() {
	qs.SetState(StateStarted)
	qs.SetCond(1)
	qs.PlaySound(SoundAccept)
}

// GetCond returns the quest progress step (cond variable).
func (qs *QuestState) GetCond() int {
	return qs.GetInt(VarCond)
}

// SetCond sets the quest progress step.
func (qs *QuestState) SetCond(cond int) {
	qs.SetInt(VarCond, cond)
}

// Get returns a quest variable value, "" if absent.
func (qs *QuestState) Get(key string) string {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	return qs.vars[key]
}

// GetInt returns a numeric variable, 0 if absent or not a number.
func (qs *QuestState) GetInt(key string) int {
	n, err := strconv.Atoi(qs.Get(key))
	if err != nil {
		return 0
	}
	return n
}

// GetBool returns a boolean variable, false if absent or unparsable.
func (qs *QuestState) GetBool(key string) bool {
	b, err := strconv.ParseBool(qs.Get(key))
	if err != nil {
		return false
	}
	return b
}

// Set sets a quest variable.
func (qs *QuestState) Set(key, value string) {
	if key == ReservedVarState {
		return
	}
	qs.mu.Lock()
	defer qs.mu.Unlock()
	if old, ok := qs.vars[key]; ok && old == value {
		return
	}
	qs.vars[key] = value
	qs.changed = true
}

// SetInt stores a numeric variable.
func (qs *QuestState) SetInt(key string, value int) {
	qs.Set(key, strconv.Itoa(value))
}

// Unset removes a quest variable.
func (qs *QuestState) Unset(key string) {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	if _, ok := qs.vars[key]; !ok {
		return
	}
	delete(qs.vars, key)
	qs.changed = true
}

// Vars returns a snapshot of all variables (copy).
func (qs *QuestState) Vars() map[string]string {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	snapshot := make(map[string]string, len(qs.vars))
	maps.Copy(snapshot, qs.vars)
	return snapshot
}

// persistedVars returns the variables plus the reserved lifecycle entry.
func (qs *QuestState) persistedVars() map[string]string {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	out := make(map[string]string, len(qs.vars)+1)
	maps.Copy(out, qs.vars)
	out[ReservedVarState] = qs.state.String()
	return out
}

// IsChanged returns true if state was modified since last save.
func (qs *QuestState) IsChanged() bool {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	return qs.changed
}

// ClearChanged resets the dirty flag after successful save.
func (qs *QuestState) ClearChanged() {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	qs.changed = false
}

// IsExited reports whether the record was dropped by ExitQuestRepeatable.
func (qs *QuestState) IsExited() bool {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	return qs.exited
}

// stateSnapshot is the persisted part of a QuestState at one point in time.
type stateSnapshot struct {
	state   State
	vars    map[string]string
	changed bool
	exited  bool
}

func (qs *QuestState) snapshot() stateSnapshot {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	return stateSnapshot{
		state:   qs.state,
		vars:    maps.Clone(qs.vars),
		changed: qs.changed,
		exited:  qs.exited,
	}
}

// restore rolls stage and variables back to s. Inventory is not rolled back.
func (qs *QuestState) restore(s stateSnapshot) {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	qs.state = s.state
	qs.vars = s.vars
	qs.changed = s.changed
	qs.exited = s.exited
}

// GiveItems adds count units of itemID to the player's inventory.
func (qs *QuestState) GiveItems(itemID int32, count int64) {
	p := qs.Player()
	if p == nil || count <= 0 {
		return
	}
	p.AddItem(itemID, count)
}

// TakeItems removes up to count units of itemID; count < 0 removes all of them.
func (qs *QuestState) TakeItems(itemID int32, count int64) {
	p := qs.Player()
	if p == nil || count == 0 {
		return
	}
	p.DestroyItem(itemID, count)
}

// GetQuestItemsCount returns the total units held of the given items.
func (qs *QuestState) GetQuestItemsCount(itemIDs ...int32) int64 {
	p := qs.Player()
	if p == nil {
		return 0
	}
	var total int64
	for _, id := range itemIDs {
		total += p.ItemCount(id)
	}
	return total
}

// HasQuestItems reports whether the player holds at least one of every listed item.
func (qs *QuestState) HasQuestItems(itemIDs ...int32) bool {
	p := qs.Player()
	if p == nil || len(itemIDs) == 0 {
		return false
	}
	for _, id := range itemIDs {
		if p.ItemCount(id) <= 0 {
			return false
		}
	}
	return true
}

// HasAtLeastOneQuestItem reports whether the player holds any of the listed items.
func (qs *QuestState) HasAtLeastOneQuestItem(itemIDs ...int32) bool {
	p := qs.Player()
	if p == nil {
		return false
	}
	for _, id := range itemIDs {
		if p.ItemCount(id) > 0 {
			return true
		}
	}
	return false
}

// RewardItems pays out a final reward, scaled by the reward rate.
func (qs *QuestState) RewardItems(itemID int32, count int64) {
	p := qs.Player()
	if p == nil || count <= 0 {
		return
	}
	p.AddItem(itemID, qs.environment().rates.scaleReward(count))
}

// GiveAdena pays count adena as a reward.
func (qs *QuestState) GiveAdena(count int64) {
	qs.RewardItems(ItemAdena, count)
}

// RewardExpAndSp grants experience and skill points, scaled by the reward rates.
func (qs *QuestState) RewardExpAndSp(exp, sp int64) {
	p := qs.Player()
	if p == nil {
		return
	}
	r := qs.environment().rates
	p.AddExpAndSp(r.scaleExp(exp), r.scaleSp(sp))
}

// PlaySound sends a sound cue to the player.
func (qs *QuestState) PlaySound(sound Sound) {
	if p := qs.Player(); p != nil {
		p.PlaySound(string(sound))
	}
}

// ExitQuest completes the quest. When destroyQuestItems is set, every item the
// quest definition owns is removed from the inventory.
func (qs *QuestState) ExitQuest(destroyQuestItems bool) {
	qs.SetState(StateCompleted)
	if destroyQuestItems {
		qs.removeQuestItems()
	}
}

// ExitQuestRepeatable finishes a repeatable quest: quest items are removed and
// the record is dropped, so the next interaction starts from a fresh state.
func (qs *QuestState) ExitQuestRepeatable() {
	qs.removeQuestItems()
	qs.mu.Lock()
	qs.exited = true
	qs.changed = true
	qs.mu.Unlock()
}

func (qs *QuestState) removeQuestItems() {
	for _, id := range qs.quest.questItems {
		qs.TakeItems(id, -1)
	}
}

// StartQuestTimer schedules an advance event named name after delay.
// Restarting a running timer replaces it.
func (qs *QuestState) StartQuestTimer(name string, delay time.Duration, npcObjID uint32) {
	e := qs.environment()
	p := qs.Player()
	if e.timerStarter == nil || p == nil {
		return
	}
	e.timerStarter.startQuestTimer(qs.quest, name, delay, p, npcObjID)
}

// CancelQuestTimer stops a pending timer. Returns true if one was running.
func (qs *QuestState) CancelQuestTimer(name string) bool {
	e := qs.environment()
	p := qs.Player()
	if e.timerStarter == nil || p == nil {
		return false
	}
	return e.timerStarter.cancelQuestTimer(qs.quest, name, p)
}
