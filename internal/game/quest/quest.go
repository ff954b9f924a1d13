// Package quest implements the quest engine: quest definitions, per-player quest
// state, drop/reward primitives, event dispatch and quest timers.
// Quest scripts register hook functions that fire on game events (NPC talk,
// dialog events, kills, zone transitions) and mutate the player's QuestState.
package quest

import "slices"

// EventType identifies the kind of quest event.
type EventType int

const (
	EventTalk      EventType = iota // NPC dialog interaction
	EventFirstTalk                  // First click on an NPC, before its default dialog
	EventAdvance                    // Dialog event token or fired quest timer
	EventKill                       // Monster killed by player or pet
	EventEnterZone                  // Player entered zone
	EventExitZone                   // Player left zone
)

func (t EventType) String() string {
	switch t {
	case EventTalk:
		return "talk"
	case EventFirstTalk:
		return "first_talk"
	case EventAdvance:
		return "advance"
	case EventKill:
		return "kill"
	case EventEnterZone:
		return "enter_zone"
	case EventExitZone:
		return "exit_zone"
	default:
		return "unknown"
	}
}

// Event carries quest event data to hook functions.
type Event struct {
	Type     EventType
	Player   Player
	NpcID    int32  // Template ID of the NPC/monster involved (0 if none)
	TargetID uint32 // Object ID of the NPC involved (0 if none)
	ZoneID   int32  // Zone for enter/exit events
	Name     string // Dialog event token or timer name (EventAdvance)
	IsPet    bool   // Kill made by the player's pet

	// QuestName restricts dispatch to a single quest (bypass "Quest <name> ...").
	QuestName string
}

// HookFunc is the callback signature for quest event handlers.
// Returns a dialog page identifier (e.g. "30039-03.htm"), raw HTML, or "" for no response.
type HookFunc func(event *Event, qs *QuestState) string

// Quest is the static definition of one quest: identity, the NPCs, monsters and
// zones it listens to, and the items it owns. Definitions are built once at
// startup and are read-only afterwards.
type Quest struct {
	id          int32
	name        string
	description string

	startNpcs []int32

	onTalk      map[int32]HookFunc
	onFirstTalk map[int32]HookFunc
	onKill      map[int32]HookFunc
	onEnterZone map[int32]HookFunc
	onExitZone  map[int32]HookFunc
	onAdvEvent  HookFunc

	// Removed from the inventory by ExitQuest(true) and on abort.
	questItems []int32
}

// NewQuest creates a new quest definition.
func NewQuest(id int32, name string) *Quest {
	return &Quest{
		id:          id,
		name:        name,
		onTalk:      make(map[int32]HookFunc, 4),
		onFirstTalk: make(map[int32]HookFunc, 2),
		onKill:      make(map[int32]HookFunc, 4),
		onEnterZone: make(map[int32]HookFunc, 1),
		onExitZone:  make(map[int32]HookFunc, 1),
	}
}

// ID returns the quest identifier.
func (q *Quest) ID() int32 { return q.id }

// Name returns the quest name.
func (q *Quest) Name() string { return q.name }

// Description returns the human readable quest title.
func (q *Quest) Description() string { return q.description }

// SetDescription sets the quest title shown in quest lists.
func (q *Quest) SetDescription(desc string) { q.description = desc }

// AddStartNpc marks an NPC as able to begin the quest.
// Talking to a start NPC without a quest record creates a CREATED state.
func (q *Quest) AddStartNpc(npcIDs ...int32) {
	for _, id := range npcIDs {
		if !slices.Contains(q.startNpcs, id) {
			q.startNpcs = append(q.startNpcs, id)
		}
	}
}

// IsStartNpc reports whether npcID can begin the quest.
func (q *Quest) IsStartNpc(npcID int32) bool {
	return slices.Contains(q.startNpcs, npcID)
}

// StartNpcs returns the start NPC IDs.
func (q *Quest) StartNpcs() []int32 {
	return slices.Clone(q.startNpcs)
}

// AddTalkID registers an onTalk hook for NPC template IDs.
func (q *Quest) AddTalkID(fn HookFunc, npcIDs ...int32) {
	for _, id := range npcIDs {
		q.onTalk[id] = fn
	}
}

// AddFirstTalkID registers an onFirstTalk hook for NPC template IDs.
func (q *Quest) AddFirstTalkID(fn HookFunc, npcIDs ...int32) {
	for _, id := range npcIDs {
		q.onFirstTalk[id] = fn
	}
}

// AddKillID registers an onKill hook for monster template IDs.
func (q *Quest) AddKillID(fn HookFunc, npcIDs ...int32) {
	for _, id := range npcIDs {
		q.onKill[id] = fn
	}
}

// AddEnterZoneID registers an onEnterZone hook for zone IDs.
func (q *Quest) AddEnterZoneID(fn HookFunc, zoneIDs ...int32) {
	for _, id := range zoneIDs {
		q.onEnterZone[id] = fn
	}
}

// AddExitZoneID registers an onExitZone hook for zone IDs.
func (q *Quest) AddExitZoneID(fn HookFunc, zoneIDs ...int32) {
	for _, id := range zoneIDs {
		q.onExitZone[id] = fn
	}
}

// SetOnAdvEvent sets the handler for dialog events and fired timers.
func (q *Quest) SetOnAdvEvent(fn HookFunc) {
	q.onAdvEvent = fn
}

// AddQuestItem marks item IDs as owned by this quest.
func (q *Quest) AddQuestItem(itemIDs ...int32) {
	q.questItems = append(q.questItems, itemIDs...)
}

// QuestItems returns the item IDs owned by this quest.
func (q *Quest) QuestItems() []int32 {
	return q.questItems
}

// IsQuestItem reports whether itemID belongs to this quest.
func (q *Quest) IsQuestItem(itemID int32) bool {
	return slices.Contains(q.questItems, itemID)
}

// GetHook returns the hook for the given event. key is the NPC template ID,
// or the zone ID for zone events. Returns nil if no hook is registered.
func (q *Quest) GetHook(eventType EventType, key int32) HookFunc {
	switch eventType {
	case EventTalk:
		return q.onTalk[key]
	case EventFirstTalk:
		return q.onFirstTalk[key]
	case EventKill:
		return q.onKill[key]
	case EventEnterZone:
		return q.onEnterZone[key]
	case EventExitZone:
		return q.onExitZone[key]
	case EventAdvance:
		return q.onAdvEvent
	default:
		return nil
	}
}

// HasHook returns true if the quest has a hook for the given event type and key.
func (q *Quest) HasHook(eventType EventType, key int32) bool {
	return q.GetHook(eventType, key) != nil
}

// registeredKeys returns all NPC or zone IDs that have hooks for the event type.
func (q *Quest) registeredKeys(eventType EventType) []int32 {
	var m map[int32]HookFunc
	switch eventType {
	case EventTalk:
		m = q.onTalk
	case EventFirstTalk:
		m = q.onFirstTalk
	case EventKill:
		m = q.onKill
	case EventEnterZone:
		m = q.onEnterZone
	case EventExitZone:
		m = q.onExitZone
	default:
		return nil
	}

	ids := make([]int32, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
