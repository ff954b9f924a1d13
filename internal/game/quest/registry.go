package quest

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

var (
	// ErrDuplicateQuest is returned when a quest ID or name is registered twice.
	ErrDuplicateQuest = errors.New("quest already registered")
	// ErrUnknownQuest is returned for lookups of unregistered quests.
	ErrUnknownQuest = errors.New("quest not registered")
	// ErrQuestNotInProgress is returned when aborting a quest that is not started.
	ErrQuestNotInProgress = errors.New("quest not in progress")
)

// indexedEvents are the event types routed by NPC or zone ID.
var indexedEvents = []EventType{EventTalk, EventFirstTalk, EventKill, EventEnterZone, EventExitZone}

// Registry is the immutable set of quest definitions with their event index.
// Built once at startup by RegistryBuilder; safe for concurrent reads.
type Registry struct {
	byID    map[int32]*Quest
	byName  map[string]*Quest
	ordered []*Quest

	// eventType → NPC/zone ID → quests, in registration order.
	index map[EventType]map[int32][]*Quest
}

// RegistryBuilder collects quest definitions before the registry is frozen.
type RegistryBuilder struct {
	quests []*Quest
	ids    map[int32]struct{}
	names  map[string]struct{}
}

// NewRegistryBuilder creates an empty builder.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{
		ids:   make(map[int32]struct{}, 64),
		names: make(map[string]struct{}, 64),
	}
}

// Add registers a quest definition.
func (b *RegistryBuilder) Add(q *Quest) error {
	if _, ok := b.ids[q.id]; ok {
		return fmt.Errorf("quest ID %d: %w", q.id, ErrDuplicateQuest)
	}
	if _, ok := b.names[q.name]; ok {
		return fmt.Errorf("quest %q: %w", q.name, ErrDuplicateQuest)
	}
	b.ids[q.id] = struct{}{}
	b.names[q.name] = struct{}{}
	b.quests = append(b.quests, q)

	slog.Debug("quest registered",
		"questID", q.id,
		"questName", q.name)
	return nil
}

// Build freezes the collected quests into a Registry.
func (b *RegistryBuilder) Build() *Registry {
	r := &Registry{
		byID:    make(map[int32]*Quest, len(b.quests)),
		byName:  make(map[string]*Quest, len(b.quests)),
		ordered: slices.Clone(b.quests),
		index:   make(map[EventType]map[int32][]*Quest, len(indexedEvents)),
	}

	for _, q := range b.quests {
		r.byID[q.id] = q
		r.byName[q.name] = q

		for _, et := range indexedEvents {
			keys := q.registeredKeys(et)
			if len(keys) == 0 {
				continue
			}
			if r.index[et] == nil {
				r.index[et] = make(map[int32][]*Quest, 16)
			}
			for _, key := range keys {
				r.index[et][key] = append(r.index[et][key], q)
			}
		}

		// Start NPC без talk-хука не попадёт в меню квестов: только предупреждаем.
		for _, npcID := range q.startNpcs {
			if q.HasHook(EventTalk, npcID) {
				continue
			}
			slog.Warn("start NPC has no talk hook",
				"questName", q.name,
				"npcID", npcID)
		}
	}

	return r
}

// Quest returns a quest by ID, nil if unknown.
func (r *Registry) Quest(id int32) *Quest {
	return r.byID[id]
}

// QuestByName returns a quest by name, nil if unknown.
func (r *Registry) QuestByName(name string) *Quest {
	return r.byName[name]
}

// Quests returns all quests in registration order.
func (r *Registry) Quests() []*Quest {
	return slices.Clone(r.ordered)
}

// Count returns the number of registered quests.
func (r *Registry) Count() int {
	return len(r.ordered)
}

// Lookup returns the quests listening to eventType for the NPC or zone key.
// Advance events are not indexed; they address a quest by name.
func (r *Registry) Lookup(eventType EventType, key int32) []*Quest {
	return slices.Clone(r.index[eventType][key])
}

// QuestsForNPC returns quests with a talk hook on the NPC (quest menu content).
func (r *Registry) QuestsForNPC(npcID int32) []*Quest {
	return slices.Clone(r.index[EventTalk][npcID])
}
