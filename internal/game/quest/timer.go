package quest

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// TimerFunc is the callback for quest timers.
type TimerFunc func(timerName string, player PlayerRef, npcObjectID uint32)

// PlayerRef is a minimal player reference for timers.
type PlayerRef interface {
	ObjectID() uint32
	Name() string
}

// Timer represents a single quest timer that fires after a delay.
// Thread-safe: cancel can be called from any goroutine.
type Timer struct {
	name        string
	questName   string
	playerObjID uint32
	npcObjID    uint32
	cancel      context.CancelFunc
	done        chan struct{}
}

// Name returns the timer name.
func (t *Timer) Name() string { return t.name }

// QuestName returns the quest that owns the timer.
func (t *Timer) QuestName() string { return t.questName }

// stop cancels the timer and waits for its goroutine.
func (t *Timer) stop() {
	t.cancel()
	<-t.done
}

// TimerManager manages active quest timers.
// Thread-safe for concurrent timer creation/cancellation.
type TimerManager struct {
	mu     sync.Mutex
	timers map[string]*Timer // key: "questName:timerName:playerObjectID"
}

// NewTimerManager creates a new timer manager.
func NewTimerManager() *TimerManager {
	return &TimerManager{
		timers: make(map[string]*Timer, 32),
	}
}

func timerKey(questName, timerName string, playerObjID uint32) string {
	return questName + ":" + timerName + ":" + strconv.FormatUint(uint64(playerObjID), 10)
}

// StartTimer creates and starts a new timer.
// If a timer with the same key already exists, it is cancelled first.
// The timer leaves the manager before its callback runs, so the callback may
// restart or cancel timers freely.
func (tm *TimerManager) StartTimer(
	questName, timerName string,
	delay time.Duration,
	player PlayerRef,
	npcObjID uint32,
	callback TimerFunc,
) *Timer {
	key := timerKey(questName, timerName, player.ObjectID())

	tm.mu.Lock()
	if old, ok := tm.timers[key]; ok {
		old.cancel()
		delete(tm.timers, key)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &Timer{
		name:        timerName,
		questName:   questName,
		playerObjID: player.ObjectID(),
		npcObjID:    npcObjID,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	tm.timers[key] = t
	tm.mu.Unlock()

	go func() {
		defer close(t.done)
		defer cancel()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		tm.mu.Lock()
		current, ok := tm.timers[key]
		if !ok || current != t {
			tm.mu.Unlock()
			return
		}
		delete(tm.timers, key)
		tm.mu.Unlock()

		callback(timerName, player, npcObjID)
	}()

	return t
}

// HasTimer reports whether a timer is pending.
func (tm *TimerManager) HasTimer(questName, timerName string, playerObjID uint32) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	_, ok := tm.timers[timerKey(questName, timerName, playerObjID)]
	return ok
}

// CancelTimer cancels a timer by key components.
// Returns true if timer was found and cancelled.
func (tm *TimerManager) CancelTimer(questName, timerName string, playerObjID uint32) bool {
	key := timerKey(questName, timerName, playerObjID)

	tm.mu.Lock()
	t, ok := tm.timers[key]
	if ok {
		delete(tm.timers, key)
	}
	tm.mu.Unlock()

	if ok {
		t.stop()
	}
	return ok
}

// cancelWhere removes and stops every timer matching the predicate.
func (tm *TimerManager) cancelWhere(match func(t *Timer) bool) {
	tm.mu.Lock()
	var toCancel []*Timer
	for key, t := range tm.timers {
		if match(t) {
			toCancel = append(toCancel, t)
			delete(tm.timers, key)
		}
	}
	tm.mu.Unlock()

	for _, t := range toCancel {
		t.stop()
	}
}

// CancelAllForPlayer cancels all timers for a specific player.
func (tm *TimerManager) CancelAllForPlayer(playerObjID uint32) {
	tm.cancelWhere(func(t *Timer) bool { return t.playerObjID == playerObjID })
}

// CancelAllForQuest cancels all timers of a quest, for every player.
func (tm *TimerManager) CancelAllForQuest(questName string) {
	tm.cancelWhere(func(t *Timer) bool { return t.questName == questName })
}

// CancelAllForQuestPlayer cancels one player's timers of a quest.
func (tm *TimerManager) CancelAllForQuestPlayer(questName string, playerObjID uint32) {
	tm.cancelWhere(func(t *Timer) bool {
		return t.questName == questName && t.playerObjID == playerObjID
	})
}

// ActiveCount returns the number of active timers.
func (tm *TimerManager) ActiveCount() int {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.timers)
}

// Shutdown cancels all active timers.
func (tm *TimerManager) Shutdown() {
	tm.mu.Lock()
	all := make([]*Timer, 0, len(tm.timers))
	for _, t := range tm.timers {
		all = append(all, t)
	}
	tm.timers = make(map[string]*Timer)
	tm.mu.Unlock()

	for _, t := range all {
		t.stop()
	}
}
