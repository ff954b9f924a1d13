// Package gameserver hosts online characters and NPCs and turns their
// interactions into quest events: it routes talks, bypasses, kills and zone
// transitions to the quest manager and delivers the rendered dialogs.
package gameserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/l2quest/internal/game/quest"
	"github.com/udisondev/l2quest/internal/html"
	"github.com/udisondev/l2quest/internal/model"
)

var (
	// ErrAlreadyOnline is returned when a character logs in twice.
	ErrAlreadyOnline = errors.New("player already online")
	// ErrUnknownNpc is returned for bypasses addressing an NPC that is not spawned.
	ErrUnknownNpc = errors.New("npc not spawned")
)

// Sender delivers server output to a player's client.
type Sender interface {
	SendHTML(player *model.Player, npcObjectID uint32, html string)
	SendSound(player *model.Player, sound string)
}

// Host owns the online world the quest engine talks to.
type Host struct {
	quests  *quest.Manager
	dialogs *html.DialogManager
	sender  Sender

	mu      sync.RWMutex
	players map[uint32]*model.Player // objectID → player
	npcs    map[uint32]*model.Npc    // objectID → npc
}

// NewHost creates a host over a quest manager and dialog renderer.
// A nil sender discards output.
func NewHost(quests *quest.Manager, dialogs *html.DialogManager, sender Sender) *Host {
	if sender == nil {
		sender = discardSender{}
	}
	return &Host{
		quests:  quests,
		dialogs: dialogs,
		sender:  sender,
		players: make(map[uint32]*model.Player, 64),
		npcs:    make(map[uint32]*model.Npc, 64),
	}
}

// Quests returns the quest manager.
func (h *Host) Quests() *quest.Manager {
	return h.quests
}

// SpawnNpc makes an NPC addressable by bypasses and events.
func (h *Host) SpawnNpc(npc *model.Npc) {
	h.mu.Lock()
	h.npcs[npc.ObjectID()] = npc
	h.mu.Unlock()
}

// Npc returns a spawned NPC by object ID.
func (h *Host) Npc(objectID uint32) (*model.Npc, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	npc, ok := h.npcs[objectID]
	return npc, ok
}

// Player returns an online player by object ID.
func (h *Host) Player(objectID uint32) (*model.Player, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, ok := h.players[objectID]
	return p, ok
}

// OnlineCount returns the number of online players.
func (h *Host) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.players)
}

// Login brings a character online and loads its quest progress.
func (h *Host) Login(ctx context.Context, player *model.Player) error {
	h.mu.Lock()
	if _, ok := h.players[player.ObjectID()]; ok {
		h.mu.Unlock()
		return fmt.Errorf("login %s: %w", player.Name(), ErrAlreadyOnline)
	}
	h.players[player.ObjectID()] = player
	h.mu.Unlock()

	player.SetSoundHandler(func(sound string) {
		h.sender.SendSound(player, sound)
	})

	if err := h.quests.LoadPlayer(ctx, player); err != nil {
		player.SetSoundHandler(nil)
		h.mu.Lock()
		delete(h.players, player.ObjectID())
		h.mu.Unlock()
		return fmt.Errorf("login %s: %w", player.Name(), err)
	}

	slog.Info("player logged in",
		"character", player.Name(),
		"characterID", player.CharacterID(),
		"activeQuests", len(h.quests.GetActiveQuests(player.CharacterID())))
	return nil
}

// Logout saves quest progress and takes the character offline. The player is
// unloaded even when saving fails.
func (h *Host) Logout(ctx context.Context, player *model.Player) error {
	saveErr := h.quests.SavePlayer(ctx, player.CharacterID())
	h.quests.UnloadPlayer(player)
	player.SetSoundHandler(nil)

	h.mu.Lock()
	delete(h.players, player.ObjectID())
	h.mu.Unlock()

	if saveErr != nil {
		return fmt.Errorf("logout %s: %w", player.Name(), saveErr)
	}

	slog.Info("player logged out",
		"character", player.Name(),
		"characterID", player.CharacterID())
	return nil
}

// Shutdown logs every online player out in parallel and stops quest timers.
func (h *Host) Shutdown(ctx context.Context) error {
	h.mu.RLock()
	online := make([]*model.Player, 0, len(h.players))
	for _, p := range h.players {
		online = append(online, p)
	}
	h.mu.RUnlock()

	var g errgroup.Group
	g.SetLimit(8)
	for _, p := range online {
		g.Go(func() error {
			return h.Logout(ctx, p)
		})
	}
	err := g.Wait()

	h.quests.Shutdown()
	return err
}

// dialogData builds template variables for a dialog shown by npc (may be nil).
func dialogData(player *model.Player, npc *model.Npc) html.DialogData {
	data := html.DialogData{
		"playername": player.Name(),
	}
	if npc != nil {
		data["objectId"] = strconv.FormatUint(uint64(npc.ObjectID()), 10)
		data["npcname"] = npc.Name()
		data["npcId"] = strconv.FormatInt(int64(npc.TemplateID()), 10)
	}
	return data
}

func (h *Host) send(player *model.Player, npc *model.Npc, content string) string {
	if content == "" {
		return ""
	}
	var objectID uint32
	if npc != nil {
		objectID = npc.ObjectID()
	}
	h.sender.SendHTML(player, objectID, content)
	return content
}

type discardSender struct{}

func (discardSender) SendHTML(*model.Player, uint32, string) {}
func (discardSender) SendSound(*model.Player, string)        {}

// WriterSender prints dialogs and sounds as text lines, one per message.
// Safe for concurrent use.
type WriterSender struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSender creates a sender writing to w.
func NewWriterSender(w io.Writer) *WriterSender {
	return &WriterSender{w: w}
}

// SendHTML writes "[player] npc <objectID>: <html>".
func (s *WriterSender) SendHTML(player *model.Player, npcObjectID uint32, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "[%s] npc %d: %s\n", player.Name(), npcObjectID, content)
}

// SendSound writes "[player] sound <file>".
func (s *WriterSender) SendSound(player *model.Player, sound string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "[%s] sound %s\n", player.Name(), sound)
}
