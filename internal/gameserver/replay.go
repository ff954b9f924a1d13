package gameserver

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/l2quest/internal/model"
)

// Scenario is a scripted session: the NPCs and characters of a small world and,
// per character, the ordered actions it performs.
type Scenario struct {
	NPCs    []NpcSpec           `yaml:"npcs"`
	Players []PlayerSpec        `yaml:"players"`
	Parties [][]string          `yaml:"parties"` // character names, leader first
	Actions map[string][]Action `yaml:"actions"` // character name → actions
}

// NpcSpec spawns one NPC.
type NpcSpec struct {
	ObjectID   uint32 `yaml:"object_id"`
	TemplateID int32  `yaml:"template_id"`
	Name       string `yaml:"name"`
	Level      int32  `yaml:"level"`
}

// PlayerSpec creates one character.
type PlayerSpec struct {
	ObjectID    uint32 `yaml:"object_id"`
	CharacterID int64  `yaml:"character_id"`
	Name        string `yaml:"name"`
	Level       int32  `yaml:"level"`
	RaceID      int32  `yaml:"race"`
	ClassID     int32  `yaml:"class"`
	ClassTier   int32  `yaml:"class_tier"`
}

// Action kinds.
const (
	ActionTalk      = "talk"
	ActionQuest     = "quest"
	ActionEvent     = "event"
	ActionBypass    = "bypass"
	ActionKill      = "kill"
	ActionEnterZone = "enter_zone"
	ActionExitZone  = "exit_zone"
	ActionAbort     = "abort"
	ActionWait      = "wait"
)

// Action is one step of a character's stream.
type Action struct {
	Do      string        `yaml:"do"`
	Npc     uint32        `yaml:"npc"` // NPC object ID
	Quest   string        `yaml:"quest"`
	Event   string        `yaml:"event"`
	Bypass  string        `yaml:"bypass"`
	Zone    int32         `yaml:"zone"`
	QuestID int32         `yaml:"quest_id"`
	Pet     bool          `yaml:"pet"`
	Repeat  int           `yaml:"repeat"` // 0 and 1 both run once
	Wait    time.Duration `yaml:"wait"`
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a YAML scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &sc, nil
}

// Setup spawns the scenario's NPCs, creates its characters, forms parties and
// logs everyone in. Returns characters by name.
func (h *Host) Setup(ctx context.Context, sc *Scenario) (map[string]*model.Player, error) {
	for _, n := range sc.NPCs {
		tmpl := model.NewNpcTemplate(n.TemplateID, n.Name, "", n.Level)
		h.SpawnNpc(model.NewNpc(n.ObjectID, tmpl))
	}

	players := make(map[string]*model.Player, len(sc.Players))
	for _, ps := range sc.Players {
		p, err := model.NewPlayer(ps.ObjectID, ps.CharacterID, ps.Name, ps.Level, ps.RaceID, ps.ClassID)
		if err != nil {
			return nil, fmt.Errorf("scenario player %q: %w", ps.Name, err)
		}
		p.SetClass(ps.ClassID, ps.ClassTier)
		players[ps.Name] = p
	}

	for i, names := range sc.Parties {
		if len(names) == 0 {
			continue
		}
		leader, ok := players[names[0]]
		if !ok {
			return nil, fmt.Errorf("party %d: unknown leader %q", i+1, names[0])
		}
		party := model.NewParty(int32(i+1), leader)
		for _, name := range names[1:] {
			member, ok := players[name]
			if !ok {
				return nil, fmt.Errorf("party %d: unknown member %q", i+1, name)
			}
			if err := party.AddMember(member); err != nil {
				return nil, fmt.Errorf("party %d: %w", i+1, err)
			}
		}
	}

	for _, p := range players {
		if err := h.Login(ctx, p); err != nil {
			return nil, err
		}
	}
	return players, nil
}

// ReplayAll runs every character's action stream. Actions of one character run
// in order; different characters run concurrently. The first failing action
// cancels the remaining streams.
func (h *Host) ReplayAll(ctx context.Context, sc *Scenario, players map[string]*model.Player) error {
	g, ctx := errgroup.WithContext(ctx)
	for name, actions := range sc.Actions {
		player, ok := players[name]
		if !ok {
			return fmt.Errorf("actions for unknown player %q", name)
		}
		g.Go(func() error {
			return h.replay(ctx, player, actions)
		})
	}
	return g.Wait()
}

func (h *Host) replay(ctx context.Context, player *model.Player, actions []Action) error {
	for i, a := range actions {
		for range max(a.Repeat, 1) {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := h.apply(ctx, player, a); err != nil {
				return fmt.Errorf("%s action %d (%s): %w", player.Name(), i+1, a.Do, err)
			}
		}
	}
	return nil
}

func (h *Host) apply(ctx context.Context, player *model.Player, a Action) error {
	switch a.Do {
	case ActionBypass:
		_, err := h.Bypass(ctx, player, a.Bypass)
		return err
	case ActionEnterZone:
		h.EnterZone(ctx, player, a.Zone)
		return nil
	case ActionExitZone:
		h.ExitZone(ctx, player, a.Zone)
		return nil
	case ActionAbort:
		return h.AbortQuest(ctx, player, a.QuestID)
	case ActionWait:
		t := time.NewTimer(a.Wait)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}

	// Остальные действия адресованы NPC.
	npc, ok := h.Npc(a.Npc)
	if !ok {
		return fmt.Errorf("npc %d: %w", a.Npc, ErrUnknownNpc)
	}
	switch a.Do {
	case ActionTalk:
		h.Talk(ctx, player, npc)
	case ActionQuest:
		h.QuestTalk(ctx, player, npc, a.Quest)
	case ActionEvent:
		h.QuestEvent(ctx, player, npc, a.Quest, a.Event)
	case ActionKill:
		h.Kill(ctx, player, npc, a.Pet)
	default:
		return fmt.Errorf("unknown action %q", a.Do)
	}
	return nil
}
