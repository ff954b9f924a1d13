package model

import (
	"fmt"
	"sync"
)

// SoundFunc delivers a sound cue to the player's client.
type SoundFunc func(sound string)

// Player -- игровой персонаж.
// Carries the read-only queries quest scripts gate dialogs on, the inventory
// quest items live in, and the party used for party-wide drops.
type Player struct {
	objectID    uint32
	characterID int64
	name        string

	mu         sync.RWMutex // защищает поля ниже
	level      int32
	raceID     int32
	classID    int32
	classTier  int32
	karma      int32
	noble      bool
	clanID     int32
	clanLevel  int32
	clanLeader bool
	experience int64
	sp         int64
	party      *Party
	onSound    SoundFunc

	inventory *Inventory
}

// NewPlayer создаёт нового игрока с валидацией.
// objectID must be unique across all world objects (players, NPCs, items).
func NewPlayer(objectID uint32, characterID int64, name string, level, raceID, classID int32) (*Player, error) {
	if len(name) < 2 {
		return nil, fmt.Errorf("name must be at least 2 characters, got %q", name)
	}
	if level < 1 || level > 80 {
		return nil, fmt.Errorf("level must be between 1 and 80, got %d", level)
	}

	return &Player{
		objectID:    objectID,
		characterID: characterID,
		name:        name,
		level:       level,
		raceID:      raceID,
		classID:     classID,
		inventory:   NewInventory(characterID),
	}, nil
}

// ObjectID returns the world object ID (immutable).
func (p *Player) ObjectID() uint32 {
	return p.objectID
}

// CharacterID возвращает DB ID персонажа (immutable).
func (p *Player) CharacterID() int64 {
	return p.characterID
}

// Name returns the character name (immutable).
func (p *Player) Name() string {
	return p.name
}

// Level возвращает уровень персонажа.
func (p *Player) Level() int32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.level
}

// SetLevel устанавливает уровень с валидацией.
func (p *Player) SetLevel(level int32) error {
	if level < 1 || level > 80 {
		return fmt.Errorf("level must be between 1 and 80, got %d", level)
	}
	p.mu.Lock()
	p.level = level
	p.mu.Unlock()
	return nil
}

// RaceID returns the race ID.
func (p *Player) RaceID() int32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.raceID
}

// ClassID returns the current class ID.
func (p *Player) ClassID() int32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.classID
}

// ClassTier returns the profession tier (0 = base class, 1..3 = class changes).
func (p *Player) ClassTier() int32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.classTier
}

// SetClass changes class and its tier.
func (p *Player) SetClass(classID, tier int32) {
	p.mu.Lock()
	p.classID = classID
	p.classTier = tier
	p.mu.Unlock()
}

// Karma returns the karma value (> 0 means chaotic).
func (p *Player) Karma() int32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.karma
}

// SetKarma sets the karma value.
func (p *Player) SetKarma(karma int32) {
	p.mu.Lock()
	p.karma = karma
	p.mu.Unlock()
}

// IsNoble reports noblesse status.
func (p *Player) IsNoble() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.noble
}

// SetNoble sets noblesse status.
func (p *Player) SetNoble(noble bool) {
	p.mu.Lock()
	p.noble = noble
	p.mu.Unlock()
}

// ClanID returns the clan ID, 0 without a clan.
func (p *Player) ClanID() int32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.clanID
}

// ClanLevel returns the clan level, 0 without a clan.
func (p *Player) ClanLevel() int32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.clanLevel
}

// IsClanLeader reports whether the player leads its clan.
func (p *Player) IsClanLeader() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.clanLeader
}

// SetClan sets clan membership. clanID 0 clears it.
func (p *Player) SetClan(clanID, clanLevel int32, leader bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if clanID == 0 {
		p.clanID, p.clanLevel, p.clanLeader = 0, 0, false
		return
	}
	p.clanID, p.clanLevel, p.clanLeader = clanID, clanLevel, leader
}

// Party returns the current party, nil if solo.
func (p *Player) Party() *Party {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.party
}

// SetParty sets the current party (nil to leave).
func (p *Player) SetParty(party *Party) {
	p.mu.Lock()
	p.party = party
	p.mu.Unlock()
}

// PartyMemberIDs returns character IDs of the party members, the player
// included. Nil when solo.
func (p *Player) PartyMemberIDs() []int64 {
	party := p.Party()
	if party == nil {
		return nil
	}
	return party.MemberIDs()
}

// Inventory returns the player's inventory.
func (p *Player) Inventory() *Inventory {
	return p.inventory
}

// ItemCount returns how many units of itemID the player holds.
func (p *Player) ItemCount(itemID int32) int64 {
	return p.inventory.Count(itemID)
}

// AddItem grants count units of itemID.
func (p *Player) AddItem(itemID int32, count int64) {
	p.inventory.Add(itemID, count)
}

// DestroyItem removes up to count units (all when count < 0), returns removed amount.
func (p *Player) DestroyItem(itemID int32, count int64) int64 {
	return p.inventory.Destroy(itemID, count)
}

// Experience returns total experience.
func (p *Player) Experience() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.experience
}

// SP returns skill points.
func (p *Player) SP() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sp
}

// AddExpAndSp adds experience and skill points. Negative values are ignored.
func (p *Player) AddExpAndSp(exp, sp int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if exp > 0 {
		p.experience += exp
	}
	if sp > 0 {
		p.sp += sp
	}
}

// SetSoundHandler installs the sink for PlaySound (usually the client connection).
func (p *Player) SetSoundHandler(fn SoundFunc) {
	p.mu.Lock()
	p.onSound = fn
	p.mu.Unlock()
}

// PlaySound sends a sound cue to the client. No-op without a sound handler.
func (p *Player) PlaySound(sound string) {
	p.mu.RLock()
	fn := p.onSound
	p.mu.RUnlock()
	if fn != nil {
		fn(sound)
	}
}
