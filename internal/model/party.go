package model

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// MaxPartyMembers is the maximum party size (leader + 8 members).
const MaxPartyMembers = 9

var (
	// ErrPartyFull is returned when a tenth member tries to join.
	ErrPartyFull = errors.New("party full")
	// ErrAlreadyInParty is returned when the player already belongs to a party.
	ErrAlreadyInParty = errors.New("already in party")
)

// Party is a read-mostly group of players. Quest scripts only query it:
// who is in it, and which of them share a quest step.
// Membership changes keep each member's Player.Party in sync.
type Party struct {
	mu      sync.RWMutex
	id      int32
	leader  *Player
	members []*Player // leader всегда первый
}

// NewParty creates a party led by leader and attaches it to the leader.
func NewParty(id int32, leader *Player) *Party {
	p := &Party{
		id:      id,
		leader:  leader,
		members: make([]*Player, 1, MaxPartyMembers),
	}
	p.members[0] = leader
	leader.SetParty(p)
	return p
}

// ID returns the party ID.
func (p *Party) ID() int32 {
	return p.id
}

// Leader returns the current leader.
func (p *Party) Leader() *Player {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.leader
}

// Members returns a snapshot of the members, leader first.
func (p *Party) Members() []*Player {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.members)
}

// MemberIDs returns the character IDs of all members, leader first.
func (p *Party) MemberIDs() []int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]int64, 0, len(p.members))
	for _, m := range p.members {
		ids = append(ids, m.CharacterID())
	}
	return ids
}

// MemberCount returns the number of members.
func (p *Party) MemberCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.members)
}

// IsMember reports whether the player with objectID is in the party.
func (p *Party) IsMember(objectID uint32) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.indexLocked(objectID) >= 0
}

func (p *Party) indexLocked(objectID uint32) int {
	return slices.IndexFunc(p.members, func(m *Player) bool {
		return m.ObjectID() == objectID
	})
}

// AddMember adds player to the party and attaches the party to the player.
func (p *Party) AddMember(player *Player) error {
	if other := player.Party(); other != nil && other != p {
		return fmt.Errorf("add %s to party %d: %w", player.Name(), p.id, ErrAlreadyInParty)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.indexLocked(player.ObjectID()) >= 0 {
		return fmt.Errorf("add %s to party %d: %w", player.Name(), p.id, ErrAlreadyInParty)
	}
	if len(p.members) >= MaxPartyMembers {
		return fmt.Errorf("add %s to party %d (max %d members): %w", player.Name(), p.id, MaxPartyMembers, ErrPartyFull)
	}

	p.members = append(p.members, player)
	player.SetParty(p)
	return nil
}

// RemoveMember removes the player with objectID and detaches the party from it.
// A leaving leader hands leadership to the next member.
// Returns true if fewer than 2 members remain and the party should disband.
func (p *Party) RemoveMember(objectID uint32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := p.indexLocked(objectID)
	if idx < 0 {
		return false
	}

	left := p.members[idx]
	p.members = slices.Delete(p.members, idx, idx+1)
	left.SetParty(nil)

	if p.leader == left && len(p.members) > 0 {
		p.leader = p.members[0]
	}
	return len(p.members) < 2
}
