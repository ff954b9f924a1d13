package quest

// Actor is the read-only character surface consulted by quest scripts to gate
// dialog branches.
type Actor interface {
	ObjectID() uint32
	CharacterID() int64
	Name() string
	Level() int32
	RaceID() int32
	ClassID() int32
	ClassTier() int32 // 0 = base class, 1 = first profession, ...
	Karma() int32
	IsNoble() bool
	ClanID() int32
	ClanLevel() int32
	IsClanLeader() bool

	// PartyMemberIDs returns character IDs of the party including the player,
	// or nil when the player is not in a party.
	PartyMemberIDs() []int64
}

// Inventory is the item surface QuestState wraps.
type Inventory interface {
	ItemCount(itemID int32) int64
	AddItem(itemID int32, count int64)
	// DestroyItem removes up to count units; count < 0 removes all.
	// Returns the number of units removed.
	DestroyItem(itemID int32, count int64) int64
}

// Rewardable receives experience and skill points.
type Rewardable interface {
	AddExpAndSp(exp, sp int64)
}

// SoundPlayer plays client-side sound cues. Fire-and-forget.
type SoundPlayer interface {
	PlaySound(file string)
}

// Player is everything the engine needs from a character.
type Player interface {
	Actor
	Inventory
	Rewardable
	SoundPlayer
}
