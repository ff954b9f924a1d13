package quest

import (
	"math"
	"time"

	"github.com/udisondev/l2quest/internal/rnd"
)

// Rates are server-wide multipliers applied to quest drops and rewards.
type Rates struct {
	Drop        float64 // quest item drop count
	RewardItems float64 // RewardItems count (adena included)
	RewardExp   float64
	RewardSp    float64
}

// DefaultRates returns x1 rates.
func DefaultRates() Rates {
	return Rates{Drop: 1, RewardItems: 1, RewardExp: 1, RewardSp: 1}
}

func scale(n int64, rate float64) int64 {
	if n <= 0 || rate <= 0 || rate == 1 {
		return n
	}
	scaled := int64(math.Round(float64(n) * rate))
	if scaled < 1 {
		scaled = 1
	}
	return scaled
}

func (r Rates) scaleDrop(n int64) int64   { return scale(n, r.Drop) }
func (r Rates) scaleReward(n int64) int64 { return scale(n, r.RewardItems) }
func (r Rates) scaleExp(n int64) int64    { return scale(n, r.RewardExp) }
func (r Rates) scaleSp(n int64) int64     { return scale(n, r.RewardSp) }

// partyView resolves the online quest states of a player's party members.
type partyView interface {
	partyStates(q *Quest, player Player) []*QuestState
}

type timerStarter interface {
	startQuestTimer(q *Quest, name string, delay time.Duration, player Player, npcObjID uint32)
	cancelQuestTimer(q *Quest, name string, player Player) bool
}

// env is the engine context shared by all states owned by one Manager.
type env struct {
	rng          rnd.Source
	rates        Rates
	party        partyView
	timerStarter timerStarter
}

// defaultEnv serves states that were created outside a Manager.
var defaultEnv = &env{
	rng:   rnd.Default(),
	rates: DefaultRates(),
}
