package quest

// ChanceScale is the denominator of drop chances: chances are parts per million.
const ChanceScale = 1_000_000

// DropRow is one entry of a multi-item drop table.
type DropRow struct {
	ItemID   int32
	Count    int64 // units granted per successful roll
	MaxCount int64 // quota; <= 0 means uncapped
	Chance   int   // parts per million
}

// roll draws one value in [0, ChanceScale) and compares it to chance.
func (qs *QuestState) roll(chance int) bool {
	return qs.environment().rng.IntN(ChanceScale) < chance
}

// grant adds count (drop-rate scaled) units of itemID, clamped so the held count
// never exceeds maxCount. reached is true iff this grant made the held count
// equal maxCount. maxCount <= 0 grants without a cap and never reports reached.
func (qs *QuestState) grant(itemID int32, count, maxCount int64) (granted int64, reached bool) {
	p := qs.Player()
	if p == nil || count <= 0 {
		return 0, false
	}
	count = qs.environment().rates.scaleDrop(count)

	if maxCount <= 0 {
		p.AddItem(itemID, count)
		return count, false
	}

	held := p.ItemCount(itemID)
	if held >= maxCount {
		return 0, false
	}
	if held+count > maxCount {
		count = maxCount - held
	}
	p.AddItem(itemID, count)
	return count, held+count == maxCount
}

// grantWithSound grants and plays MIDDLE on reaching the quota, ITEMGET otherwise.
func (qs *QuestState) grantWithSound(itemID int32, count, maxCount int64) (int64, bool) {
	granted, reached := qs.grant(itemID, count, maxCount)
	switch {
	case reached:
		qs.PlaySound(SoundMiddle)
	case granted > 0:
		qs.PlaySound(SoundItemGet)
	}
	return granted, reached
}

// DropItems makes one drop attempt: with probability chance/ChanceScale it grants
// count units of itemID, never letting the held count exceed maxCount.
// Returns true iff this grant brought the held count to exactly maxCount.
// With maxCount <= 0 the drop is uncapped and never signals completion;
// use DropItemsUncapped for a per-roll success signal.
func (qs *QuestState) DropItems(itemID int32, count, maxCount int64, chance int) bool {
	if !qs.roll(chance) {
		return false
	}
	_, reached := qs.grantWithSound(itemID, count, maxCount)
	return reached
}

// DropItemsAlways is DropItems without the chance roll.
func (qs *QuestState) DropItemsAlways(itemID int32, count, maxCount int64) bool {
	_, reached := qs.grantWithSound(itemID, count, maxCount)
	return reached
}

// DropItemsUncapped makes one uncapped drop attempt and returns true on every
// successful roll. Used for open-ended farming paid out at turn-in.
func (qs *QuestState) DropItemsUncapped(itemID int32, count int64, chance int) bool {
	if !qs.roll(chance) {
		return false
	}
	granted, _ := qs.grantWithSound(itemID, count, 0)
	return granted > 0
}

// DropMultipleItems rolls every row independently, in order, and grants the
// successful ones. Returns true iff after this call every row is at its quota
// and at least one row reached it during this call, i.e. the full set was
// completed by this event. A table with an uncapped row never completes.
func (qs *QuestState) DropMultipleItems(rows []DropRow) bool {
	if len(rows) == 0 {
		return false
	}

	allDone := true
	anyReached := false
	var anyGranted bool
	for _, row := range rows {
		reached := false
		if qs.roll(row.Chance) {
			var granted int64
			granted, reached = qs.grant(row.ItemID, row.Count, row.MaxCount)
			anyGranted = anyGranted || granted > 0
		}
		if reached {
			anyReached = true
		}
		if row.MaxCount <= 0 || qs.GetQuestItemsCount(row.ItemID) < row.MaxCount {
			allDone = false
		}
	}

	done := allDone && anyReached
	switch {
	case done:
		qs.PlaySound(SoundMiddle)
	case anyGranted:
		qs.PlaySound(SoundItemGet)
	}
	return done
}

// PartyMembers returns the states of online party members (the player included)
// that are started and, when cond > 0, at that progress step. A player without a
// party gets only its own state if eligible.
func (qs *QuestState) PartyMembers(cond int) []*QuestState {
	eligible := func(s *QuestState) bool {
		return s.IsStarted() && (cond <= 0 || s.GetCond() == cond)
	}

	var candidates []*QuestState
	if e := qs.environment(); e.party != nil {
		if p := qs.Player(); p != nil {
			candidates = e.party.partyStates(qs.quest, p)
		}
	}
	if len(candidates) == 0 {
		candidates = []*QuestState{qs}
	}

	out := make([]*QuestState, 0, len(candidates))
	for _, s := range candidates {
		if eligible(s) {
			out = append(out, s)
		}
	}
	return out
}

// RandomPartyMember picks exactly one eligible party member (see PartyMembers)
// to receive a kill's drop roll. Returns nil when nobody qualifies.
func (qs *QuestState) RandomPartyMember(cond int) *QuestState {
	members := qs.PartyMembers(cond)
	switch len(members) {
	case 0:
		return nil
	case 1:
		return members[0]
	}
	return members[qs.environment().rng.IntN(len(members))]
}
