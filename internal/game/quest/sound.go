package quest

// Sound is a client sound cue played on quest progress.
type Sound string

const (
	SoundAccept  Sound = "ItemSound.quest_accept"
	SoundMiddle  Sound = "ItemSound.quest_middle"
	SoundFinish  Sound = "ItemSound.quest_finish"
	SoundItemGet Sound = "ItemSound.quest_itemget"
	SoundJackpot Sound = "ItemSound.quest_jackpot"
	SoundGiveUp  Sound = "ItemSound.quest_giveup"
)
