package quests

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/l2quest/internal/game/quest"
)

// constructors lists every implemented quest in registration order.
var constructors = []func() *quest.Quest{
	NewQ00001, // Letters of Love
	NewQ00021, // Hidden Truth
	NewQ00162, // Curse of the Underground Fortress
	NewQ00257, // The Guard is Busy
	NewQ00303, // Collect Arrowheads
	NewQ00629, // Clean Up the Swamp of Screams
}

// RegisterAll creates all implemented quests and adds them to the builder.
func RegisterAll(b *quest.RegistryBuilder) error {
	for _, ctor := range constructors {
		q := ctor()
		if err := b.Add(q); err != nil {
			return fmt.Errorf("register quest %q (ID=%d): %w", q.Name(), q.ID(), err)
		}
	}

	slog.Info("quests registered", "count", len(constructors))
	return nil
}

// NewRegistry builds a registry with all implemented quests.
func NewRegistry() (*quest.Registry, error) {
	b := quest.NewRegistryBuilder()
	if err := RegisterAll(b); err != nil {
		return nil, err
	}
	return b.Build(), nil
}
