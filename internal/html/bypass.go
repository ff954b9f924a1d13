package html

import (
	"fmt"
	"strconv"
	"strings"
)

// BypassCommand represents a parsed NPC bypass command.
// Format: "npc_<objectID>_<command> [args...]"
type BypassCommand struct {
	ObjectID uint32
	Command  string   // "Quest", "Chat", "Link"
	Args     []string // arguments after space in command part
}

// allowedCommands is a whitelist of valid NPC bypass commands.
var allowedCommands = map[string]bool{
	"Quest": true,
	"Chat":  true,
	"Link":  true,
}

// ParseNpcBypass parses a bypass string in format "npc_<objectID>_<command> [args...]".
func ParseNpcBypass(bypass string) (*BypassCommand, error) {
	if !strings.HasPrefix(bypass, "npc_") {
		return nil, fmt.Errorf("not an NPC bypass: %s", bypass)
	}

	// Split "npc_<objectID>_<command> args" into ["npc", "<objectID>", "<command> args"]
	parts := strings.SplitN(bypass, "_", 3)
	if len(parts) < 3 {
		return nil, fmt.Errorf("malformed NPC bypass: %s", bypass)
	}

	objectID, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid objectID in bypass %q: %w", bypass, err)
	}

	// parts[2] may contain "Quest Q00001_LettersOfLove 30048-03.htm" or just "Quest"
	cmdParts := strings.SplitN(parts[2], " ", 2)
	cmdName := cmdParts[0]

	if !allowedCommands[cmdName] {
		return nil, fmt.Errorf("unknown bypass command: %s", cmdName)
	}

	var args []string
	if len(cmdParts) > 1 && cmdParts[1] != "" {
		args = strings.Fields(cmdParts[1])
	}

	return &BypassCommand{
		ObjectID: uint32(objectID),
		Command:  cmdName,
		Args:     args,
	}, nil
}

// QuestBypass is a parsed "Quest" bypass.
//
//	npc_<obj>_Quest                    → quest list of the NPC
//	npc_<obj>_Quest <name>             → talk to the NPC for that quest
//	npc_<obj>_Quest <name> <event...>  → advance event of that quest
type QuestBypass struct {
	ObjectID  uint32
	QuestName string
	Event     string
}

// ParseQuestBypass parses an NPC "Quest" bypass.
func ParseQuestBypass(bypass string) (*QuestBypass, error) {
	cmd, err := ParseNpcBypass(bypass)
	if err != nil {
		return nil, err
	}
	if cmd.Command != "Quest" {
		return nil, fmt.Errorf("not a quest bypass: %s", bypass)
	}

	qb := &QuestBypass{ObjectID: cmd.ObjectID}
	if len(cmd.Args) > 0 {
		qb.QuestName = cmd.Args[0]
	}
	if len(cmd.Args) > 1 {
		qb.Event = strings.Join(cmd.Args[1:], " ")
	}
	return qb, nil
}
