package models

import "strings"

// CommandType enumerates supported text command categories.
type CommandType string

const (
	CommandAdd     CommandType = "add"
	CommandRemove  CommandType = "remove"
	CommandFarm    CommandType = "farm"
	CommandAnnual  CommandType = "annual"
	CommandMonthly CommandType = "monthly"
	CommandRange   CommandType = "range"
	CommandSummary CommandType = "summary"
	CommandFarms   CommandType = "farms"
	CommandYears   CommandType = "years"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

var knownCommands = map[string]CommandType{
	string(CommandAdd):     CommandAdd,
	string(CommandRemove):  CommandRemove,
	string(CommandFarm):    CommandFarm,
	string(CommandAnnual):  CommandAnnual,
	string(CommandMonthly): CommandMonthly,
	string(CommandRange):   CommandRange,
	string(CommandSummary): CommandSummary,
	string(CommandFarms):   CommandFarms,
	string(CommandYears):   CommandYears,
	string(CommandHelp):    CommandHelp,
}

// Command represents a parsed text instruction.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text. Only the command word is
// lowercased: farm ids are matched exactly.
func ParseCommand(message string) Command {
	cmd := Command{Raw: message, Type: CommandUnknown}

	tokens := strings.Fields(strings.TrimSpace(message))
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.TrimPrefix(strings.ToLower(tokens[0]), "/")
	if t, ok := knownCommands[head]; ok {
		cmd.Type = t
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
