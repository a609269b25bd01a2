package tui

import "strings"

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses a command string (without the leading ':').
func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)
	parts := strings.SplitN(input, " ", 2)
	cmd := Command{Name: strings.ToLower(parts[0])}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd
}

// NewArgs splits the arguments of ":new" into a kind and a name. The kind
// accepts "chat", "team" or "teams"; a missing kind means a chat.
func (c Command) NewArgs() (kind, name string) {
	first, rest, _ := strings.Cut(c.Args, " ")
	switch strings.ToLower(first) {
	case "chat":
		return "chat", strings.TrimSpace(rest)
	case "team", "teams":
		return "teams", strings.TrimSpace(rest)
	default:
		return "chat", c.Args
	}
}
