package command

import "strings"

// ParseResult is one console line split into a command word and arguments.
type ParseResult struct {
	// Command is the first word, lowercased.
	Command string
	// Args are the remaining whitespace-separated words.
	Args []string
	// RawArgs is the text after the command with inner spacing preserved.
	RawArgs string
}

// Parse splits a console line.
//
// Postcondition: Command is empty iff line is blank.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}
	word, rest, found := strings.Cut(line, " ")
	res := ParseResult{Command: strings.ToLower(word)}
	if !found {
		return res
	}
	res.RawArgs = strings.TrimSpace(rest)
	if res.RawArgs != "" {
		res.Args = strings.Fields(res.RawArgs)
	}
	return res
}
