package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParse_Blank(t *testing.T) {
	result := Parse("   ")
	assert.Equal(t, "", result.Command)
	assert.Nil(t, result.Args)
}

func TestParse_SingleWord(t *testing.T) {
	result := Parse("help")
	assert.Equal(t, "help", result.Command)
	assert.Nil(t, result.Args)
	assert.Equal(t, "", result.RawArgs)
}

func TestParse_LowercasesCommandOnly(t *testing.T) {
	result := Parse("HUNT Chan-1 Rook")
	assert.Equal(t, "hunt", result.Command)
	assert.Equal(t, []string{"Chan-1", "Rook"}, result.Args)
}

func TestParse_ExtraWhitespace(t *testing.T) {
	result := Parse("  player   p1   outskirts  Old   Rook ")
	assert.Equal(t, "player", result.Command)
	assert.Equal(t, []string{"p1", "outskirts", "Old", "Rook"}, result.Args)
	assert.Equal(t, "p1   outskirts  Old   Rook", result.RawArgs)
}

func TestPropertyParse_CommandIsLowercaseFirstWord(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[A-Za-z]{1,12}`).Draw(t, "word")
		args := rapid.SliceOfN(rapid.StringMatching(`[a-z0-9_-]{1,8}`), 0, 4).Draw(t, "args")
		line := word
		for _, a := range args {
			line += " " + a
		}
		result := Parse(line)
		for _, c := range result.Command {
			if c >= 'A' && c <= 'Z' {
				t.Fatalf("command %q kept uppercase", result.Command)
			}
		}
		if len(result.Args) != len(args) {
			t.Fatalf("Parse(%q) args = %v, want %v", line, result.Args, args)
		}
	})
}
