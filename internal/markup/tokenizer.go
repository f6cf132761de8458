package markup

import (
	"regexp"
	"strconv"
)

var tagPattern = regexp.MustCompile(`\[pause:(\d+)\]|\[pause\]|\[/?(slow|fast|emphasis|spell|whisper)\]`)

var modeByName = map[string]Mode{
	"slow":     ModeSlow,
	"fast":     ModeFast,
	"emphasis": ModeEmphasis,
	"spell":    ModeSpell,
	"whisper":  ModeWhisper,
}

// Tokenize splits input into literal text runs and directive tokens,
// left to right. It never fails: bracketed text that is not a recognized
// tag passes through as a literal run.
func Tokenize(input string) []Token {
	var tokens []Token
	last := 0
	for _, m := range tagPattern.FindAllStringSubmatchIndex(input, -1) {
		if m[0] > last {
			tokens = append(tokens, Token{Kind: TokenText, Text: input[last:m[0]]})
		}
		tokens = append(tokens, parseTag(input, m))
		last = m[1]
	}
	if last < len(input) {
		tokens = append(tokens, Token{Kind: TokenText, Text: input[last:]})
	}
	return tokens
}

func parseTag(input string, m []int) Token {
	if m[2] >= 0 {
		ms, err := strconv.Atoi(input[m[2]:m[3]])
		if err != nil {
			// Overflow on absurd digit runs; fall back to one pause unit.
			ms = 200
		}
		return Token{Kind: TokenPause, PauseMS: ms}
	}
	tag := input[m[0]:m[1]]
	if tag == "[pause]" {
		return Token{Kind: TokenPause, PauseMS: -1}
	}
	kind := TokenModeStart
	if tag[1] == '/' {
		kind = TokenModeEnd
	}
	return Token{Kind: kind, Mode: modeByName[input[m[4]:m[5]]]}
}
