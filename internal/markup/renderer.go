package markup

import (
	"strings"
	"unicode"
)

const pauseMarker = "..."

type renderState struct {
	slow     bool
	fast     bool
	emphasis bool
	spell    bool
	whisper  bool
}

// Render folds the token stream into plain text, mapping each literal run
// through the active mode combination. Mode precedence is fixed: spell is
// exclusive, then emphasis applies, then whisper (exclusive of slow/fast),
// then slow, then fast. Unmatched mode tags are tolerated: ending an
// inactive mode is a no-op, an unclosed mode stays active to end of input.
func Render(tokens []Token) string {
	var out strings.Builder
	var state renderState
	for _, tok := range tokens {
		switch tok.Kind {
		case TokenText:
			out.WriteString(state.apply(tok.Text))
		case TokenPause:
			out.WriteString(pauseFiller(tok.PauseMS))
		case TokenModeStart:
			state.set(tok.Mode, true)
		case TokenModeEnd:
			state.set(tok.Mode, false)
		}
	}
	return out.String()
}

// Process compiles annotated text into synthesizer-ready plain text.
func Process(input string) string {
	return Render(Tokenize(input))
}

func (s *renderState) set(mode Mode, active bool) {
	switch mode {
	case ModeSlow:
		s.slow = active
	case ModeFast:
		s.fast = active
	case ModeEmphasis:
		s.emphasis = active
	case ModeSpell:
		s.spell = active
	case ModeWhisper:
		s.whisper = active
	}
}

// pauseFiller scales a pause to filler dots: 200ms per dot, floor of three.
func pauseFiller(ms int) string {
	if ms < 0 {
		return pauseMarker
	}
	dots := ms / 200
	if dots < 3 {
		dots = 3
	}
	return strings.Repeat(".", dots)
}

func (s renderState) apply(text string) string {
	if s.spell {
		return spellOut(text)
	}
	if s.emphasis {
		text = strings.ToUpper(text)
	}
	if s.whisper {
		return "(" + strings.ToLower(text) + ")"
	}
	if s.slow {
		words := strings.Fields(text)
		if len(words) == 0 {
			return ""
		}
		return strings.Join(words, pauseMarker+" ") + pauseMarker
	}
	if s.fast {
		text = strings.ReplaceAll(text, pauseMarker, "")
		text = strings.ReplaceAll(text, ",", "")
	}
	return text
}

// spellOut reads a run letter by letter: "BBC" becomes "B. B. C.".
// Non-alphanumeric characters are dropped.
func spellOut(text string) string {
	var letters []string
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		letters = append(letters, strings.ToUpper(string(r))+".")
	}
	return strings.Join(letters, " ")
}
