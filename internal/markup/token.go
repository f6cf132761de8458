package markup

// Mode is one of the five delivery modes toggled by paired tags.
type Mode int

const (
	ModeSlow Mode = iota
	ModeFast
	ModeEmphasis
	ModeSpell
	ModeWhisper
)

func (m Mode) String() string {
	switch m {
	case ModeSlow:
		return "slow"
	case ModeFast:
		return "fast"
	case ModeEmphasis:
		return "emphasis"
	case ModeSpell:
		return "spell"
	case ModeWhisper:
		return "whisper"
	}
	return "unknown"
}

// TokenKind discriminates Token variants.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenPause
	TokenModeStart
	TokenModeEnd
)

// Token is a single unit of tokenized markup: a literal text run, a pause
// directive, or a mode boundary. Tokens are produced once by Tokenize and
// consumed once by Render.
type Token struct {
	Kind    TokenKind
	Text    string // TokenText only
	Mode    Mode   // TokenModeStart and TokenModeEnd only
	PauseMS int    // TokenPause only; -1 when no duration was given
}
