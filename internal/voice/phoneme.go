package voice

// Reserved boundary symbols in a voice's phoneme table.
const (
	symbolStart = "^"
	symbolPad   = "_"
	symbolEnd   = "$"
)

// EncodePhonemes maps a phonetic transcription into the flat ID sequence
// the inference model consumes. Padding follows every input character,
// matched or not; characters absent from the table contribute no IDs of
// their own, so unknown symbols are dropped silently rather than erroring.
func EncodePhonemes(phonemes string, table map[string][]int64) []int64 {
	ids := appendBoundary(nil, table, symbolStart)
	for _, r := range phonemes {
		if mapped, ok := table[string(r)]; ok {
			ids = append(ids, mapped...)
		}
		if pad, ok := table[symbolPad]; ok {
			ids = append(ids, pad...)
		}
	}
	return appendBoundary(ids, table, symbolEnd)
}

func appendBoundary(ids []int64, table map[string][]int64, symbol string) []int64 {
	if mapped, ok := table[symbol]; ok {
		return append(ids, mapped...)
	}
	return append(ids, 0)
}
