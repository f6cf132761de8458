package voice

import (
	"reflect"
	"testing"
)

func TestEncodePhonemesEmptyTable(t *testing.T) {
	ids := EncodePhonemes("", map[string][]int64{})
	if len(ids) == 0 {
		t.Fatal("expected boundary defaults for empty input")
	}
	if !reflect.DeepEqual(ids, []int64{0, 0}) {
		t.Fatalf("expected default boundaries [0 0], got %v", ids)
	}
}

func TestEncodePhonemesWithTable(t *testing.T) {
	table := map[string][]int64{
		"^": {1},
		"_": {0},
		"$": {2},
		"a": {10},
		"b": {20, 21},
	}
	ids := EncodePhonemes("ab", table)
	want := []int64{1, 10, 0, 20, 21, 0, 2}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
}

func TestEncodePhonemesUnknownSymbolPadsOnly(t *testing.T) {
	table := map[string][]int64{
		"^": {1},
		"_": {0},
		"$": {2},
	}
	// "x" is not in the table: only the surrounding padding appears.
	ids := EncodePhonemes("x", table)
	want := []int64{1, 0, 2}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
}

func TestEncodePhonemesNoPadEntry(t *testing.T) {
	table := map[string][]int64{"a": {5}}
	ids := EncodePhonemes("aa", table)
	want := []int64{0, 5, 5, 0}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
}

func TestEncodePhonemesUnicodeScalars(t *testing.T) {
	// Iteration is by rune, not byte: a multi-byte IPA symbol matches its
	// single-character table entry.
	table := map[string][]int64{"ɛ": {33}}
	ids := EncodePhonemes("ɛ", table)
	want := []int64{0, 33, 0}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
}
