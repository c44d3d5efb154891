package tokenize

import (
	"reflect"
	"testing"
)

func TestTokenize_CaseAndPunctuation(t *testing.T) {
	got := Tokenize("Hello hello HELLO!")
	want := []string{"hello", "hello", "hello"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v got %v", want, got)
	}
}

func TestTokenize_Empty(t *testing.T) {
	if got := Tokenize(""); len(got) != 0 {
		t.Fatalf("expected no tokens, got %v", got)
	}
	if got := Tokenize("  ...,;!?  \n\t"); len(got) != 0 {
		t.Fatalf("expected no tokens for punctuation only, got %v", got)
	}
}

func TestTokenize_Separators(t *testing.T) {
	got := Tokenize("don't stop-me now: snake_case 42nd x2")
	want := []string{"don", "t", "stop", "me", "now", "snake_case", "42nd", "x2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v got %v", want, got)
	}
}

func TestTokenize_Unicode(t *testing.T) {
	got := Tokenize("Ĉu vi ŜATAS Café? Ünïcödé, 東京 ２０２４")
	want := []string{"ĉu", "vi", "ŝatas", "café", "ünïcödé", "東京", "２０２４"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v got %v", want, got)
	}
}

func TestTokenize_Order(t *testing.T) {
	got := Tokenize("The cat sat on the mat. The cat was happy.")
	want := []string{"the", "cat", "sat", "on", "the", "mat", "the", "cat", "was", "happy"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v got %v", want, got)
	}
}
