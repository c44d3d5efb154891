package aggregate

import (
	"fmt"
	"reflect"
	"testing"
)

func TestAggregate_CountsAndTop(t *testing.T) {
	freq, top := Aggregate([]string{"a", "b", "a", "c", "a", "b"}, 0)
	want := map[string]int{"a": 3, "b": 2, "c": 1}
	if !reflect.DeepEqual(freq.Map(), want) {
		t.Fatalf("want %v got %v", want, freq.Map())
	}
	wantTop := []Entry{{"a", 3}, {"b", 2}, {"c", 1}}
	if !reflect.DeepEqual(top, wantTop) {
		t.Fatalf("want top %v got %v", wantTop, top)
	}
	if freq.Total() != 6 || freq.Len() != 3 {
		t.Fatalf("unexpected total=%d len=%d", freq.Total(), freq.Len())
	}
}

func TestAggregate_Empty(t *testing.T) {
	freq, top := Aggregate(nil, 10)
	if freq.Len() != 0 || len(top) != 0 {
		t.Fatalf("expected empty results, got %d entries and %v", freq.Len(), top)
	}
}

func TestTop_TruncatesToK(t *testing.T) {
	var tokens []string
	for i := 0; i < 15; i++ {
		for j := 0; j <= i; j++ {
			tokens = append(tokens, fmt.Sprintf("w%02d", i))
		}
	}
	_, top := Aggregate(tokens, 0)
	if len(top) != DefaultTopK {
		t.Fatalf("expected %d entries, got %d", DefaultTopK, len(top))
	}
	if top[0].Token != "w14" || top[0].Count != 15 {
		t.Fatalf("unexpected head %v", top[0])
	}
	if top[9].Token != "w05" {
		t.Fatalf("unexpected tail %v", top[9])
	}
	for i := 1; i < len(top); i++ {
		if top[i-1].Count < top[i].Count {
			t.Fatalf("top list not sorted: %v", top)
		}
	}
	_, three := Aggregate(tokens, 3)
	if len(three) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(three))
	}
}

func TestTop_TiesKeepFirstSeenOrder(t *testing.T) {
	_, top := Aggregate([]string{"zeta", "alpha", "mid", "alpha", "zeta", "mid", "last"}, 10)
	want := []Entry{{"zeta", 2}, {"alpha", 2}, {"mid", 2}, {"last", 1}}
	if !reflect.DeepEqual(top, want) {
		t.Fatalf("want %v got %v", want, top)
	}
}

func TestFrequencies_KeysFirstSeen(t *testing.T) {
	f := Count([]string{"b", "a", "b", "c", "a"})
	if got := f.Keys(); !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Fatalf("unexpected key order %v", got)
	}
	keys := f.Keys()
	keys[0] = "mutated"
	if f.Keys()[0] != "b" {
		t.Fatalf("Keys must return a copy")
	}
}

func TestFrequencies_ZeroValue(t *testing.T) {
	var f Frequencies
	f.Add("x")
	f.Add("x")
	if f.Count("x") != 2 || f.Count("y") != 0 {
		t.Fatalf("unexpected counts %v", f.Map())
	}
	var nilFreq *Frequencies
	if nilFreq.Len() != 0 || nilFreq.Count("x") != 0 || len(nilFreq.Top(5)) != 0 {
		t.Fatalf("nil Frequencies should behave as empty")
	}
}
