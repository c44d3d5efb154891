package aggregate

import "sort"

// DefaultTopK is the length of the top list when no K is given.
const DefaultTopK = 10

// Entry is a token with its occurrence count.
type Entry struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Frequencies counts token occurrences and remembers the order in which
// tokens were first seen. The zero value is ready to use.
type Frequencies struct {
	counts map[string]int
	order  []string
}

// Add records one occurrence of token.
func (f *Frequencies) Add(token string) {
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	if _, ok := f.counts[token]; !ok {
		f.order = append(f.order, token)
	}
	f.counts[token]++
}

// Count returns the number of occurrences of token.
func (f *Frequencies) Count(token string) int {
	if f == nil {
		return 0
	}
	return f.counts[token]
}

// Len returns the number of distinct tokens.
func (f *Frequencies) Len() int {
	if f == nil {
		return 0
	}
	return len(f.order)
}

// Total returns the number of counted occurrences.
func (f *Frequencies) Total() int {
	total := 0
	for _, n := range f.Map() {
		total += n
	}
	return total
}

// Keys returns the distinct tokens in first-seen order.
func (f *Frequencies) Keys() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.order...)
}

// Entries returns every token with its count in first-seen order.
func (f *Frequencies) Entries() []Entry {
	if f == nil {
		return nil
	}
	out := make([]Entry, 0, len(f.order))
	for _, tok := range f.order {
		out = append(out, Entry{Token: tok, Count: f.counts[tok]})
	}
	return out
}

// Map returns a copy of the counts.
func (f *Frequencies) Map() map[string]int {
	out := make(map[string]int, f.Len())
	if f == nil {
		return out
	}
	for k, v := range f.counts {
		out[k] = v
	}
	return out
}

// Top returns the k most frequent tokens, count descending. Tokens with equal
// counts keep their first-seen order. k <= 0 selects DefaultTopK.
func (f *Frequencies) Top(k int) []Entry {
	if k <= 0 {
		k = DefaultTopK
	}
	entries := f.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if len(entries) > k {
		entries = entries[:k]
	}
	return entries
}

// Count builds Frequencies from tokens in a single left-to-right pass.
func Count(tokens []string) *Frequencies {
	f := &Frequencies{counts: make(map[string]int, len(tokens)/2+1)}
	for _, tok := range tokens {
		f.Add(tok)
	}
	return f
}

// Aggregate counts tokens and derives the top-k list.
func Aggregate(tokens []string, k int) (*Frequencies, []Entry) {
	f := Count(tokens)
	return f, f.Top(k)
}
