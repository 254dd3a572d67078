package baseline

import (
	"testing"

	"github.com/aetherime/shurufa/trie"
)

func seedTrie() *trie.Trie {
	tr := trie.New()
	tr.Insert("world", 50)
	tr.Insert("thanks", 40)
	tr.Insert("thank", 25)
	tr.Insert("there", 35)
	tr.Insert("their", 20)
	return tr
}

func TestSuggestHelloWorld(t *testing.T) {
	s := New(seedTrie())
	r := s.Suggest("hello wor", 9, 32)

	if r.Suggestion != "ld" {
		t.Fatalf("suggestion = %q, want ld", r.Suggestion)
	}
	if r.ReplaceStart != 9 || r.ReplaceEnd != 9 {
		t.Fatalf("replace range = [%d,%d], want [9,9]", r.ReplaceStart, r.ReplaceEnd)
	}
	if r.Confidence < minConfidence {
		t.Fatalf("confidence %.4f below gate", r.Confidence)
	}
}

func TestSuggestNoSeededCompletion(t *testing.T) {
	s := New(seedTrie())
	// "中文hel" has UTF-16 length 5 ("中","文","h","e","l").
	r := s.Suggest("中文hel", 5, 32)

	if r.Suggestion != "" {
		t.Fatalf("suggestion = %q, want empty", r.Suggestion)
	}
	if r.ReplaceStart != 5 || r.ReplaceEnd != 5 {
		t.Fatalf("replace range = [%d,%d], want [5,5]", r.ReplaceStart, r.ReplaceEnd)
	}
}

func TestSuggestMixedScriptNoSpaceWhenBeforeIsASCII(t *testing.T) {
	s := New(seedTrie())
	// Cursor after the full string: before ends in ASCII 'e', not CJK,
	// so no separator space is inserted even though the completion is
	// an ASCII word.
	r := s.Suggest("你好the", 5, 32)

	if r.Suggestion != "re" {
		t.Fatalf("suggestion = %q, want re", r.Suggestion)
	}
}

func TestSuggestEmptyTrailingToken(t *testing.T) {
	s := New(seedTrie())
	r := s.Suggest("你好 ", 3, 32)

	if r.Suggestion != "" {
		t.Fatalf("suggestion = %q, want empty", r.Suggestion)
	}
}

func TestSuggestGatesShortToken(t *testing.T) {
	tr := trie.New()
	tr.Insert("at", 100)
	s := New(tr)

	r := s.Suggest("a", 1, 32)
	if r.Suggestion != "" {
		t.Fatalf("suggestion = %q, want empty (token_len < 2)", r.Suggestion)
	}
}

func TestSuggestConfidenceNeverBelowGateWhenProduced(t *testing.T) {
	// token_len >= 2 (required to pass the gate) and freq >= 1 (every
	// inserted word) together guarantee confidence >= 1-1/2+0.04 = 0.54,
	// so any produced suggestion clears the 0.50 floor with room to spare.
	tr := trie.New()
	tr.Insert("www", 1)
	s := New(tr)

	r := s.Suggest("ww", 2, 32)
	if r.Suggestion == "" {
		t.Fatal("expected a suggestion")
	}
	if r.Confidence < minConfidence {
		t.Fatalf("confidence %.4f below gate %.2f", r.Confidence, minConfidence)
	}
}

func TestSuggestTruncatesToMaxLen(t *testing.T) {
	tr := trie.New()
	tr.Insert("international", 99)
	s := New(tr)

	r := s.Suggest("inter", 5, 2)
	if len(r.Suggestion) > 2 {
		t.Fatalf("suggestion %q exceeds max_len 2", r.Suggestion)
	}
}

func TestSuggestClampsCursorPastEnd(t *testing.T) {
	s := New(seedTrie())
	r := s.Suggest("wor", 999, 32)

	if r.ReplaceStart != 3 || r.ReplaceEnd != 3 {
		t.Fatalf("replace range = [%d,%d], want clamped [3,3]", r.ReplaceStart, r.ReplaceEnd)
	}
}

func TestLastASCIITokenPrefix(t *testing.T) {
	cases := []struct {
		in       string
		wantTok  string
		wantLen  int
	}{
		{"hello wor", "wor", 3},
		{"你好 ", "", 0},
		{"", "", 0},
		{"foo_bar123", "foo_bar123", 10},
	}
	for _, c := range cases {
		tok, n := lastASCIITokenPrefix(c.in)
		if tok != c.wantTok || n != c.wantLen {
			t.Errorf("lastASCIITokenPrefix(%q) = (%q, %d), want (%q, %d)", c.in, tok, n, c.wantTok, c.wantLen)
		}
	}
}
