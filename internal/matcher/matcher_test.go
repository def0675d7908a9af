package matcher

import (
	"testing"

	"github.com/allanpk716/evrak_generator/internal/domain"
)

func TestNewKeywordMatcher(t *testing.T) {
	matcher := NewKeywordMatcher()
	if matcher == nil {
		t.Fatal("Expected non-nil matcher")
	}
}

func TestKeywordMatcher_FindMatches(t *testing.T) {
	keywordMap := domain.ReplacementMap{
		"[DEĞİŞTİR:PROJEADI]":      "ACME",
		"[DEĞİŞTİR:ÇALIŞANSAYISI]": "75",
		"[DEĞİŞTİR:ŞİRKET UNVANI]": "Acme A.Ş.",
	}

	matcher := NewKeywordMatcher()

	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{
			name:     "single match",
			text:     "Proje: [DEĞİŞTİR:PROJEADI]",
			expected: 1,
		},
		{
			name:     "multiple matches",
			text:     "[DEĞİŞTİR:ŞİRKET UNVANI] - [DEĞİŞTİR:PROJEADI] ([DEĞİŞTİR:ÇALIŞANSAYISI])",
			expected: 3,
		},
		{
			name:     "no matches",
			text:     "Herhangi bir yer tutucu yok",
			expected: 0,
		},
		{
			name:     "duplicate matches",
			text:     "[DEĞİŞTİR:PROJEADI] ve [DEĞİŞTİR:PROJEADI]",
			expected: 2,
		},
		{
			name:     "broken token",
			text:     "[DEĞİŞTİR:PROJEADI ve DEĞİŞTİR:PROJEADI]",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := matcher.FindMatches(tt.text, keywordMap)
			if len(matches) != tt.expected {
				t.Errorf("FindMatches() = %v matches, expected %v", len(matches), tt.expected)
			}
		})
	}
}

func TestKeywordMatcher_LongestKeyWins(t *testing.T) {
	keywordMap := domain.ReplacementMap{
		"[X:A]":   "short",
		"[X:A]B]": "long",
	}

	matcher := NewKeywordMatcher()
	result, count := matcher.ReplaceAll("<[X:A]B]>", keywordMap)

	if result != "<long>" {
		t.Errorf("ReplaceAll() = %q, expected %q", result, "<long>")
	}
	if count != 1 {
		t.Errorf("ReplaceAll() count = %d, expected 1", count)
	}
}

func TestKeywordMatcher_ReplaceAll(t *testing.T) {
	keywordMap := domain.ReplacementMap{
		"[DEĞİŞTİR:PROJEADI]":   "ACME",
		"[DEĞİŞTİR:YILLIK:YIL]": "2024",
	}

	matcher := NewKeywordMatcher()

	tests := []struct {
		name          string
		text          string
		expected      string
		expectedCount int
	}{
		{
			name:          "single replacement",
			text:          "Proje [DEĞİŞTİR:PROJEADI]!",
			expected:      "Proje ACME!",
			expectedCount: 1,
		},
		{
			name:          "multiple replacements",
			text:          "[DEĞİŞTİR:PROJEADI] [DEĞİŞTİR:YILLIK:YIL] yılı",
			expected:      "ACME 2024 yılı",
			expectedCount: 2,
		},
		{
			name:          "unknown token untouched",
			text:          "[DEĞİŞTİR:BILINMEYEN]",
			expected:      "[DEĞİŞTİR:BILINMEYEN]",
			expectedCount: 0,
		},
		{
			name:          "empty content",
			text:          "",
			expected:      "",
			expectedCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, count := matcher.ReplaceAll(tt.text, keywordMap)
			if result != tt.expected {
				t.Errorf("ReplaceAll() = %q, expected %q", result, tt.expected)
			}
			if count != tt.expectedCount {
				t.Errorf("ReplaceAll() count = %d, expected %d", count, tt.expectedCount)
			}
		})
	}
}

func TestKeywordMatcher_ValuesAreNotRescanned(t *testing.T) {
	keywordMap := domain.ReplacementMap{
		"[A:B]": "[A:C]",
		"[A:C]": "done",
	}

	matcher := NewKeywordMatcher()
	result, count := matcher.ReplaceAll("[A:B]", keywordMap)

	if result != "[A:C]" {
		t.Errorf("ReplaceAll() = %q, expected %q", result, "[A:C]")
	}
	if count != 1 {
		t.Errorf("ReplaceAll() count = %d, expected 1", count)
	}
}

func TestCountMatches(t *testing.T) {
	keywordMap := domain.ReplacementMap{"[A:B]": "x", "[A:C]": "y"}
	stats := CountMatches(NewKeywordMatcher(), "[A:B][A:B][A:C]", keywordMap)

	if stats["[A:B]"] != 2 || stats["[A:C]"] != 1 {
		t.Errorf("CountMatches() = %v", stats)
	}
}

func TestSortedKeys(t *testing.T) {
	keys := SortedKeys(domain.ReplacementMap{"[A:BB]": "", "[A:C]": "", "[A:B]": "", "": "ignored"})
	expected := []string{"[A:BB]", "[A:B]", "[A:C]"}

	if len(keys) != len(expected) {
		t.Fatalf("SortedKeys() = %v, expected %v", keys, expected)
	}
	for i := range expected {
		if keys[i] != expected[i] {
			t.Errorf("SortedKeys()[%d] = %q, expected %q", i, keys[i], expected[i])
		}
	}
}

func TestFindPlaceholders(t *testing.T) {
	text := "Tarih: [DEĞİŞTİR:YILLIK:TARİH] / [DEĞİŞTİR:PROJEADI] [a b] [DEĞİŞTİR:PROJEADI]"
	got := FindPlaceholders(text)
	if len(got) != 2 {
		t.Fatalf("FindPlaceholders() = %v, expected 2 tokens", got)
	}
	if got[0] != "[DEĞİŞTİR:YILLIK:TARİH]" || got[1] != "[DEĞİŞTİR:PROJEADI]" {
		t.Errorf("FindPlaceholders() = %v", got)
	}
	if got := FindPlaceholders("no tokens here"); got != nil {
		t.Errorf("FindPlaceholders() = %v, expected nil", got)
	}
}
