package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "ACME İnşaat", "ACME İnşaat"},
		{"forbidden characters", `A/B\C:D*E?F"G<H>I|J`, "ABCDEFGHIJ"},
		{"trim", "  Proje  ", "Proje"},
		{"only forbidden", `/\:*?"<>|`, UnnamedFile},
		{"empty", "", UnnamedFile},
		{"trailing forbidden", "a /", "a"},
		{"compatibility form", "ﬁle", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeFilename_Idempotent(t *testing.T) {
	inputs := []string{"", " a / b ", "Şirket: Ünvan?", `"x"`, "ＡＢＣ"}
	for _, in := range inputs {
		once := SanitizeFilename(in)
		assert.Equal(t, once, SanitizeFilename(once), "input %q", in)
		assert.NotEmpty(t, once)
		assert.NotContains(t, once, "/")
	}
}

func TestNormalizeForComparison(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Eğitim Planı", "EGITIM PLANI"},
		{"ÇALIŞMA", "CALISMA"},
		{"DEĞERLENDİRME", "DEGERLENDIRME"},
		{"Şubat", "SUBAT"},
		{"Nisan", "NISAN"},
		{"Ağustos", "AGUSTOS"},
		{"Eylül", "EYLUL"},
		{"Öğrenci", "OGRENCI"},
		{"café", "CAFE"},
		{"شريف", "SHRYF"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeForComparison(tt.input))
		})
	}
}

func TestLooseEquals(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected bool
	}{
		{"case insensitive", "yillik", "YILLIK", true},
		{"accent insensitive", "YILLIK EĞİTİM PLANI KURULLU.xlsx", "yıllık egitim plani kurullu.XLSX", true},
		{"contains", "ACME - YILLIK DEĞERLENDİRME RAPORU.xlsx", "RAPORU", true},
		{"normalized contains", "yıllık değerlendirme", "DEGERLENDIRME", true},
		{"empty left", "", "x", false},
		{"empty right", "x", "", false},
		{"unrelated", "RİSK ANALİZİ", "EĞİTİM", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LooseEquals(tt.a, tt.b))
		})
	}
}

func TestLooseEquals_Asymmetric(t *testing.T) {
	assert.True(t, LooseEquals("YILLIK EĞİTİM PLANI", "EĞİTİM"))
	assert.False(t, LooseEquals("EĞİTİM", "YILLIK EĞİTİM PLANI"))
}

func TestContainsAllAndAny(t *testing.T) {
	name := "ACME - Yıllık Değerlendirme Raporu.xlsx"
	assert.True(t, ContainsAll(name, "YILLIK", "DEĞERLENDİRME", "RAPORU"))
	assert.False(t, ContainsAll(name, "YILLIK", "PLANI"))
	assert.True(t, ContainsAny(name, "PLANI", "RAPORU"))
	assert.False(t, ContainsAny(name, "FINE KINNEY"))
}
