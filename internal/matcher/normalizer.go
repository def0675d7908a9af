package matcher

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UnnamedFile 清理后为空时使用的文件名
const UnnamedFile = "UNNAMED"

var forbiddenFileChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// 兼容分解后去掉组合附加符号
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// 分解后仍无法变为 ASCII 的字母
var asciiFold = map[rune]string{
	'Ç': "C", 'ç': "c",
	'Ğ': "G", 'ğ': "g",
	'İ': "I", 'ı': "i", 'ì': "i", 'í': "i", 'î': "i", 'ï': "i",
	'Ö': "O", 'ö': "o", 'ò': "o", 'ó': "o", 'ô': "o", 'õ': "o",
	'Ş': "S", 'ş': "s",
	'Ü': "U", 'ü': "u", 'ù': "u", 'ú': "u", 'û': "u",
	'ا': "a", 'ب': "b", 'ت': "t", 'ث': "th", 'ج': "j", 'ح': "h",
	'خ': "kh", 'د': "d", 'ذ': "dh", 'ر': "r", 'ز': "z", 'س': "s",
	'ش': "sh", 'ص': "s", 'ض': "d", 'ط': "t", 'ظ': "z", 'ع': "a",
	'غ': "gh", 'ف': "f", 'ق': "q", 'ك': "k", 'ل': "l", 'م': "m",
	'ن': "n", 'ه': "h", 'و': "w", 'ي': "y",
}

// SanitizeFilename 生成可用于任何主流文件系统的文件名，结果不会为空
func SanitizeFilename(name string) string {
	cleaned := norm.NFKC.String(name)
	cleaned = strings.TrimSpace(cleaned)
	cleaned = forbiddenFileChars.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return UnnamedFile
	}
	return cleaned
}

// NormalizeForComparison 把文本折叠为大写 ASCII 形式，用于宽松比较
func NormalizeForComparison(text string) string {
	stripped, _, err := transform.String(stripMarks, text)
	if err != nil {
		stripped = norm.NFKD.String(text)
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if repl, ok := asciiFold[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// LooseEquals 宽松比较，b 是否等于或包含于 a，不对称
func LooseEquals(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	upperA, upperB := strings.ToUpper(a), strings.ToUpper(b)
	if upperA == upperB {
		return true
	}
	normA, normB := NormalizeForComparison(a), NormalizeForComparison(b)
	if normA == normB {
		return true
	}
	return strings.Contains(upperA, upperB) || strings.Contains(normA, normB)
}

// ContainsAll 规范化后 text 是否包含所有片段
func ContainsAll(text string, parts ...string) bool {
	normalized := NormalizeForComparison(text)
	for _, p := range parts {
		if !strings.Contains(normalized, NormalizeForComparison(p)) {
			return false
		}
	}
	return true
}

// ContainsAny 规范化后 text 是否包含任一片段
func ContainsAny(text string, parts ...string) bool {
	normalized := NormalizeForComparison(text)
	for _, p := range parts {
		if strings.Contains(normalized, NormalizeForComparison(p)) {
			return true
		}
	}
	return false
}
