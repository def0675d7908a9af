package matcher

import (
	"regexp"
	"sort"

	"github.com/allanpk716/evrak_generator/internal/domain"
)

var embeddedPlaceholder = regexp.MustCompile(`\[[^\[\]:\s][^\[\]:]*:[^\[\]]+\]`)

// keywordMatcher 占位符匹配器实现，按字面量匹配
type keywordMatcher struct {
	patternCache map[string]*regexp.Regexp
}

// NewKeywordMatcher 创建新的关键词匹配器
func NewKeywordMatcher() domain.KeywordMatcher {
	return &keywordMatcher{
		patternCache: make(map[string]*regexp.Regexp),
	}
}

// FindMatches 在内容中查找所有不重叠的占位符
// 同一位置上较长的键优先，结果按位置从后往前排列
func (km *keywordMatcher) FindMatches(content string, keywords domain.ReplacementMap) []domain.Match {
	var candidates []domain.Match

	for _, keyword := range SortedKeys(keywords) {
		pattern := km.getOrCreatePattern(regexp.QuoteMeta(keyword))
		for _, index := range pattern.FindAllStringIndex(content, -1) {
			candidates = append(candidates, domain.Match{
				Keyword:     keyword,
				Replacement: keywords[keyword],
				StartPos:    index[0],
				EndPos:      index[1],
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].StartPos != candidates[j].StartPos {
			return candidates[i].StartPos < candidates[j].StartPos
		}
		return candidates[i].EndPos > candidates[j].EndPos
	})

	matches := make([]domain.Match, 0, len(candidates))
	lastEnd := -1
	for _, m := range candidates {
		if m.StartPos < lastEnd {
			continue
		}
		matches = append(matches, m)
		lastEnd = m.EndPos
	}

	// 从后往前替换避免位置偏移
	for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
		matches[i], matches[j] = matches[j], matches[i]
	}
	return matches
}

// ReplaceMatches 根据匹配结果替换内容
func (km *keywordMatcher) ReplaceMatches(content string, matches []domain.Match) string {
	result := content

	for _, match := range matches {
		if match.StartPos >= 0 && match.EndPos <= len(result) && match.StartPos <= match.EndPos {
			result = result[:match.StartPos] + match.Replacement + result[match.EndPos:]
		}
	}

	return result
}

// ReplaceAll 替换全部占位符，返回新内容和替换次数
func (km *keywordMatcher) ReplaceAll(content string, keywords domain.ReplacementMap) (string, int) {
	if content == "" || len(keywords) == 0 {
		return content, 0
	}
	matches := km.FindMatches(content, keywords)
	if len(matches) == 0 {
		return content, 0
	}
	return km.ReplaceMatches(content, matches), len(matches)
}

// getOrCreatePattern 获取或创建正则表达式模式
func (km *keywordMatcher) getOrCreatePattern(escapedKeyword string) *regexp.Regexp {
	if pattern, exists := km.patternCache[escapedKeyword]; exists {
		return pattern
	}

	pattern := regexp.MustCompile(escapedKeyword)
	km.patternCache[escapedKeyword] = pattern
	return pattern
}

// CountMatches 统计每个占位符在内容中出现的次数
func CountMatches(km domain.KeywordMatcher, content string, keywords domain.ReplacementMap) map[string]int {
	stats := make(map[string]int)
	for _, m := range km.FindMatches(content, keywords) {
		stats[m.Keyword]++
	}
	return stats
}

// SortedKeys 返回确定顺序的键：长度降序，其次字典序，忽略空键
func SortedKeys(keywords domain.ReplacementMap) []string {
	keys := make([]string, 0, len(keywords))
	for k := range keywords {
		if k == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// FindPlaceholders 返回文本中出现的 [前缀:标识] 占位符，去重并保持出现顺序
func FindPlaceholders(text string) []string {
	var found []string
	seen := make(map[string]bool)
	for _, p := range embeddedPlaceholder.FindAllString(text, -1) {
		if seen[p] {
			continue
		}
		seen[p] = true
		found = append(found, p)
	}
	return found
}
