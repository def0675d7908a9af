package docx

import (
	"bytes"
	"encoding/xml"
	"html"
	"regexp"
	"strings"

	"github.com/allanpk716/evrak_generator/internal/domain"
)

var (
	paragraphTag   = regexp.MustCompile(`<w:p(?:\s[^>]*)?/?>|</w:p>`)
	textRunPattern = regexp.MustCompile(`<w:t(?: [^>]*)?>([^<]*)</w:t>`)
)

const (
	preserveOpen = `<w:t xml:space="preserve">`
	textClose    = `</w:t>`
	lineBreak    = textClose + `<w:br/>` + preserveOpen
)

// paragraph 段落在 XML 中的范围，children 为文本框等嵌套段落
type paragraph struct {
	start, end int
	children   []*paragraph
}

// scanParagraphs 按嵌套深度找出段落，返回最外层段落
// 自闭合段落和未闭合的段落被忽略
func scanParagraphs(content string) []*paragraph {
	var roots, stack []*paragraph
	for _, loc := range paragraphTag.FindAllStringIndex(content, -1) {
		tag := content[loc[0]:loc[1]]
		switch {
		case tag == "</w:p>":
			if len(stack) == 0 {
				continue
			}
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			p.end = loc[1]
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, p)
			} else {
				roots = append(roots, p)
			}
		case strings.HasSuffix(tag, "/>"):
		default:
			stack = append(stack, &paragraph{start: loc[0]})
		}
	}
	return roots
}

// ReplaceInParagraphs 按段落替换占位符
// 段落内各文本片段先拼接再替换，发生变化的段落把全部文本写入第一个片段
// 嵌套段落单独处理，不计入外层段落的文本
func ReplaceInParagraphs(content string, replacements domain.ReplacementMap, km domain.KeywordMatcher) (string, *domain.FillResult) {
	result := &domain.FillResult{}
	if len(replacements) == 0 {
		return content, result
	}

	var b strings.Builder
	last := 0
	for _, p := range scanParagraphs(content) {
		b.WriteString(content[last:p.start])
		b.WriteString(rewriteParagraph(content, p, replacements, km, result))
		last = p.end
	}
	b.WriteString(content[last:])
	return b.String(), result
}

// segment 段落自身的 XML 片段或已处理的嵌套段落
type segment struct {
	text   string
	nested bool
}

// rewriteParagraph 先处理嵌套段落，再在段落自身的文本片段上替换
func rewriteParagraph(content string, p *paragraph, replacements domain.ReplacementMap, km domain.KeywordMatcher, result *domain.FillResult) string {
	var segments []segment
	pos := p.start
	for _, child := range p.children {
		segments = append(segments,
			segment{text: content[pos:child.start]},
			segment{text: rewriteParagraph(content, child, replacements, km, result), nested: true})
		pos = child.end
	}
	segments = append(segments, segment{text: content[pos:p.end]})

	var joined strings.Builder
	for _, seg := range segments {
		if !seg.nested {
			joined.WriteString(runText(seg.text))
		}
	}

	matches := km.FindMatches(joined.String(), replacements)
	for _, m := range matches {
		result.Add(m.Keyword, 1)
	}
	replaced := km.ReplaceMatches(joined.String(), matches)
	first := true

	var b strings.Builder
	for _, seg := range segments {
		if seg.nested || len(matches) == 0 {
			b.WriteString(seg.text)
			continue
		}
		b.WriteString(textRunPattern.ReplaceAllStringFunc(seg.text, func(string) string {
			if first {
				first = false
				return preserveOpen + encodeText(replaced) + textClose
			}
			return preserveOpen + textClose
		}))
	}
	return b.String()
}

// encodeText 转义文本，换行转换为 w:br
func encodeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		var buf bytes.Buffer
		_ = xml.EscapeText(&buf, []byte(line))
		lines[i] = buf.String()
	}
	return strings.Join(lines, lineBreak)
}

// ExtractText 提取文档 XML 中的纯文本，段落之间以换行分隔
// 嵌套段落排在外层段落之前
func ExtractText(xmlContent string) string {
	var paragraphs []string
	var walk func(p *paragraph)
	walk = func(p *paragraph) {
		var b strings.Builder
		pos := p.start
		for _, child := range p.children {
			walk(child)
			b.WriteString(runText(xmlContent[pos:child.start]))
			pos = child.end
		}
		b.WriteString(runText(xmlContent[pos:p.end]))
		paragraphs = append(paragraphs, b.String())
	}
	for _, p := range scanParagraphs(xmlContent) {
		walk(p)
	}
	return strings.Join(paragraphs, "\n")
}

func runText(fragment string) string {
	var b strings.Builder
	for _, m := range textRunPattern.FindAllStringSubmatch(fragment, -1) {
		b.WriteString(html.UnescapeString(m[1]))
	}
	return b.String()
}
