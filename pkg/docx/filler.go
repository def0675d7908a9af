package docx

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/allanpk716/evrak_generator/internal/domain"
	"github.com/allanpk716/evrak_generator/internal/matcher"
)

// Filler 填充 .docx 模板
type Filler struct {
	logger  *zap.Logger
	matcher domain.KeywordMatcher
}

// NewFiller 创建 Word 文档填充器
func NewFiller(logger *zap.Logger) *Filler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filler{
		logger:  logger,
		matcher: matcher.NewKeywordMatcher(),
	}
}

// Fill 读取模板，替换正文、表格和页眉页脚中的占位符后写入 outputPath
// templatePath 与 outputPath 可以相同
func (f *Filler) Fill(ctx context.Context, templatePath, outputPath string, replacements domain.ReplacementMap) (*domain.FillResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wrapper := &DocxWrapper{}
	if err := wrapper.OpenDocument(templatePath); err != nil {
		return nil, err
	}
	defer wrapper.Close()

	content, result := ReplaceInParagraphs(wrapper.Content(), replacements, f.matcher)
	wrapper.SetContent(content)

	if err := wrapper.SaveDocument(outputPath); err != nil {
		return nil, err
	}
	if err := wrapper.Close(); err != nil {
		return nil, fmt.Errorf("关闭源文档失败: %w", err)
	}

	partsResult, partTexts, err := replaceInHeadersFooters(outputPath, replacements, f.matcher)
	if err != nil {
		return nil, fmt.Errorf("页眉页脚替换失败: %w", err)
	}
	result.Merge(partsResult)

	texts := append([]string{ExtractText(content)}, partTexts...)
	result.Unresolved = matcher.FindPlaceholders(strings.Join(texts, "\n"))

	f.logger.Info("Word 文档已填充",
		zap.String("file", filepath.Base(outputPath)),
		zap.Int("substitutions", result.Substitutions),
		zap.Int("unresolved", len(result.Unresolved)))
	for _, token := range result.Unresolved {
		f.logger.Debug("未替换的占位符", zap.String("file", filepath.Base(outputPath)), zap.String("token", token))
	}
	return result, nil
}
