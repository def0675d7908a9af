package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/allanpk716/evrak_generator/internal/domain"
	"github.com/allanpk716/evrak_generator/pkg/docx"
)

// documentProcessor 文档处理器实现，按扩展名分派到 Word 或 Excel 填充器
type documentProcessor struct {
	logger   *zap.Logger
	word     domain.DocumentFiller
	workbook *WorkbookFiller
}

// NewDocumentProcessor 创建新的文档处理器
func NewDocumentProcessor(logger *zap.Logger, deleteIfAbsent ...string) domain.DocumentProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &documentProcessor{
		logger:   logger,
		word:     docx.NewFiller(logger),
		workbook: NewWorkbookFiller(logger, deleteIfAbsent...),
	}
}

// Fill 填充文档，返回替换统计
func (dp *documentProcessor) Fill(ctx context.Context, templatePath, outputPath string, replacements domain.ReplacementMap, method domain.RiskMethod) (*domain.FillResult, error) {
	if err := dp.ValidateDocument(templatePath); err != nil {
		return nil, fmt.Errorf("文档验证失败: %w", err)
	}
	if outputPath == "" {
		return nil, fmt.Errorf("输出路径不能为空")
	}
	if replacements == nil {
		replacements = domain.ReplacementMap{}
	}

	dp.logger.Debug("开始处理文档",
		zap.String("template", templatePath),
		zap.String("output", outputPath))

	switch domain.FormatFromPath(templatePath) {
	case domain.FormatWord:
		return dp.word.Fill(ctx, templatePath, outputPath, replacements)
	case domain.FormatSpreadsheet:
		return dp.workbook.FillWithMethod(ctx, templatePath, outputPath, replacements, method)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Ext(templatePath))
	}
}

// FillDocument 填充文档，失败只记录日志并返回 false
func (dp *documentProcessor) FillDocument(ctx context.Context, templatePath, outputPath string, replacements domain.ReplacementMap, method domain.RiskMethod) bool {
	if _, err := dp.Fill(ctx, templatePath, outputPath, replacements, method); err != nil {
		dp.logger.Error("文档填充失败",
			zap.String("file", filepath.Base(templatePath)),
			zap.Error(err))
		return false
	}
	return true
}

// ValidateDocument 验证文档是否存在且格式受支持
func (dp *documentProcessor) ValidateDocument(inputPath string) error {
	if inputPath == "" {
		return fmt.Errorf("输入路径不能为空")
	}
	if domain.FormatFromPath(inputPath) == domain.FormatUnknown {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Base(inputPath))
	}

	info, err := os.Stat(inputPath)
	if err != nil {
		return fmt.Errorf("无法打开文档: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("路径是目录: %s", inputPath)
	}
	return nil
}
