package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/allanpk716/evrak_generator/internal/domain"
	"github.com/allanpk716/evrak_generator/internal/matcher"
)

// MethodCell 年度评估报告中写入风险评估方法的单元格
const MethodCell = "G15"

// methodWords G15 中方法占位文字的写法，按顺序取第一个出现的
var methodWords = []string{"METOD", "metod", "Metod", "METHOD", "method", "Method"}

// WorkbookFiller 填充 .xlsx 模板
type WorkbookFiller struct {
	logger         *zap.Logger
	keywordMatcher domain.KeywordMatcher
	deleteIfAbsent []string
}

// NewWorkbookFiller 创建表格填充器
// deleteIfAbsent 中的占位符在替换映射里没有条目时直接删除
func NewWorkbookFiller(logger *zap.Logger, deleteIfAbsent ...string) *WorkbookFiller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkbookFiller{
		logger:         logger,
		keywordMatcher: matcher.NewKeywordMatcher(),
		deleteIfAbsent: deleteIfAbsent,
	}
}

// Fill 实现 domain.DocumentFiller，方法取自替换映射中的 RDYONTEMI
func (wf *WorkbookFiller) Fill(ctx context.Context, templatePath, outputPath string, replacements domain.ReplacementMap) (*domain.FillResult, error) {
	method, ok := domain.ParseRiskMethod(replacements.Lookup(domain.TokenRiskMethod))
	if !ok {
		method = domain.MethodMatrix
	}
	return wf.FillWithMethod(ctx, templatePath, outputPath, replacements, method)
}

// FillWithMethod 替换所有工作表中字符串单元格的占位符
// 年度评估报告额外写入风险评估方法
func (wf *WorkbookFiller) FillWithMethod(ctx context.Context, templatePath, outputPath string, replacements domain.ReplacementMap, method domain.RiskMethod) (*domain.FillResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("打开工作簿失败: %w", err)
	}
	defer f.Close()

	result := &domain.FillResult{}
	removals := wf.removals(replacements)

	for _, sheet := range f.GetSheetList() {
		if err := wf.fillSheet(f, sheet, replacements, removals, result); err != nil {
			return nil, fmt.Errorf("处理工作表 %s 失败: %w", sheet, err)
		}
	}

	if IsEvaluationReport(templatePath) || IsEvaluationReport(outputPath) {
		sheet, err := WriteMethodCell(f, method)
		if err != nil {
			return nil, fmt.Errorf("写入风险评估方法失败: %w", err)
		}
		wf.logger.Info("已写入风险评估方法",
			zap.String("sheet", sheet),
			zap.String("cell", MethodCell),
			zap.String("method", string(method)))
	}

	if err := f.SaveAs(outputPath); err != nil {
		return nil, fmt.Errorf("保存工作簿失败: %w", err)
	}

	wf.logger.Info("Excel 文档已填充",
		zap.String("file", filepath.Base(outputPath)),
		zap.Int("substitutions", result.Substitutions),
		zap.Int("unresolved", len(result.Unresolved)))
	return result, nil
}

// removals 构造需要删除的占位符映射
func (wf *WorkbookFiller) removals(replacements domain.ReplacementMap) domain.ReplacementMap {
	out := domain.ReplacementMap{}
	for _, token := range wf.deleteIfAbsent {
		if _, ok := replacements[token]; !ok && token != "" {
			out[token] = ""
		}
	}
	return out
}

func (wf *WorkbookFiller) fillSheet(f *excelize.File, sheet string, replacements, removals domain.ReplacementMap, result *domain.FillResult) error {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return err
	}

	for r, row := range rows {
		for c, value := range row {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			isText, err := isTextCell(f, sheet, cell)
			if err != nil {
				return err
			}
			if !isText {
				continue
			}

			text := value
			if matches := wf.keywordMatcher.FindMatches(text, replacements); len(matches) > 0 {
				for _, m := range matches {
					result.Add(m.Keyword, 1)
				}
				text = wf.keywordMatcher.ReplaceMatches(text, matches)
			}
			if len(removals) > 0 {
				if cleared, n := wf.keywordMatcher.ReplaceAll(text, removals); n > 0 {
					for keyword, count := range matcher.CountMatches(wf.keywordMatcher, text, removals) {
						result.Add(keyword, count)
					}
					text = cleared
					wf.logger.Debug("删除未提供的占位符", zap.String("sheet", sheet), zap.String("cell", cell))
				}
			}

			result.Unresolved = appendUnique(result.Unresolved, matcher.FindPlaceholders(text)...)
			if text == value {
				continue
			}
			if err := f.SetCellStr(sheet, cell, text); err != nil {
				return err
			}
		}
	}
	return nil
}

// isTextCell 只处理共享字符串和内联字符串，公式单元格保持不变
func isTextCell(f *excelize.File, sheet, cell string) (bool, error) {
	cellType, err := f.GetCellType(sheet, cell)
	if err != nil {
		return false, err
	}
	if cellType != excelize.CellTypeSharedString && cellType != excelize.CellTypeInlineString {
		return false, nil
	}
	formula, err := f.GetCellFormula(sheet, cell)
	if err != nil {
		return false, err
	}
	return formula == "", nil
}

// IsEvaluationReport 按文件名判断是否为年度评估报告
func IsEvaluationReport(path string) bool {
	return matcher.ContainsAll(filepath.Base(path), "YILLIK", "DEGERLENDIRME", "RAPORU")
}

// WriteMethodCell 把风险评估方法写入 G15
// 依次查找含方法占位文字的单元格和空单元格，都没有时写入第一个工作表
// 占位文字的全部出现都被替换
func WriteMethodCell(f *excelize.File, method domain.RiskMethod) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("工作簿没有工作表")
	}

	for _, sheet := range sheets {
		value, err := f.GetCellValue(sheet, MethodCell)
		if err != nil {
			return "", err
		}
		if word := methodWord(value); word != "" {
			return sheet, f.SetCellStr(sheet, MethodCell, strings.ReplaceAll(value, word, string(method)))
		}
		if strings.TrimSpace(value) == "" {
			return sheet, f.SetCellStr(sheet, MethodCell, string(method))
		}
	}

	return sheets[0], f.SetCellStr(sheets[0], MethodCell, string(method))
}

func methodWord(value string) string {
	for _, word := range methodWords {
		if strings.Contains(value, word) {
			return word
		}
	}
	return ""
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}
