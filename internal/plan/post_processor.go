// Package plan 年度计划表的填充后处理：清除已过月份的标记，按规则表删除单元格
package plan

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/allanpk716/evrak_generator/internal/datasource"
	"github.com/allanpk716/evrak_generator/internal/domain"
	"github.com/allanpk716/evrak_generator/internal/matcher"
)

// HeaderScanRows 查找月份表头时扫描的行数
const HeaderScanRows = 25

// MarkSentinel 计划表中表示已安排的标记
const MarkSentinel = "X"

// MonthNames 按日历顺序排列的月份名称
var MonthNames = [12]string{
	"OCAK", "ŞUBAT", "MART", "NİSAN", "MAYIS", "HAZİRAN",
	"TEMMUZ", "AĞUSTOS", "EYLÜL", "EKİM", "KASIM", "ARALIK",
}

// PostProcessor 年度计划后处理器，无状态，可重复执行
type PostProcessor struct {
	logger *zap.Logger
	rules  *datasource.RuleSet
	strict bool
	now    func() time.Time
}

// NewPostProcessor 创建后处理器
// strict 为 true 时规则表中没有对应条目视为错误
func NewPostProcessor(logger *zap.Logger, rules *datasource.RuleSet, strict bool) *PostProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostProcessor{
		logger: logger,
		rules:  rules,
		strict: strict,
		now:    time.Now,
	}
}

// MonthIndex 返回月份名称对应的 1-12，未识别返回 0
func MonthIndex(value string) int {
	normalized := matcher.NormalizeForComparison(strings.TrimSpace(value))
	if normalized == "" {
		return 0
	}
	for i, name := range MonthNames {
		if normalized == matcher.NormalizeForComparison(name) {
			return i + 1
		}
	}
	return 0
}

// ParseReferenceDate 解析 dd.mm.yyyy 格式的日期
func ParseReferenceDate(value string) (time.Time, bool) {
	t, err := time.Parse(domain.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ApplyElapsedMonthClearing 清除参考日期之前各月份列中的 X 标记，返回清除的单元格数
// 日期为空或无法解析时使用当前日期
func (p *PostProcessor) ApplyElapsedMonthClearing(path string, family domain.PlanFamily, referenceDate string) (int, error) {
	reference, ok := ParseReferenceDate(referenceDate)
	if !ok {
		if referenceDate != "" {
			p.logger.Warn("参考日期无法解析，使用当前日期", zap.String("date", referenceDate))
		}
		reference = p.now()
	}
	currentMonth := int(reference.Month())

	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("打开计划表失败: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, fmt.Errorf("读取工作表 %s 失败: %w", sheet, err)
	}

	headerRow := findHeaderRow(rows, family.DefaultHeaderRow())
	p.logger.Debug("月份表头",
		zap.String("file", filepath.Base(path)),
		zap.Int("row", headerRow),
		zap.Int("current_month", currentMonth))

	if headerRow > len(rows) {
		return 0, nil
	}

	cleared := 0
	for col, header := range rows[headerRow-1] {
		month := MonthIndex(header)
		if month == 0 || month >= currentMonth {
			continue
		}
		for r := headerRow; r < len(rows); r++ {
			if col >= len(rows[r]) || !isMark(rows[r][col]) {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, r+1)
			if err != nil {
				return cleared, err
			}
			if err := ClearCell(f, sheet, cell); err != nil {
				return cleared, fmt.Errorf("清除单元格 %s 失败: %w", cell, err)
			}
			cleared++
		}
	}

	if cleared == 0 {
		return 0, nil
	}
	if err := f.Save(); err != nil {
		return cleared, fmt.Errorf("保存计划表失败: %w", err)
	}

	p.logger.Info("已清除过去月份的标记",
		zap.String("file", filepath.Base(path)),
		zap.Int("cells", cleared))
	return cleared, nil
}

// ApplyRuleBasedDeletion 按 (月份, 计划类型) 查规则表并清空列出的单元格，返回清除的单元格数
// 日期缺失或无效、没有匹配规则时不做任何修改
func (p *PostProcessor) ApplyRuleBasedDeletion(path string, variant domain.PlanVariant, referenceDate string) (int, error) {
	if strings.TrimSpace(referenceDate) == "" {
		p.logger.Info("未提供年度日期，跳过删除规则", zap.String("file", filepath.Base(path)))
		return 0, nil
	}
	reference, ok := ParseReferenceDate(referenceDate)
	if !ok {
		p.logger.Warn("年度日期无法解析，跳过删除规则", zap.String("date", referenceDate))
		return 0, nil
	}

	month := int(reference.Month())
	key := variant.Key()
	rule, found := p.rules.Lookup(month, key)
	if !found {
		if p.strict {
			return 0, fmt.Errorf("%w: ay=%d plan_tipi=%s", domain.ErrRuleNotFound, month, key)
		}
		p.logger.Info("没有匹配的删除规则", zap.Int("month", month), zap.String("plan_key", key))
		return 0, nil
	}
	if len(rule.Cells) == 0 {
		return 0, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("打开计划表失败: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	removed := 0
	for _, ref := range rule.Cells {
		value, err := f.GetCellValue(sheet, ref)
		if err != nil {
			p.logger.Warn("无效的单元格引用", zap.String("cell", ref), zap.Error(err))
			continue
		}
		if value == "" {
			continue
		}
		if err := ClearCell(f, sheet, ref); err != nil {
			return removed, fmt.Errorf("清除单元格 %s 失败: %w", ref, err)
		}
		removed++
	}

	if removed == 0 {
		return 0, nil
	}
	if err := f.Save(); err != nil {
		return removed, fmt.Errorf("保存计划表失败: %w", err)
	}

	p.logger.Info("已按规则删除单元格",
		zap.String("file", filepath.Base(path)),
		zap.Int("month", month),
		zap.String("plan_key", key),
		zap.Int("cells", removed))
	return removed, nil
}

// ClearCell 清空单元格的值，并去掉填充和字体样式
func ClearCell(f *excelize.File, sheet, cell string) error {
	if err := f.SetCellValue(sheet, cell, nil); err != nil {
		return err
	}

	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return err
	}
	if styleID == 0 {
		return nil
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		return err
	}
	style.Fill = excelize.Fill{}
	style.Font = nil

	newID, err := f.NewStyle(style)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, newID)
}

// findHeaderRow 在前 HeaderScanRows 行中查找含月份名称的行，找不到返回默认行
func findHeaderRow(rows [][]string, fallback int) int {
	for r := 0; r < len(rows) && r < HeaderScanRows; r++ {
		for _, value := range rows[r] {
			if MonthIndex(value) > 0 {
				return r + 1
			}
		}
	}
	return fallback
}

func isMark(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), MarkSentinel)
}
