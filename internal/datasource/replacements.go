package datasource

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/allanpk716/evrak_generator/internal/domain"
)

// 替换表默认表头
const (
	DefaultKeyHeader   = "Anahtar"
	DefaultValueHeader = "Karşılık"
)

// MaxYearlyCompanies 年度数据表最多容纳的公司数
const MaxYearlyCompanies = 20

// TableOptions 替换表的列名
type TableOptions struct {
	KeyHeader   string
	ValueHeader string
}

// DefaultTableOptions 返回默认列名
func DefaultTableOptions() TableOptions {
	return TableOptions{
		KeyHeader:   DefaultKeyHeader,
		ValueHeader: DefaultValueHeader,
	}
}

func (o TableOptions) withDefaults() TableOptions {
	if o.KeyHeader == "" {
		o.KeyHeader = DefaultKeyHeader
	}
	if o.ValueHeader == "" {
		o.ValueHeader = DefaultValueHeader
	}
	return o
}

// LoadReplacements 读取替换表
// 有键有值的行记录值，只有键的行记录空字符串，没有键的行跳过
func LoadReplacements(path string, opts TableOptions) (domain.ReplacementMap, error) {
	opts = opts.withDefaults()

	sheet, err := ReadFirstSheet(path)
	if err != nil {
		return nil, err
	}

	keyCol := sheet.ColumnIndex(opts.KeyHeader)
	if keyCol < 0 {
		return nil, NewDataSourceError(path, "缺少列 "+opts.KeyHeader, ErrMissingColumn)
	}
	valueCol := sheet.ColumnIndex(opts.ValueHeader)
	if valueCol < 0 {
		return nil, NewDataSourceError(path, "缺少列 "+opts.ValueHeader, ErrMissingColumn)
	}

	replacements := make(domain.ReplacementMap)
	for _, row := range sheet.Rows {
		key := strings.TrimSpace(sheet.Cell(row, keyCol))
		if key == "" {
			continue
		}
		replacements[key] = sheet.Cell(row, valueCol)
	}
	return replacements, nil
}

// LoadKeys 按表中顺序读取所有键
func LoadKeys(path string, opts TableOptions) ([]string, error) {
	opts = opts.withDefaults()

	sheet, err := ReadFirstSheet(path)
	if err != nil {
		return nil, err
	}
	keyCol := sheet.ColumnIndex(opts.KeyHeader)
	if keyCol < 0 {
		return nil, NewDataSourceError(path, "缺少列 "+opts.KeyHeader, ErrMissingColumn)
	}

	var keys []string
	seen := make(map[string]bool)
	for _, row := range sheet.Rows {
		key := strings.TrimSpace(sheet.Cell(row, keyCol))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys, nil
}

// SaveReplacements 以键列和值列写出新的替换表
func SaveReplacements(path string, keys []string, values domain.ReplacementMap, opts TableOptions) error {
	opts = opts.withDefaults()

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, values[k]})
	}
	return writeSheet(path, []string{opts.KeyHeader, opts.ValueHeader}, rows)
}

// UpdateReplacements 只更新已有键对应的值，返回更新的行数
func UpdateReplacements(path string, values domain.ReplacementMap, opts TableOptions) (int, error) {
	opts = opts.withDefaults()

	sheet, err := ReadFirstSheet(path)
	if err != nil {
		return 0, err
	}
	keyCol := sheet.ColumnIndex(opts.KeyHeader)
	valueCol := sheet.ColumnIndex(opts.ValueHeader)
	if keyCol < 0 || valueCol < 0 {
		return 0, NewDataSourceError(path, "缺少键或值列", ErrMissingColumn)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, NewDataSourceError(path, "无法打开工作簿", err)
	}
	defer f.Close()

	updated := 0
	for i, row := range sheet.Rows {
		key := strings.TrimSpace(sheet.Cell(row, keyCol))
		value, ok := values[key]
		if key == "" || !ok {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(valueCol+1, i+2)
		if err != nil {
			return updated, err
		}
		if err := f.SetCellStr(sheet.Name, cell, value); err != nil {
			return updated, fmt.Errorf("写入单元格 %s 失败: %w", cell, err)
		}
		updated++
	}

	if err := f.Save(); err != nil {
		return updated, fmt.Errorf("保存替换表失败: %w", err)
	}
	return updated, nil
}

// YearlyColumn 年度数据表第 n 个公司的值列名
func YearlyColumn(n int, opts TableOptions) string {
	return fmt.Sprintf("%s%d", opts.withDefaults().ValueHeader, n)
}

// LoadYearlyData 读取年度数据表，每个值列对应一个公司
// 遇到第一个不存在的值列即停止
func LoadYearlyData(path string, opts TableOptions) ([]domain.ReplacementMap, error) {
	opts = opts.withDefaults()

	sheet, err := ReadFirstSheet(path)
	if err != nil {
		return nil, err
	}
	keyCol := sheet.ColumnIndex(opts.KeyHeader)
	if keyCol < 0 {
		return nil, NewDataSourceError(path, "缺少列 "+opts.KeyHeader, ErrMissingColumn)
	}

	var companies []domain.ReplacementMap
	for n := 1; n <= MaxYearlyCompanies; n++ {
		col := sheet.ColumnIndex(YearlyColumn(n, opts))
		if col < 0 {
			break
		}
		values := make(domain.ReplacementMap)
		for _, row := range sheet.Rows {
			key := strings.TrimSpace(sheet.Cell(row, keyCol))
			if key == "" {
				continue
			}
			values[key] = sheet.Cell(row, col)
		}
		companies = append(companies, values)
	}
	return companies, nil
}

// SaveYearlyData 写出年度数据表，超过上限的公司被忽略
func SaveYearlyData(path string, keys []string, companies []domain.ReplacementMap, opts TableOptions) error {
	opts = opts.withDefaults()
	if len(companies) > MaxYearlyCompanies {
		companies = companies[:MaxYearlyCompanies]
	}

	header := []string{opts.KeyHeader}
	for n := range companies {
		header = append(header, YearlyColumn(n+1, opts))
	}

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		row := []string{k}
		for _, c := range companies {
			row = append(row, c[k])
		}
		rows = append(rows, row)
	}
	return writeSheet(path, header, rows)
}
