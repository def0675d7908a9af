package datasource

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

// Sheet 工作表的表头和数据行
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ColumnIndex 按表头名称查找列，忽略大小写和首尾空白，找不到返回 -1
func (s *Sheet) ColumnIndex(name string) int {
	want := normalizeHeader(name)
	for i, h := range s.Header {
		if normalizeHeader(h) == want {
			return i
		}
	}
	return -1
}

// Cell 安全读取单元格，越界返回空字符串
func (s *Sheet) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// ReadFirstSheet 读取工作簿第一个工作表，第一行作为表头
func ReadFirstSheet(path string) (*Sheet, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewDataSourceError(path, "文件不存在", err)
		}
		return nil, NewDataSourceError(path, "无法访问文件", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, NewDataSourceError(path, "无法打开工作簿", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewDataSourceError(path, "工作簿没有工作表", ErrMissingColumn)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, NewDataSourceError(path, "读取工作表失败", err)
	}
	if len(rows) == 0 {
		return nil, NewDataSourceError(path, "工作表为空", ErrMissingColumn)
	}

	return &Sheet{
		Name:   sheets[0],
		Header: rows[0],
		Rows:   rows[1:],
	}, nil
}

// writeSheet 把表头和数据行写入新的工作簿
func writeSheet(path string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("写入表头失败: %w", err)
	}

	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("写入第 %d 行失败: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("保存工作簿失败: %w", err)
	}
	return nil
}

func normalizeHeader(h string) string {
	return strings.ToUpper(strings.TrimSpace(norm.NFC.String(h)))
}
