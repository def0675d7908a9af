// Package company 根据 SGK 短码从工作场所表生成公司表单数据
package company

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/allanpk716/evrak_generator/internal/datasource"
)

// SGKCodeLength 短 SGK 码的位数
const SGKCodeLength = 7

// 工作场所表中的固定列，从 0 开始
const (
	ColProvince     = 3
	ColCompanyTitle = 4
	ColProjectName  = 6
	ColNaceCode     = 9
	ColSGKRegistry  = 10
	ColShortSGK     = 15
	ColHazardClass  = 16
	ColStaffCount   = 19
	ColExpert       = 21
	ColPhysician    = 25
	ColAddress      = 31
)

// ShortSGKHeader 短 SGK 码列的表头，找不到时使用 ColShortSGK
const ShortSGKHeader = "KISA SGK"

var (
	ErrInvalidSGKCode  = errors.New("SGK 短码必须是 7 位数字")
	ErrCompanyNotFound = errors.New("工作场所表中没有该 SGK 短码")
)

// Record 工作场所表中的一行公司数据
type Record struct {
	ShortSGK     string
	Province     string
	CompanyTitle string
	ProjectName  string
	NaceCode     string
	SGKRegistry  string
	HazardClass  string
	StaffCount   string
	Expert       string
	Physician    string
	Address      string
}

// Directory 工作场所表和 NACE 表
type Directory struct {
	workplaces *datasource.Sheet
	sgkColumn  int
	nace       map[string]string
	logger     *zap.Logger
}

// LoadDirectory 读取工作场所表，NACE 表可选，读取失败只记录警告
func LoadDirectory(workplacePath, nacePath string, logger *zap.Logger) (*Directory, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	sheet, err := datasource.ReadFirstSheet(workplacePath)
	if err != nil {
		return nil, err
	}

	d := &Directory{
		workplaces: sheet,
		sgkColumn:  sheet.ColumnIndex(ShortSGKHeader),
		nace:       make(map[string]string),
		logger:     logger,
	}
	if d.sgkColumn < 0 {
		d.sgkColumn = ColShortSGK
	}

	if nacePath != "" {
		if err := d.loadNace(nacePath); err != nil {
			logger.Warn("NACE 表读取失败", zap.String("path", nacePath), zap.Error(err))
		}
	}

	logger.Debug("工作场所表已加载",
		zap.Int("rows", len(sheet.Rows)),
		zap.Int("nace", len(d.nace)))
	return d, nil
}

// loadNace 第一列为代码，第二列为说明
func (d *Directory) loadNace(path string) error {
	sheet, err := datasource.ReadFirstSheet(path)
	if err != nil {
		return err
	}
	for _, row := range sheet.Rows {
		code := strings.TrimSpace(sheet.Cell(row, 0))
		if code == "" {
			continue
		}
		if _, exists := d.nace[code]; !exists {
			d.nace[code] = strings.TrimSpace(sheet.Cell(row, 1))
		}
	}
	return nil
}

// ValidateSGKCode 检查短码是否为 7 位数字
func ValidateSGKCode(code string) error {
	code = strings.TrimSpace(code)
	if len(code) != SGKCodeLength {
		return fmt.Errorf("%w: %q", ErrInvalidSGKCode, code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: %q", ErrInvalidSGKCode, code)
		}
	}
	return nil
}

// Lookup 返回第一行短码相同的公司
func (d *Directory) Lookup(code string) (Record, error) {
	code = strings.TrimSpace(code)
	if err := ValidateSGKCode(code); err != nil {
		return Record{}, err
	}

	for _, row := range d.workplaces.Rows {
		if strings.TrimSpace(d.workplaces.Cell(row, d.sgkColumn)) != code {
			continue
		}
		cell := func(col int) string {
			return strings.TrimSpace(d.workplaces.Cell(row, col))
		}
		return Record{
			ShortSGK:     code,
			Province:     cell(ColProvince),
			CompanyTitle: cell(ColCompanyTitle),
			ProjectName:  cell(ColProjectName),
			NaceCode:     cell(ColNaceCode),
			SGKRegistry:  cell(ColSGKRegistry),
			HazardClass:  cell(ColHazardClass),
			StaffCount:   cell(ColStaffCount),
			Expert:       cell(ColExpert),
			Physician:    cell(ColPhysician),
			Address:      cell(ColAddress),
		}, nil
	}
	return Record{}, fmt.Errorf("%w: %s", ErrCompanyNotFound, code)
}

// NaceDescription NACE 代码的说明，找不到返回空字符串
func (d *Directory) NaceDescription(code string) string {
	return d.nace[strings.TrimSpace(code)]
}
