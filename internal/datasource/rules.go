package datasource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/allanpk716/evrak_generator/internal/domain"
)

// 删除规则表的列名
const (
	RuleColumnMonth = "ay"
	RuleColumnPlan  = "plan_tipi"
	RuleColumnCells = "hucreler"
)

// RuleSet 只读的删除规则集合，保留文件中的顺序
type RuleSet struct {
	rules   []domain.DeletionRule
	skipped int
}

// RuleGap 没有规则覆盖的月份和计划键
type RuleGap struct {
	Month   int    `yaml:"month"`
	PlanKey string `yaml:"plan_key"`
}

// LoadDeletionRules 从 CSV 文件读取删除规则
func LoadDeletionRules(path string) (*RuleSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开删除规则文件失败: %w", err)
	}
	defer file.Close()

	rs, err := ParseDeletionRules(file)
	if err != nil {
		return nil, fmt.Errorf("解析删除规则文件 %s 失败: %w", path, err)
	}
	return rs, nil
}

// ParseDeletionRules 解析 ay,plan_tipi,hucreler 格式的规则
func ParseDeletionRules(r io.Reader) (*RuleSet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("规则文件为空: %w", ErrMissingColumn)
		}
		return nil, err
	}

	cols := map[string]int{RuleColumnMonth: -1, RuleColumnPlan: -1, RuleColumnCells: -1}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, ok := cols[name]; ok {
			cols[name] = i
		}
	}
	for name, idx := range cols {
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	rs := &RuleSet{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		field := func(name string) string {
			idx := cols[name]
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		month, err := strconv.Atoi(field(RuleColumnMonth))
		planKey := field(RuleColumnPlan)
		if err != nil || month < 1 || month > 12 || planKey == "" {
			rs.skipped++
			continue
		}

		rs.rules = append(rs.rules, domain.DeletionRule{
			Month:   month,
			PlanKey: planKey,
			Cells:   ParseCellList(field(RuleColumnCells)),
		})
	}
	return rs, nil
}

// ParseCellList 解析分号分隔的单元格列表
func ParseCellList(value string) []string {
	var cells []string
	for _, part := range strings.Split(value, ";") {
		cell := strings.ToUpper(strings.TrimSpace(part))
		if cell != "" {
			cells = append(cells, cell)
		}
	}
	return cells
}

// Lookup 返回第一条匹配月份和计划键的规则
func (rs *RuleSet) Lookup(month int, planKey string) (domain.DeletionRule, bool) {
	if rs == nil {
		return domain.DeletionRule{}, false
	}
	for _, rule := range rs.rules {
		if rule.Month == month && rule.PlanKey == planKey {
			return rule, true
		}
	}
	return domain.DeletionRule{}, false
}

// Len 有效规则数量
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Skipped 因月份或计划键无效而跳过的行数
func (rs *RuleSet) Skipped() int {
	if rs == nil {
		return 0
	}
	return rs.skipped
}

// Gaps 列出没有任何规则的月份和计划键组合
func (rs *RuleSet) Gaps() []RuleGap {
	var gaps []RuleGap
	for _, key := range domain.AllPlanKeys() {
		for month := 1; month <= 12; month++ {
			if _, ok := rs.Lookup(month, key); !ok {
				gaps = append(gaps, RuleGap{Month: month, PlanKey: key})
			}
		}
	}
	return gaps
}
