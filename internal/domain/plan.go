package domain

import "fmt"

// PlanFamily 年度文件类别
type PlanFamily int

const (
	PlanTraining PlanFamily = iota + 1
	PlanWork
	PlanEvaluation
)

// 年度文件的逻辑名称
const (
	LogicalTrainingPlan     = "Yıllık Eğitim Planı"
	LogicalWorkPlan         = "Yıllık Çalışma Planı"
	LogicalEvaluationReport = "Yıllık Değerlendirme Raporu"
)

// LogicalName 返回列表中显示的名称
func (f PlanFamily) LogicalName() string {
	switch f {
	case PlanTraining:
		return LogicalTrainingPlan
	case PlanWork:
		return LogicalWorkPlan
	case PlanEvaluation:
		return LogicalEvaluationReport
	default:
		return ""
	}
}

// KeySegment 规则表中使用的计划类型片段
func (f PlanFamily) KeySegment() string {
	switch f {
	case PlanTraining:
		return "egitim_plani"
	case PlanWork:
		return "calisma_plani"
	default:
		return ""
	}
}

// HasCouncilVariant 是否区分有无委员会
func (f PlanFamily) HasCouncilVariant() bool {
	return f == PlanTraining || f == PlanWork
}

// DefaultHeaderRow 月份表头的默认行号
func (f PlanFamily) DefaultHeaderRow() int {
	if f == PlanTraining {
		return 17
	}
	return 6
}

func (f PlanFamily) String() string {
	if n := f.LogicalName(); n != "" {
		return n
	}
	return fmt.Sprintf("PlanFamily(%d)", int(f))
}

// CouncilStatus 职业安全委员会状态
type CouncilStatus int

const (
	WithoutCouncil CouncilStatus = iota
	WithCouncil
)

// Label 文件名中使用的标签
func (c CouncilStatus) Label() string {
	if c == WithCouncil {
		return "KURULLU"
	}
	return "KURULSUZ"
}

// KeySegment 规则键中使用的片段
func (c CouncilStatus) KeySegment() string {
	if c == WithCouncil {
		return "kurullu"
	}
	return "kurulsuz"
}

// CouncilFor 根据员工人数和阈值确定委员会状态
func CouncilFor(staffCount, threshold int) CouncilStatus {
	if staffCount >= threshold {
		return WithCouncil
	}
	return WithoutCouncil
}

// PlanVariant 计划类别与委员会状态的组合，创建后不可变
type PlanVariant struct {
	Family  PlanFamily
	Council CouncilStatus
}

// NewPlanVariant 根据员工人数创建计划变体
func NewPlanVariant(family PlanFamily, staffCount, threshold int) PlanVariant {
	return PlanVariant{Family: family, Council: CouncilFor(staffCount, threshold)}
}

// Key 规则表键，例如 yillik_egitim_plani_kurullu
func (v PlanVariant) Key() string {
	return "yillik_" + v.Family.KeySegment() + "_" + v.Council.KeySegment()
}

// Suffix 输出文件名中的变体后缀
func (v PlanVariant) Suffix() string {
	if !v.Family.HasCouncilVariant() {
		return ""
	}
	return " " + v.Council.Label()
}

// TemplateFileName 期望的模板文件名
func (v PlanVariant) TemplateFileName() string {
	switch v.Family {
	case PlanTraining:
		return "YILLIK EĞİTİM PLANI " + v.Council.Label() + ".xlsx"
	case PlanWork:
		return "YILLIK ÇALIŞMA PLANI " + v.Council.Label() + ".xlsx"
	case PlanEvaluation:
		return "YILLIK DEĞERLENDİRME RAPORU.xlsx"
	default:
		return ""
	}
}

// AllPlanKeys 所有规则键
func AllPlanKeys() []string {
	var keys []string
	for _, f := range []PlanFamily{PlanTraining, PlanWork} {
		for _, c := range []CouncilStatus{WithCouncil, WithoutCouncil} {
			keys = append(keys, PlanVariant{Family: f, Council: c}.Key())
		}
	}
	return keys
}
