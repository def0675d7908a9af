package company

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/allanpk716/evrak_generator/internal/domain"
	"github.com/allanpk716/evrak_generator/internal/matcher"
)

// 表单写入的占位符
const (
	TokenProvince         = "[DEĞİŞTİR:İL]"
	TokenAddress          = "[DEĞİŞTİR:ADRES]"
	TokenExpert           = "[DEĞİŞTİR:UZMANADI]"
	TokenPhysician        = "[DEĞİŞTİR:HEKİMADI]"
	TokenCompanyTitleBig  = "[DEĞİŞTİR:ŞİRKET UNVANI20PUNTO]"
	TokenProjectNameBig   = "[DEĞİŞTİR:PROJEADI20PUNTO]"
	TokenSGKRegistryBig   = "[DEĞİŞTİR:SGKSİCİL20PUNTO]"
	TokenNaceActivity     = "[DEĞİŞTİR:NACEFAALİYET]"
	TokenNaceWithActivity = "[DEĞİŞTİR:NACEVEFAALİYET]"
	TokenRiskTeamTraining = "[DEĞİŞTİR:RDEKİPATAMAEĞİTİMHAZIRLANMA]"
	TokenRiskValidity     = "[DEĞİŞTİR:RDGEÇERLİLİK]"
	TokenEmergencyTeam    = "[DEĞİŞTİR:ADEPEK3ATAMAEĞİTİM]"
	TokenEmergencyValid   = "[DEĞİŞTİR:ADEPGEÇERLİLİK]"
	TokenExpertHours      = "[DEĞİŞTİR:YILLIK:İGU:SAAT]"
	TokenPhysicianHours   = "[DEĞİŞTİR:YILLIK:İH:SAAT]"
	TokenRiskPeriod       = "[DEĞİŞTİR:YDR:RDPERİYOT]"
	TokenExamPeriod       = "[DEĞİŞTİR:YDR:MUAYENEPERİYOT]"
)

// OutsideGroupMarker 公司名称含此标记时项目名称作为公司名称
const OutsideGroupMarker = "GRUP DIŞI"

// HazardClass 工作场所危险等级
type HazardClass int

const (
	HazardUnknown HazardClass = iota
	HazardLow
	HazardMedium
	HazardHigh
)

// HazardClasses 表单可选的危险等级
var HazardClasses = []string{"AZ TEHLİKELİ", "TEHLİKELİ", "ÇOK TEHLİKELİ"}

// ParseHazardClass 按规范化文本识别危险等级
func ParseHazardClass(value string) HazardClass {
	switch matcher.NormalizeForComparison(strings.Join(strings.Fields(value), " ")) {
	case "AZ TEHLIKELI":
		return HazardLow
	case "TEHLIKELI":
		return HazardMedium
	case "COK TEHLIKELI":
		return HazardHigh
	default:
		return HazardUnknown
	}
}

// ValidityYears 风险评估和应急计划的有效年数
func (h HazardClass) ValidityYears() int {
	switch h {
	case HazardLow:
		return 6
	case HazardMedium:
		return 4
	case HazardHigh:
		return 2
	default:
		return 0
	}
}

// Hours 安全专家和职业医生的月度工作时间
func (h HazardClass) Hours() (expert, physician string) {
	switch h {
	case HazardLow:
		return "4 SAAT", "4 SAAT"
	case HazardMedium:
		return "8 SAAT", "4 SAAT"
	default:
		return "8 SAAT", "8 SAAT"
	}
}

// Periods 风险评估和健康检查的周期
func (h HazardClass) Periods() (risk, exam string) {
	switch h {
	case HazardLow:
		return "6 Yılda 1", "5 Yılda 1"
	case HazardMedium:
		return "4 Yılda 1", "3 Yılda 1"
	case HazardHigh:
		return "2 Yılda 1", "Yılda 1"
	default:
		return "", ""
	}
}

// Form 一家公司的表单数据，实现 domain.FormSubmission
type Form struct {
	values domain.ReplacementMap
	method domain.RiskMethod
	logger *zap.Logger
}

// NewForm 以替换表的当前值为基础创建表单
func NewForm(base domain.ReplacementMap, method domain.RiskMethod, logger *zap.Logger) *Form {
	if logger == nil {
		logger = zap.NewNop()
	}
	if method == "" {
		method = domain.MethodMatrix
	}
	return &Form{values: base.Clone(), method: method, logger: logger}
}

// Set 修改单个字段
func (f *Form) Set(key, value string) {
	f.values[key] = strings.TrimSpace(value)
}

// Apply 把工作场所表中的公司数据写入表单
func (f *Form) Apply(rec Record, naceDescription string) {
	fields := map[string]string{
		domain.TokenCompanyTitle: rec.CompanyTitle,
		domain.TokenProjectName:  rec.ProjectName,
		TokenAddress:             rec.Address,
		domain.TokenSGKRegistry:  rec.SGKRegistry,
		TokenSGKRegistryBig:      rec.SGKRegistry,
		domain.TokenNaceCode:     rec.NaceCode,
		domain.TokenHazardClass:  rec.HazardClass,
		domain.TokenStaffCount:   rec.StaffCount,
		TokenCompanyTitleBig:     rec.CompanyTitle,
		TokenProjectNameBig:      rec.ProjectName,
		TokenProvince:            rec.Province,
		TokenExpert:              rec.Expert,
		TokenPhysician:           rec.Physician,
	}
	for key, value := range fields {
		f.values[key] = value
	}

	if IsOutsideGroup(rec.CompanyTitle) {
		f.logger.Info("GRUP DIŞI 公司", zap.String("company", rec.CompanyTitle))
		f.values[domain.TokenCompanyTitle] = rec.ProjectName
		f.values[TokenCompanyTitleBig] = rec.ProjectName
		f.values[domain.TokenProjectName] = ""
		f.values[TokenProjectNameBig] = ""
	}

	if rec.NaceCode != "" {
		f.values[TokenNaceActivity] = naceDescription
		if naceDescription == "" {
			f.logger.Warn("NACE 说明未找到", zap.String("nace", rec.NaceCode))
		}
	}
}

// IsOutsideGroup 公司名称是否带有 GRUP DIŞI 标记
func IsOutsideGroup(companyTitle string) bool {
	return matcher.ContainsAll(companyTitle, OutsideGroupMarker)
}

// GetValues 返回计算过派生字段的替换映射，表单本身不变
func (f *Form) GetValues() domain.ReplacementMap {
	values := f.values.Clone()
	hazard := ParseHazardClass(values[domain.TokenHazardClass])

	years := hazard.ValidityYears()
	for from, to := range map[string]string{
		TokenRiskTeamTraining: TokenRiskValidity,
		TokenEmergencyTeam:    TokenEmergencyValid,
	} {
		start := values.Lookup(from)
		if start == "" {
			continue
		}
		date, err := time.Parse(domain.DateLayout, start)
		if err != nil {
			f.logger.Warn("日期格式无效", zap.String("key", from), zap.String("value", start))
			continue
		}
		values[to] = AddYears(date, years).Format(domain.DateLayout)
	}

	values[TokenExpertHours], values[TokenPhysicianHours] = hazard.Hours()
	values[TokenRiskPeriod], values[TokenExamPeriod] = hazard.Periods()

	company := values.Lookup(domain.TokenCompanyTitle)
	project := values.Lookup(domain.TokenProjectName)
	if project == "" {
		values[domain.TokenCompanyProject] = company
	} else {
		values[domain.TokenCompanyProject] = company + " - " + project
	}

	nace := values.Lookup(domain.TokenNaceCode)
	activity := values.Lookup(TokenNaceActivity)
	if nace != "" && activity != "" {
		values[TokenNaceWithActivity] = nace + " - " + activity
	}

	values[domain.TokenRiskMethod] = string(f.method)
	values[domain.TokenActivityDate] = ""
	return values
}

// AddYears 加上整年，2 月 29 日落到非闰年时取 2 月 28 日
func AddYears(t time.Time, years int) time.Time {
	out := t.AddDate(years, 0, 0)
	if out.Day() != t.Day() {
		out = out.AddDate(0, 0, -out.Day())
	}
	return out
}
