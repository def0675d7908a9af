package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/allanpk716/evrak_generator/internal/company"
	"github.com/allanpk716/evrak_generator/internal/datasource"
	"github.com/allanpk716/evrak_generator/internal/domain"
	"github.com/allanpk716/evrak_generator/internal/matcher"
	"github.com/allanpk716/evrak_generator/internal/plan"
	"github.com/allanpk716/evrak_generator/internal/report"
)

// YearlyFolderSuffix 年度批量输出目录名后缀
const YearlyFolderSuffix = " Yıllıklar"

// YearlyEntry 一个公司的年度批量输入
type YearlyEntry struct {
	SGK      string `yaml:"sgk"`
	Method   string `yaml:"method,omitempty"`
	RiskDate string `yaml:"risk_date,omitempty"`
	Phone    string `yaml:"phone,omitempty"`
	Mail     string `yaml:"mail,omitempty"`
}

// YearlyOptions 年度批量选项，Entries 为空时读取年度数据表
type YearlyOptions struct {
	Date        string // dd.mm.yyyy
	ReportYear  string
	Entries     []YearlyEntry
	GeneratePDF bool
	Progress    ProgressFunc
}

// yearlyCompany 一个公司的替换数据，err 不为空时该公司直接记为失败
type yearlyCompany struct {
	label  string
	values domain.ReplacementMap
	err    error
}

// yearlyDocuments 每个公司生成的年度文档
var yearlyDocuments = []string{
	domain.LogicalTrainingPlan,
	domain.LogicalWorkPlan,
	domain.LogicalEvaluationReport,
}

// YearlyFolder 年度批量输出目录
func (g *Generator) YearlyFolder() string {
	return filepath.Join(g.path(g.cfg.ResolveOutputRoot()), g.now().Format("2006-01-02")+YearlyFolderSuffix)
}

// RunYearly 为多个公司生成年度培训计划、工作计划和评估报告
func (g *Generator) RunYearly(ctx context.Context, opts YearlyOptions) (*report.Report, error) {
	date, ok := plan.ParseReferenceDate(opts.Date)
	if !ok {
		return nil, fmt.Errorf("年度日期格式错误，应为 gg.aa.yyyy: %q", opts.Date)
	}
	folder := g.YearlyFolder()
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, fmt.Errorf("创建年度目录失败: %w", err)
	}

	var companies []yearlyCompany
	var err error
	if len(opts.Entries) == 0 {
		companies, err = g.yearlyFromTable()
	} else {
		companies, err = g.yearlyFromEntries(folder, date.Year(), opts)
	}
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, errors.New("没有可生成的公司")
	}

	batch := domain.NewRunContext("Yıllıklar", folder, folder, g.cfg.RiskMethod())
	rep := report.New(batch)
	total := len(companies) * len(yearlyDocuments)
	done := 0
	g.logger.Info("开始年度批量生成",
		zap.String("run", batch.RunID.String()),
		zap.Int("companies", len(companies)),
		zap.String("folder", folder))

	for _, c := range companies {
		run := g.companyRun(batch, c, folder, opts.GeneratePDF)
		for _, doc := range yearlyDocuments {
			done++
			name := c.label + " / " + doc
			g.logger.Info("处理文档", zap.String("progress", progressLabel(done, total)), zap.String("document", name))

			var outcome report.Outcome
			if c.err != nil {
				outcome = report.Outcome{Name: name, Error: c.err.Error()}
			} else {
				outcome = g.process(ctx, doc, c.values, run)
				outcome.Name = name
			}
			rep.Record(outcome)
			if opts.Progress != nil {
				opts.Progress(done, total)
			}
		}
	}

	g.complete(rep)
	return rep, nil
}

// companyRun 每个公司独立的运行上下文，共用批次 ID 和目录
func (g *Generator) companyRun(batch *domain.RunContext, c yearlyCompany, folder string, pdf bool) *domain.RunContext {
	method := g.cfg.RiskMethod()
	if m, ok := domain.ParseRiskMethod(c.values.Lookup(g.cfg.Placeholders.RiskMethod)); ok {
		method = m
	}
	run := domain.NewRunContext(c.label, folder, folder, method)
	run.RunID = batch.RunID
	run.StartedAt = batch.StartedAt
	run.GeneratePDF = pdf
	run.ReferenceDate = c.values.Lookup(g.cfg.Placeholders.YearlyDate)
	run.ReferenceYear = c.values.Lookup(g.cfg.Placeholders.YearlyYear)
	return run
}

// yearlyFromTable 读取年度数据表，没有 SGK 登记号的列被跳过
func (g *Generator) yearlyFromTable() ([]yearlyCompany, error) {
	path := g.path(g.cfg.Paths.YearlyDataFile)
	columns, err := datasource.LoadYearlyData(path, g.tableOptions())
	if err != nil {
		return nil, err
	}

	var companies []yearlyCompany
	for i, values := range columns {
		registry := values.Lookup(domain.TokenSGKRegistry)
		if registry == "" {
			g.logger.Warn("年度数据缺少 SGK 登记号，跳过", zap.String("column", datasource.YearlyColumn(i+1, g.tableOptions())))
			continue
		}
		companies = append(companies, yearlyCompany{label: matcher.SanitizeFilename(registry), values: values})
	}
	g.logger.Info("年度数据表已加载", zap.String("path", path), zap.Int("companies", len(companies)))
	return companies, nil
}

// yearlyFromEntries 通过公司表单生成每个公司的数据，并写出 veri_{sgk}.xlsx
func (g *Generator) yearlyFromEntries(folder string, year int, opts YearlyOptions) ([]yearlyCompany, error) {
	base, err := g.LoadReplacements()
	if err != nil {
		return nil, err
	}
	dir, err := g.LoadDirectory()
	if err != nil {
		return nil, err
	}
	dataFile := g.path(g.cfg.Paths.DataFile)
	keys, err := datasource.LoadKeys(dataFile, g.tableOptions())
	if err != nil {
		return nil, err
	}

	var companies []yearlyCompany
	for _, entry := range opts.Entries {
		values, err := g.yearlyValues(dir, base, year, entry, opts)
		if err != nil {
			g.logger.Error("公司数据生成失败", zap.String("sgk", entry.SGK), zap.Error(err))
			companies = append(companies, yearlyCompany{label: entry.SGK, err: err})
			continue
		}

		dataPath := filepath.Join(folder, "veri_"+matcher.SanitizeFilename(entry.SGK)+".xlsx")
		if err := datasource.SaveReplacements(dataPath, keys, values, g.tableOptions()); err != nil {
			g.logger.Warn("公司数据表写出失败", zap.String("path", dataPath), zap.Error(err))
		}
		companies = append(companies, yearlyCompany{label: entry.SGK, values: values})
	}
	return companies, nil
}

func (g *Generator) yearlyValues(dir *company.Directory, base domain.ReplacementMap, year int, entry YearlyEntry, opts YearlyOptions) (domain.ReplacementMap, error) {
	if err := company.ValidateSGKCode(entry.SGK); err != nil {
		return nil, err
	}
	method, ok := domain.ParseRiskMethod(entry.Method)
	if !ok {
		method = g.cfg.RiskMethod()
	}
	form, err := g.CompanyValues(dir, base, entry.SGK, method)
	if err != nil {
		return nil, err
	}

	reportYear := opts.ReportYear
	if reportYear == "" {
		reportYear = strconv.Itoa(year)
	}
	form.Set(g.cfg.Placeholders.YearlyDate, opts.Date)
	form.Set(g.cfg.Placeholders.YearlyYear, strconv.Itoa(year))
	form.Set(domain.TokenReportDate, opts.Date)
	form.Set(domain.TokenReportYear, reportYear)
	if entry.RiskDate != "" {
		form.Set(company.TokenRiskTeamTraining, entry.RiskDate)
	}
	form.Set(domain.TokenPhone, entry.Phone)
	form.Set(domain.TokenMail, entry.Mail)

	if g.history != nil {
		if err := g.history.RememberSGK(entry.SGK); err != nil {
			g.logger.Warn("保存 SGK 历史失败", zap.Error(err))
		}
	}
	return form.GetValues(), nil
}

// SaveYearlyData 用公司表单生成年度数据表
func (g *Generator) SaveYearlyData(opts YearlyOptions) (string, error) {
	if len(opts.Entries) == 0 {
		return "", errors.New("没有公司数据")
	}
	if len(opts.Entries) > datasource.MaxYearlyCompanies {
		return "", fmt.Errorf("公司数量超过上限 %d", datasource.MaxYearlyCompanies)
	}
	date, ok := plan.ParseReferenceDate(opts.Date)
	if !ok {
		return "", fmt.Errorf("年度日期格式错误，应为 gg.aa.yyyy: %q", opts.Date)
	}

	base, err := g.LoadReplacements()
	if err != nil {
		return "", err
	}
	dir, err := g.LoadDirectory()
	if err != nil {
		return "", err
	}
	keys, err := datasource.LoadKeys(g.path(g.cfg.Paths.DataFile), g.tableOptions())
	if err != nil {
		return "", err
	}

	companies := make([]domain.ReplacementMap, 0, len(opts.Entries))
	for _, entry := range opts.Entries {
		values, err := g.yearlyValues(dir, base, date.Year(), entry, opts)
		if err != nil {
			return "", fmt.Errorf("公司 %s: %w", entry.SGK, err)
		}
		companies = append(companies, values)
	}

	path := g.path(g.cfg.Paths.YearlyDataFile)
	if err := datasource.SaveYearlyData(path, keys, companies, g.tableOptions()); err != nil {
		return "", err
	}
	g.logger.Info("年度数据表已保存", zap.String("path", path), zap.Int("companies", len(companies)))
	return path, nil
}
