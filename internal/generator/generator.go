// Package generator 按文档类别生成、归档并导出一批文档
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/allanpk716/evrak_generator/internal/config"
	"github.com/allanpk716/evrak_generator/internal/convert"
	"github.com/allanpk716/evrak_generator/internal/datasource"
	"github.com/allanpk716/evrak_generator/internal/domain"
	"github.com/allanpk716/evrak_generator/internal/matcher"
	"github.com/allanpk716/evrak_generator/internal/plan"
	"github.com/allanpk716/evrak_generator/internal/processor"
	"github.com/allanpk716/evrak_generator/internal/report"
	"github.com/allanpk716/evrak_generator/internal/template"
)

// PDFDir 输出目录下存放 PDF 的子目录
const PDFDir = "PDF"

// History 运行历史，nil 表示不记录
type History interface {
	SaveRun(r *report.Report) error
	RememberSGK(code string) error
}

// Deps 可替换的协作者，零值字段使用默认实现
type Deps struct {
	Processor domain.DocumentProcessor
	Converter domain.DocumentConverter
	Rules     *datasource.RuleSet
	History   History
}

// Generator 文档生成器
type Generator struct {
	cfg       *config.AppConfig
	workDir   string
	logger    *zap.Logger
	processor domain.DocumentProcessor
	converter domain.DocumentConverter
	resolver  *template.Resolver
	catalog   *template.Catalog
	post      *plan.PostProcessor
	history   History
	now       func() time.Time
}

// New 根据运行环境创建生成器
func New(env *config.RuntimeEnvironment, deps Deps) *Generator {
	logger := env.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := env.Config
	workDir := env.WorkDir
	if workDir == "" {
		workDir = "."
	}

	g := &Generator{
		cfg:       cfg,
		workDir:   workDir,
		logger:    logger,
		processor: deps.Processor,
		converter: deps.Converter,
		history:   deps.History,
		now:       time.Now,
	}
	if g.processor == nil {
		g.processor = processor.NewDocumentProcessor(logger, cfg.Placeholders.ActivityDate)
	}
	if g.converter == nil {
		g.converter = convert.NewDocumentConverter(env)
	}
	g.resolver = template.NewResolver(cfg.Paths.YearlyDir, workDir, logger)
	g.catalog = template.NewCatalog(g.path(cfg.Paths.DocumentDir), g.path(cfg.Paths.YearlyDir), logger)
	g.post = plan.NewPostProcessor(logger, deps.Rules, cfg.Business.StrictRules)
	return g
}

// LoadRules 读取删除规则，文件不存在时返回空规则集
func LoadRules(env *config.RuntimeEnvironment) (*datasource.RuleSet, error) {
	path := env.Config.Paths.RulesFile
	if !filepath.IsAbs(path) && env.WorkDir != "" {
		path = filepath.Join(env.WorkDir, path)
	}
	rules, err := datasource.LoadDeletionRules(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			env.Logger.Warn("删除规则文件不存在，跳过规则删除", zap.String("path", path))
			return nil, nil
		}
		return nil, err
	}
	env.Logger.Info("删除规则已加载", zap.Int("rules", rules.Len()), zap.Int("skipped", rules.Skipped()))
	return rules, nil
}

// path 相对路径以工作目录为基准
func (g *Generator) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(g.workDir, p)
}

func (g *Generator) tableOptions() datasource.TableOptions {
	return datasource.TableOptions{
		KeyHeader:   g.cfg.Business.KeyHeader,
		ValueHeader: g.cfg.Business.ValueHeader,
	}
}

// DefaultMethod 配置的默认风险评估方法
func (g *Generator) DefaultMethod() domain.RiskMethod {
	return g.cfg.RiskMethod()
}

// Documents 当前方法下可生成的文档
func (g *Generator) Documents(method domain.RiskMethod) ([]string, error) {
	return g.catalog.List(method)
}

// LoadReplacements 读取替换表，失败为整批错误
func (g *Generator) LoadReplacements() (domain.ReplacementMap, error) {
	values, err := datasource.LoadReplacements(g.path(g.cfg.Paths.DataFile), g.tableOptions())
	if err != nil {
		return nil, err
	}
	g.logger.Info("替换表已加载", zap.Int("keys", len(values)))
	return values, nil
}

// ProjectName 项目名称依次取 PROJEADI、ŞİRKET UNVANI，都为空时为 PROJE
func ProjectName(values domain.ReplacementMap, projectKey, companyKey string) string {
	name := values.Lookup(projectKey)
	if name == "" {
		name = values.Lookup(companyKey)
	}
	if name == "" {
		name = domain.DefaultProjectName
	}
	return matcher.SanitizeFilename(name)
}

// StaffCount 解析员工人数，无效值为 0
func StaffCount(value string) int {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64); err == nil && f >= 0 {
		return int(f)
	}
	return 0
}

// YearMatches 年度年份与年度日期的年份一致时才清除已过月份
func YearMatches(referenceDate, referenceYear string) bool {
	year := strings.TrimSpace(referenceYear)
	if year == "" {
		return false
	}
	date, ok := plan.ParseReferenceDate(referenceDate)
	if !ok {
		return false
	}
	return strconv.Itoa(date.Year()) == year
}

// OutputName 输出文件名 {project} - {name}{suffix}{ext}
func OutputName(project, name, suffix, ext string) string {
	return matcher.SanitizeFilename(fmt.Sprintf("%s - %s%s", project, name, suffix)) + ext
}

// RunOptions 一次普通批量生成的选项
type RunOptions struct {
	Documents   []string // 为空时生成全部可用文档
	Method      domain.RiskMethod
	GeneratePDF bool
	Progress    ProgressFunc
}

// Prepare 读取替换表，确定项目名称并创建输出和备份目录
func (g *Generator) Prepare(opts RunOptions) (*domain.RunContext, domain.ReplacementMap, error) {
	values, err := g.LoadReplacements()
	if err != nil {
		return nil, nil, err
	}

	ph := g.cfg.Placeholders
	project := ProjectName(values, ph.ProjectName, ph.CompanyTitle)

	method := opts.Method
	if method == "" {
		if m, ok := domain.ParseRiskMethod(values.Lookup(ph.RiskMethod)); ok {
			method = m
		} else {
			method = g.cfg.RiskMethod()
		}
	}

	outputDir := filepath.Join(g.path(g.cfg.ResolveOutputRoot()), project)
	backupDir := filepath.Join(g.path(g.cfg.Paths.BackupRoot), g.now().Format("2006-01-02")+" - "+project)
	for _, dir := range []string{outputDir, backupDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("创建目录失败: %w", err)
		}
	}

	dataFile := g.path(g.cfg.Paths.DataFile)
	if err := copyFile(dataFile, filepath.Join(backupDir, filepath.Base(dataFile))); err != nil {
		g.logger.Warn("替换表备份失败", zap.Error(err))
	}

	run := domain.NewRunContext(project, outputDir, backupDir, method)
	run.GeneratePDF = opts.GeneratePDF
	run.ReferenceDate = values.Lookup(ph.YearlyDate)
	run.ReferenceYear = values.Lookup(ph.YearlyYear)

	g.logger.Info("运行目录已创建",
		zap.String("run", run.RunID.String()),
		zap.String("project", project),
		zap.String("output", outputDir),
		zap.String("backup", backupDir),
		zap.String("method", string(method)))
	return run, values, nil
}

// Generate 读取替换表并生成选定或全部文档
func (g *Generator) Generate(ctx context.Context, opts RunOptions) (*report.Report, error) {
	run, values, err := g.Prepare(opts)
	if err != nil {
		return nil, err
	}
	names, err := g.Select(opts.Documents, run.RiskMethod)
	if err != nil {
		return nil, err
	}
	return g.RunBatch(ctx, names, values, run, opts.Progress), nil
}

// Select 返回要生成的文档，未指定时为当前方法下的全部文档
func (g *Generator) Select(requested []string, method domain.RiskMethod) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}
	names, err := g.Documents(method)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("没有可生成的文档: %s", g.path(g.cfg.Paths.DocumentDir))
	}
	return names, nil
}

// ProcessDocument 生成单个文档，失败只记录日志并返回 false
func (g *Generator) ProcessDocument(ctx context.Context, name string, values domain.ReplacementMap, run *domain.RunContext) bool {
	return g.process(ctx, name, values, run).Success
}

// process 按类别处理文档并返回结果
func (g *Generator) process(ctx context.Context, name string, values domain.ReplacementMap, run *domain.RunContext) report.Outcome {
	start := g.now()
	outcome := report.Outcome{Name: name}

	var err error
	if family, ok := template.Classify(name); ok {
		if family == domain.PlanEvaluation {
			err = g.processReport(ctx, values, run, &outcome)
		} else {
			err = g.processPlan(ctx, family, values, run, &outcome)
		}
	} else {
		err = g.processGeneral(ctx, name, values, run, &outcome)
	}

	outcome.Duration = g.now().Sub(start)
	if err != nil {
		outcome.Success = false
		outcome.Error = err.Error()
		g.logger.Error("文档生成失败", zap.String("document", name), zap.Error(err))
		return outcome
	}
	outcome.Success = true
	g.logger.Info("文档已生成",
		zap.String("document", name),
		zap.String("output", filepath.Base(outcome.OutputPath)),
		zap.Int("substitutions", outcome.Substitutions))
	return outcome
}

// processReport 年度评估报告
func (g *Generator) processReport(ctx context.Context, values domain.ReplacementMap, run *domain.RunContext, outcome *report.Outcome) error {
	variant := domain.PlanVariant{Family: domain.PlanEvaluation}
	desc, ok := g.resolver.Resolve(domain.LogicalEvaluationReport, variant)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, variant.TemplateFileName())
	}

	output := filepath.Join(run.OutputDir, OutputName(run.ProjectName, domain.LogicalEvaluationReport, "", ".xlsx"))
	if err := g.fill(ctx, desc.Path, output, values, run, outcome); err != nil {
		return err
	}
	return g.finish(ctx, output, run, outcome)
}

// processPlan 年度培训或工作计划，填充后清除已过月份并应用删除规则
func (g *Generator) processPlan(ctx context.Context, family domain.PlanFamily, values domain.ReplacementMap, run *domain.RunContext, outcome *report.Outcome) error {
	staff := StaffCount(values.Lookup(g.cfg.Placeholders.StaffCount))
	variant := domain.NewPlanVariant(family, staff, g.cfg.Business.CouncilThreshold)
	g.logger.Debug("计划变体",
		zap.String("family", family.String()),
		zap.Int("staff", staff),
		zap.String("key", variant.Key()))

	desc, ok := g.resolver.Resolve(family.LogicalName(), variant)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, variant.TemplateFileName())
	}

	output := filepath.Join(run.OutputDir, OutputName(run.ProjectName, family.LogicalName(), variant.Suffix(), ".xlsx"))
	if err := g.fill(ctx, desc.Path, output, values, run, outcome); err != nil {
		return err
	}

	if YearMatches(run.ReferenceDate, run.ReferenceYear) {
		cleared, err := g.post.ApplyElapsedMonthClearing(output, family, run.ReferenceDate)
		if err != nil {
			return fmt.Errorf("清除已过月份失败: %w", err)
		}
		g.logger.Debug("已过月份已清除", zap.Int("cells", cleared))
	} else {
		g.logger.Info("年度年份与日期不一致，跳过已过月份清除",
			zap.String("date", run.ReferenceDate),
			zap.String("year", run.ReferenceYear))
	}

	if _, err := g.post.ApplyRuleBasedDeletion(output, variant, run.ReferenceDate); err != nil {
		return fmt.Errorf("应用删除规则失败: %w", err)
	}
	return g.finish(ctx, output, run, outcome)
}

// processGeneral 文档池中的普通文档
func (g *Generator) processGeneral(ctx context.Context, name string, values domain.ReplacementMap, run *domain.RunContext, outcome *report.Outcome) error {
	if !isPlainName(name) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidDocumentName, name)
	}
	if domain.FormatFromPath(name) == domain.FormatUnknown {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, name)
	}
	source := filepath.Join(g.path(g.cfg.Paths.DocumentDir), name)
	if info, err := os.Stat(source); err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, source)
	}

	ext := filepath.Ext(name)
	output := filepath.Join(run.OutputDir, OutputName(run.ProjectName, strings.TrimSuffix(name, ext), "", ext))
	if err := g.fill(ctx, source, output, values, run, outcome); err != nil {
		return err
	}
	return g.finish(ctx, output, run, outcome)
}

// isPlainName 文档名只能是文档目录中的文件名
func isPlainName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.VolumeName(name) == ""
}

// fill 登记输出路径后填充模板
func (g *Generator) fill(ctx context.Context, templatePath, output string, values domain.ReplacementMap, run *domain.RunContext, outcome *report.Outcome) error {
	if err := run.ClaimOutput(output, outcome.Name); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}

	result, err := g.processor.Fill(ctx, templatePath, output, values, run.RiskMethod)
	if err != nil {
		return fmt.Errorf("填充模板失败: %w", err)
	}
	outcome.OutputPath = output
	if result != nil {
		outcome.Substitutions = result.Substitutions
		outcome.Stats = result.Stats
		outcome.Unresolved = result.Unresolved
	}
	return nil
}

// finish 复制到备份目录，需要时导出 PDF
func (g *Generator) finish(ctx context.Context, output string, run *domain.RunContext, outcome *report.Outcome) error {
	if run.BackupDir != "" && filepath.Clean(run.BackupDir) != filepath.Clean(filepath.Dir(output)) {
		if err := copyFile(output, filepath.Join(run.BackupDir, filepath.Base(output))); err != nil {
			g.logger.Warn("备份复制失败", zap.String("file", filepath.Base(output)), zap.Error(err))
		}
	}

	if !run.GeneratePDF {
		return nil
	}
	stem := strings.TrimSuffix(filepath.Base(output), filepath.Ext(output))
	pdfPath := filepath.Join(filepath.Dir(output), PDFDir, stem+".pdf")
	if err := g.converter.Convert(ctx, output, pdfPath); err != nil {
		return fmt.Errorf("导出 PDF 失败: %w", err)
	}
	outcome.PDFPath = pdfPath
	return nil
}

// copyFile 复制文件内容，目标已存在时覆盖
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("打开源文件失败: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("创建目标目录失败: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("创建目标文件失败: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("复制文件失败: %w", err)
	}
	return out.Close()
}
