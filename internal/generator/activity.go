package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/allanpk716/evrak_generator/internal/company"
	"github.com/allanpk716/evrak_generator/internal/domain"
	"github.com/allanpk716/evrak_generator/internal/plan"
	"github.com/allanpk716/evrak_generator/internal/report"
)

const (
	// ActivityFolder 活动表单输出目录名
	ActivityFolder = "Faaliyet Formları"
	// ActivityFormName 活动表单文件名
	ActivityFormName = "Faaliyet Formu"
)

// ActivityOptions 活动表单批量选项
type ActivityOptions struct {
	Date     string // dd.mm.yyyy，为空时活动日期占位符被删除
	Codes    []string
	Progress ProgressFunc
}

// RunActivityForms 为每个 SGK 短码生成一份活动表单
func (g *Generator) RunActivityForms(ctx context.Context, opts ActivityOptions) (*report.Report, error) {
	if opts.Date != "" {
		if _, ok := plan.ParseReferenceDate(opts.Date); !ok {
			return nil, fmt.Errorf("活动日期格式错误，应为 gg.aa.yyyy: %q", opts.Date)
		}
	}

	var codes []string
	for _, code := range opts.Codes {
		if err := company.ValidateSGKCode(code); err != nil {
			g.logger.Warn("忽略无效的 SGK 短码", zap.String("sgk", code))
			continue
		}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil, errors.New("没有有效的 SGK 短码")
	}

	template := g.path(g.cfg.Paths.ActivityTemplate)
	if !isFile(template) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, template)
	}

	base, err := g.LoadReplacements()
	if err != nil {
		return nil, err
	}
	dir, err := g.LoadDirectory()
	if err != nil {
		return nil, err
	}

	folderName := ActivityFolder
	if opts.Date != "" {
		folderName = opts.Date + " - " + ActivityFolder
	}
	folder := filepath.Join(g.path(g.cfg.ResolveOutputRoot()), folderName)
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, fmt.Errorf("创建活动表单目录失败: %w", err)
	}

	run := domain.NewRunContext(ActivityFolder, folder, folder, g.cfg.RiskMethod())
	rep := report.New(run)
	for i, code := range codes {
		g.logger.Info("处理活动表单", zap.String("progress", progressLabel(i+1, len(codes))), zap.String("sgk", code))
		rep.Record(g.activityForm(ctx, dir, base, code, template, opts.Date, run))
		if opts.Progress != nil {
			opts.Progress(i+1, len(codes))
		}
	}

	g.complete(rep)
	return rep, nil
}

func (g *Generator) activityForm(ctx context.Context, dir *company.Directory, base domain.ReplacementMap, code, template, date string, run *domain.RunContext) report.Outcome {
	start := g.now()
	outcome := report.Outcome{Name: code}

	err := func() error {
		form, err := g.CompanyValues(dir, base, code, run.RiskMethod)
		if err != nil {
			return err
		}
		values := form.GetValues()
		values[g.cfg.Placeholders.ActivityDate] = date
		if date == "" {
			delete(values, g.cfg.Placeholders.ActivityDate)
		}

		project := values.Lookup(domain.TokenCompanyProject)
		if project == "" {
			project = "SGK-" + code
		}
		output := filepath.Join(run.OutputDir, OutputName(project, ActivityFormName, "", ".xlsx"))
		return g.fill(ctx, template, output, values, run, &outcome)
	}()

	outcome.Duration = g.now().Sub(start)
	if err != nil {
		outcome.Error = err.Error()
		g.logger.Error("活动表单生成失败", zap.String("sgk", code), zap.Error(err))
		return outcome
	}
	outcome.Success = true
	return outcome
}
