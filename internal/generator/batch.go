package generator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/allanpk716/evrak_generator/internal/domain"
	"github.com/allanpk716/evrak_generator/internal/report"
)

// ProgressFunc 每个文档处理完成后调用
type ProgressFunc func(done, total int)

// RunBatch 依次处理文档，单个文档失败不会中断批次
func (g *Generator) RunBatch(ctx context.Context, names []string, values domain.ReplacementMap, run *domain.RunContext, progress ProgressFunc) *report.Report {
	rep := report.New(run)
	total := len(names)
	g.logger.Info("开始批量生成", zap.String("run", run.RunID.String()), zap.Int("documents", total))

	for i, name := range names {
		g.logger.Info("处理文档", zap.String("progress", progressLabel(i+1, total)), zap.String("document", name))
		rep.Record(g.process(ctx, name, values, run))
		if progress != nil {
			progress(i+1, total)
		}
	}

	g.complete(rep)
	return rep
}

// RunAsync 在一个后台 goroutine 中执行整个批次，完成后发送结果并关闭通道
func (g *Generator) RunAsync(ctx context.Context, names []string, values domain.ReplacementMap, run *domain.RunContext, progress ProgressFunc) <-chan *report.Report {
	done := make(chan *report.Report, 1)
	go func() {
		defer close(done)
		done <- g.RunBatch(ctx, names, values, run, progress)
	}()
	return done
}

// complete 结束报告并写入运行历史
func (g *Generator) complete(rep *report.Report) {
	rep.Finish()
	g.logger.Info("批量生成完成",
		zap.String("run", rep.RunID.String()),
		zap.String("summary", rep.Summary()),
		zap.Int("substitutions", rep.Substitutions()))

	if g.history == nil {
		return
	}
	if err := g.history.SaveRun(rep); err != nil {
		g.logger.Warn("保存运行历史失败", zap.Error(err))
	}
}

func progressLabel(done, total int) string {
	return fmt.Sprintf("[%d/%d]", done, total)
}
