package generator

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/allanpk716/evrak_generator/internal/company"
	"github.com/allanpk716/evrak_generator/internal/datasource"
	"github.com/allanpk716/evrak_generator/internal/domain"
	"github.com/allanpk716/evrak_generator/internal/matcher"
)

// LoadDirectory 读取工作场所表和 NACE 表
func (g *Generator) LoadDirectory() (*company.Directory, error) {
	workplace := g.locateTable(g.cfg.Paths.WorkplaceTable, "ANKARA")
	nace := g.locateTable(g.cfg.Paths.NaceTable, "NACE")
	return company.LoadDirectory(workplace, nace, g.logger)
}

// locateTable 配置的文件不存在时，在工作目录中找名称含有关键字的表格
func (g *Generator) locateTable(configured, keyword string) string {
	path := g.path(configured)
	if isFile(path) {
		return path
	}

	entries, err := os.ReadDir(g.workDir)
	if err != nil {
		return path
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || domain.FormatFromPath(name) != domain.FormatSpreadsheet {
			continue
		}
		if matcher.ContainsAll(name, keyword) {
			g.logger.Debug("表格宽松匹配", zap.String("expected", configured), zap.String("found", name))
			return filepath.Join(g.workDir, name)
		}
	}
	return path
}

// CompanyValues 用 SGK 短码查找公司并生成表单数据
func (g *Generator) CompanyValues(dir *company.Directory, base domain.ReplacementMap, code string, method domain.RiskMethod) (*company.Form, error) {
	rec, err := dir.Lookup(code)
	if err != nil {
		return nil, err
	}
	form := company.NewForm(base, method, g.logger)
	form.Apply(rec, dir.NaceDescription(rec.NaceCode))
	return form, nil
}

// ApplyCompany 把公司表单数据写回替换表，返回更新的键数
func (g *Generator) ApplyCompany(code string, method domain.RiskMethod) (int, error) {
	if err := company.ValidateSGKCode(code); err != nil {
		return 0, err
	}
	base, err := g.LoadReplacements()
	if err != nil {
		return 0, err
	}
	if method == "" {
		method = g.cfg.RiskMethod()
	}

	dir, err := g.LoadDirectory()
	if err != nil {
		return 0, err
	}
	form, err := g.CompanyValues(dir, base, code, method)
	if err != nil {
		return 0, err
	}

	updated, err := datasource.UpdateReplacements(g.path(g.cfg.Paths.DataFile), form.GetValues(), g.tableOptions())
	if err != nil {
		return 0, err
	}
	g.logger.Info("公司数据已写入替换表", zap.String("sgk", code), zap.Int("updated", updated))

	if g.history != nil {
		if err := g.history.RememberSGK(code); err != nil {
			g.logger.Warn("保存 SGK 历史失败", zap.Error(err))
		}
	}
	return updated, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
