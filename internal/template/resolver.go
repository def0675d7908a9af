// Package template 模板查找和可生成文档列表
package template

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/allanpk716/evrak_generator/internal/domain"
	"github.com/allanpk716/evrak_generator/internal/matcher"
)

// Resolver 在模板目录中查找文件，容忍大小写和变音符号差异
type Resolver struct {
	dir     string
	workDir string
	logger  *zap.Logger
}

// NewResolver 创建模板查找器，dir 为配置的模板目录
func NewResolver(dir, workDir string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{dir: dir, workDir: workDir, logger: logger}
}

// Dir 返回配置的模板目录
func (r *Resolver) Dir() string {
	return r.dir
}

// Resolve 按计划变体查找年度模板，找不到返回 false
func (r *Resolver) Resolve(logicalName string, variant domain.PlanVariant) (domain.TemplateDescriptor, bool) {
	expected := variant.TemplateFileName()
	if expected == "" {
		return domain.TemplateDescriptor{}, false
	}
	return r.Locate(logicalName, expected)
}

// Locate 依次尝试配置目录、工作目录下的同名目录，最后在目录列表中做宽松匹配
func (r *Resolver) Locate(logicalName, fileName string) (domain.TemplateDescriptor, bool) {
	dirs := r.candidateDirs()

	for _, dir := range dirs {
		path := filepath.Join(dir, fileName)
		if isFile(path) {
			return describe(logicalName, path), true
		}
	}

	for _, dir := range dirs {
		if path, ok := r.scan(dir, fileName); ok {
			r.logger.Debug("模板宽松匹配",
				zap.String("expected", fileName),
				zap.String("found", filepath.Base(path)))
			return describe(logicalName, path), true
		}
	}

	r.logger.Warn("模板未找到",
		zap.String("name", logicalName),
		zap.String("expected", fileName),
		zap.Strings("dirs", dirs))
	return domain.TemplateDescriptor{}, false
}

// candidateDirs 配置目录和工作目录下的同名目录
func (r *Resolver) candidateDirs() []string {
	dirs := []string{filepath.Clean(r.dir)}
	if r.workDir != "" && !filepath.IsAbs(r.dir) {
		alt := filepath.Join(r.workDir, r.dir)
		if alt != dirs[0] {
			dirs = append(dirs, alt)
		}
	}
	return dirs
}

// scan 列出目录，返回第一个与期望文件名宽松相等的文件
func (r *Resolver) scan(dir, fileName string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn("读取模板目录失败", zap.String("dir", dir), zap.Error(err))
		}
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() || isLockFile(entry.Name()) {
			continue
		}
		if matcher.LooseEquals(entry.Name(), fileName) {
			return filepath.Join(dir, entry.Name()), true
		}
	}
	return "", false
}

func describe(logicalName, path string) domain.TemplateDescriptor {
	return domain.TemplateDescriptor{
		LogicalName: logicalName,
		Path:        path,
		Format:      domain.FormatFromPath(path),
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// isLockFile Office 打开文档时生成的 ~$ 锁文件
func isLockFile(name string) bool {
	return strings.HasPrefix(name, "~$")
}

// Classify 判断文档名是否为年度计划或年度评估报告
func Classify(name string) (domain.PlanFamily, bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if domain.FormatFromPath(name) == domain.FormatUnknown {
		stem = name
	}
	normalized := matcher.NormalizeForComparison(strings.TrimSpace(stem))
	for _, family := range []domain.PlanFamily{domain.PlanTraining, domain.PlanWork, domain.PlanEvaluation} {
		if normalized == matcher.NormalizeForComparison(family.LogicalName()) {
			return family, true
		}
	}
	return 0, false
}
