package template

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/allanpk716/evrak_generator/internal/domain"
	"github.com/allanpk716/evrak_generator/internal/matcher"
)

// Catalog 列出文档池中可生成的文档
type Catalog struct {
	documentDir string
	yearlyDir   string
	logger      *zap.Logger
}

// NewCatalog 创建文档目录
func NewCatalog(documentDir, yearlyDir string, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{documentDir: documentDir, yearlyDir: yearlyDir, logger: logger}
}

// List 返回排序后的文档列表
// 按风险评估方法过滤互斥的文档，年度计划文件折叠为逻辑名称
func (c *Catalog) List(method domain.RiskMethod) ([]string, error) {
	entries, err := os.ReadDir(c.documentDir)
	if err != nil {
		if os.IsNotExist(err) {
			c.logger.Warn("文档目录不存在", zap.String("dir", c.documentDir))
			return nil, nil
		}
		return nil, fmt.Errorf("读取文档目录失败: %w", err)
	}

	var documents []string
	filtered := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || isLockFile(name) || domain.FormatFromPath(name) == domain.FormatUnknown {
			continue
		}
		if ExcludedByMethod(name, method) {
			c.logger.Debug("按风险评估方法排除", zap.String("file", name), zap.String("method", string(method)))
			filtered++
			continue
		}
		if isYearlyPlanFile(name) {
			continue
		}
		documents = append(documents, name)
	}

	documents = append(documents, c.yearlyDocuments()...)
	sort.Strings(documents)

	c.logger.Info("可生成的文档",
		zap.Int("count", len(documents)),
		zap.Int("filtered", filtered),
		zap.String("method", string(method)))
	return documents, nil
}

// yearlyDocuments 年度目录中存在的计划类别，每类只出现一次
func (c *Catalog) yearlyDocuments() []string {
	entries, err := os.ReadDir(c.yearlyDir)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("读取年度目录失败", zap.String("dir", c.yearlyDir), zap.Error(err))
		}
		return nil
	}

	found := make(map[domain.PlanFamily]bool)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || isLockFile(name) || domain.FormatFromPath(name) != domain.FormatSpreadsheet {
			continue
		}
		switch {
		case matcher.ContainsAll(name, "EGITIM"):
			found[domain.PlanTraining] = true
		case matcher.ContainsAll(name, "CALISMA"):
			found[domain.PlanWork] = true
		case matcher.ContainsAll(name, "DEGERLENDIRME", "RAPORU"):
			found[domain.PlanEvaluation] = true
		}
	}

	var names []string
	for _, family := range []domain.PlanFamily{domain.PlanTraining, domain.PlanWork, domain.PlanEvaluation} {
		if found[family] {
			names = append(names, family.LogicalName())
		}
	}
	return names
}

// ExcludedByMethod 判断文件是否因风险评估方法被排除
// Matris 排除 Fine Kinney 文件，Fine Kinney 排除同时含 MATRIS 和 RISK 的文件
func ExcludedByMethod(name string, method domain.RiskMethod) bool {
	normalized := strings.ReplaceAll(matcher.NormalizeForComparison(name), "_", " ")
	switch method {
	case domain.MethodMatrix:
		return strings.Contains(normalized, "FINE KINNEY")
	case domain.MethodFineKinney:
		return strings.Contains(normalized, "MATRIS") && strings.Contains(normalized, "RISK")
	default:
		return false
	}
}

// isYearlyPlanFile 文档池中的年度计划文件由年度目录代替
func isYearlyPlanFile(name string) bool {
	return matcher.ContainsAll(name, "YILLIK") && matcher.ContainsAny(name, "EGITIM", "CALISMA")
}
