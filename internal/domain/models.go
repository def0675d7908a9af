package domain

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReplacementMap 占位符到替换值的映射，缺失的值为空字符串
type ReplacementMap map[string]string

// Clone 复制映射，调用方可以安全修改副本
func (m ReplacementMap) Clone() ReplacementMap {
	out := make(ReplacementMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Lookup 返回去除首尾空白后的值
func (m ReplacementMap) Lookup(key string) string {
	return strings.TrimSpace(m[key])
}

// KeywordMatcher 关键词匹配器接口
type KeywordMatcher interface {
	FindMatches(content string, keywords ReplacementMap) []Match
	ReplaceMatches(content string, matches []Match) string
	ReplaceAll(content string, keywords ReplacementMap) (string, int)
}

// DocumentFiller 单一格式的文档填充器
type DocumentFiller interface {
	Fill(ctx context.Context, templatePath, outputPath string, replacements ReplacementMap) (*FillResult, error)
}

// DocumentProcessor 按格式分派的文档填充
type DocumentProcessor interface {
	Fill(ctx context.Context, templatePath, outputPath string, replacements ReplacementMap, method RiskMethod) (*FillResult, error)
	FillDocument(ctx context.Context, templatePath, outputPath string, replacements ReplacementMap, method RiskMethod) bool
}

// DocumentConverter 把 office 文档转换为 PDF 的外部协作者
type DocumentConverter interface {
	Convert(ctx context.Context, sourcePath, targetPDF string) error
	Name() string
}

// FormSubmission 表单提交后得到的替换映射
type FormSubmission interface {
	GetValues() ReplacementMap
}

// Match 表示一个匹配项
type Match struct {
	Keyword     string // 原始占位符
	Replacement string // 替换值
	StartPos    int    // 开始位置
	EndPos      int    // 结束位置
}

// FillResult 填充结果
type FillResult struct {
	Substitutions int
	Stats         map[string]int
	Unresolved    []string // 填充后仍留在文档中的占位符
}

// Add 合并一次替换的统计
func (r *FillResult) Add(keyword string, count int) {
	if count == 0 {
		return
	}
	if r.Stats == nil {
		r.Stats = make(map[string]int)
	}
	r.Stats[keyword] += count
	r.Substitutions += count
}

// Merge 合并另一份结果
func (r *FillResult) Merge(other *FillResult) {
	if other == nil {
		return
	}
	for k, n := range other.Stats {
		r.Add(k, n)
	}
	r.Unresolved = append(r.Unresolved, other.Unresolved...)
}

// DocumentFormat 文档格式
type DocumentFormat int

const (
	FormatUnknown DocumentFormat = iota
	FormatWord
	FormatSpreadsheet
)

func (f DocumentFormat) String() string {
	switch f {
	case FormatWord:
		return "docx"
	case FormatSpreadsheet:
		return "xlsx"
	default:
		return "unknown"
	}
}

// FormatFromPath 根据扩展名判断格式
func FormatFromPath(path string) DocumentFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return FormatWord
	case ".xlsx":
		return FormatSpreadsheet
	default:
		return FormatUnknown
	}
}

// TemplateDescriptor 模板描述
type TemplateDescriptor struct {
	LogicalName string
	Path        string
	Format      DocumentFormat
}

// RiskMethod 风险评估方法
type RiskMethod string

const (
	MethodMatrix     RiskMethod = "Matris"
	MethodFineKinney RiskMethod = "Fine Kinney"
)

// ParseRiskMethod 解析风险评估方法，未知值返回 false
func ParseRiskMethod(value string) (RiskMethod, bool) {
	v := strings.ToUpper(strings.Join(strings.Fields(value), " "))
	v = strings.NewReplacer("İ", "I", "_", " ", "-", " ").Replace(v)
	switch v {
	case "MATRIS", "MATRIX":
		return MethodMatrix, true
	case "FINE KINNEY", "FINEKINNEY":
		return MethodFineKinney, true
	default:
		return "", false
	}
}

// RunContext 一次批量生成的上下文，由生成器独占
type RunContext struct {
	RunID         uuid.UUID
	ProjectName   string
	OutputDir     string
	BackupDir     string
	GeneratePDF   bool
	RiskMethod    RiskMethod
	ReferenceDate string // dd.mm.yyyy
	ReferenceYear string
	StartedAt     time.Time

	outputs map[string]string
}

// NewRunContext 创建新的运行上下文
func NewRunContext(project, outputDir, backupDir string, method RiskMethod) *RunContext {
	return &RunContext{
		RunID:       uuid.New(),
		ProjectName: project,
		OutputDir:   outputDir,
		BackupDir:   backupDir,
		RiskMethod:  method,
		StartedAt:   time.Now(),
	}
}

// ClaimOutput 登记本次运行的输出路径，同一路径第二次登记返回 ErrOutputCollision
// 路径比较忽略大小写
func (rc *RunContext) ClaimOutput(path, document string) error {
	if rc.outputs == nil {
		rc.outputs = make(map[string]string)
	}
	key := strings.ToLower(filepath.Clean(path))
	if owner, ok := rc.outputs[key]; ok {
		return fmt.Errorf("%w: %s (%s)", ErrOutputCollision, filepath.Base(path), owner)
	}
	rc.outputs[key] = document
	return nil
}

// DeletionRule 某月某计划类型需要清空的单元格
type DeletionRule struct {
	Month   int
	PlanKey string
	Cells   []string
}
