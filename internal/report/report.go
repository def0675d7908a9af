// Package report 记录一次批量生成中每个文档的结果
package report

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/allanpk716/evrak_generator/internal/domain"
)

// Outcome 单个文档的生成结果
type Outcome struct {
	Name          string         `json:"name" yaml:"name"`
	OutputPath    string         `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	PDFPath       string         `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`
	Success       bool           `json:"success" yaml:"success"`
	Substitutions int            `json:"substitutions" yaml:"substitutions"`
	Stats         map[string]int `json:"-" yaml:"-"`
	Unresolved    []string       `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
	Error         string         `json:"error,omitempty" yaml:"error,omitempty"`
	Duration      time.Duration  `json:"duration" yaml:"duration"`
}

// KeywordUsage 一个占位符在整批中的替换情况
type KeywordUsage struct {
	Keyword      string `json:"keyword" yaml:"keyword"`
	ReplaceCount int    `json:"replace_count" yaml:"replace_count"`
	Documents    int    `json:"documents" yaml:"documents"`
}

// Report 批量结果，文档按处理顺序排列
type Report struct {
	RunID      uuid.UUID `json:"run_id" yaml:"run_id"`
	Project    string    `json:"project" yaml:"project"`
	OutputDir  string    `json:"output_dir" yaml:"output_dir"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Documents  []Outcome `json:"documents" yaml:"documents"`
	Err        string    `json:"error,omitempty" yaml:"error,omitempty"`

	mu       sync.RWMutex
	keywords map[string]*KeywordUsage
}

// New 为一次运行创建报告
func New(run *domain.RunContext) *Report {
	r := &Report{keywords: make(map[string]*KeywordUsage)}
	if run != nil {
		r.RunID = run.RunID
		r.Project = run.ProjectName
		r.OutputDir = run.OutputDir
		r.StartedAt = run.StartedAt
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	return r
}

// Record 添加一个文档结果并累计占位符统计
func (r *Report) Record(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Documents = append(r.Documents, o)
	for keyword, count := range o.Stats {
		usage, ok := r.keywords[keyword]
		if !ok {
			usage = &KeywordUsage{Keyword: keyword}
			r.keywords[keyword] = usage
		}
		usage.ReplaceCount += count
		usage.Documents++
	}
}

// Fail 记录整批失败，例如替换表无法读取
func (r *Report) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.Err = err.Error()
	}
}

// Finish 记录结束时间
func (r *Report) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FinishedAt = time.Now()
}

// Outcomes 文档结果的副本
func (r *Report) Outcomes() []Outcome {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Outcome(nil), r.Documents...)
}

// Total 文档总数
func (r *Report) Total() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Documents)
}

// Succeeded 成功的文档数
func (r *Report) Succeeded() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, d := range r.Documents {
		if d.Success {
			n++
		}
	}
	return n
}

// Failed 失败的文档
func (r *Report) Failed() []Outcome {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var failed []Outcome
	for _, d := range r.Documents {
		if !d.Success {
			failed = append(failed, d)
		}
	}
	return failed
}

// Substitutions 所有文档的替换总数
func (r *Report) Substitutions() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, d := range r.Documents {
		total += d.Substitutions
	}
	return total
}

// Keywords 占位符统计，按替换次数降序
func (r *Report) Keywords() []KeywordUsage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	usages := make([]KeywordUsage, 0, len(r.keywords))
	for _, u := range r.keywords {
		usages = append(usages, *u)
	}
	sort.Slice(usages, func(i, j int) bool {
		if usages[i].ReplaceCount != usages[j].ReplaceCount {
			return usages[i].ReplaceCount > usages[j].ReplaceCount
		}
		return usages[i].Keyword < usages[j].Keyword
	})
	return usages
}

// Unresolved 所有文档中未替换的占位符，去重并排序
func (r *Report) Unresolved() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var tokens []string
	for _, d := range r.Documents {
		for _, tok := range d.Unresolved {
			if !seen[tok] {
				seen[tok] = true
				tokens = append(tokens, tok)
			}
		}
	}
	sort.Strings(tokens)
	return tokens
}

// Summary 形如 "3/4"
func (r *Report) Summary() string {
	return fmt.Sprintf("%d/%d", r.Succeeded(), r.Total())
}
