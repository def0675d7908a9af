package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/allanpk716/evrak_generator/internal/report"
)

// RunSummary 一次运行的概要
type RunSummary struct {
	ID            string    `json:"id" yaml:"id"`
	Project       string    `json:"project" yaml:"project"`
	OutputDir     string    `json:"output_dir" yaml:"output_dir"`
	StartedAt     time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt    time.Time `json:"finished_at" yaml:"finished_at"`
	Total         int       `json:"total" yaml:"total"`
	Succeeded     int       `json:"succeeded" yaml:"succeeded"`
	Substitutions int       `json:"substitutions" yaml:"substitutions"`
	Error         string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary 形如 "3/4"
func (r RunSummary) Summary() string {
	return fmt.Sprintf("%d/%d", r.Succeeded, r.Total)
}

// RunDetail 运行概要和每个文档的结果
type RunDetail struct {
	RunSummary `yaml:",inline"`
	Documents  []report.Outcome `json:"documents" yaml:"documents"`
}

// SaveRun 保存一次运行及其文档结果，同一运行重复保存时覆盖
func (s *Store) SaveRun(r *report.Report) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}
	defer tx.Rollback()

	id := r.RunID.String()
	if _, err := tx.Exec(`DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("删除旧运行记录失败: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO runs (id, project, output_dir, started_at, finished_at, total, succeeded, substitutions, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, r.Project, r.OutputDir, formatTime(r.StartedAt), formatTime(r.FinishedAt),
		r.Total(), r.Succeeded(), r.Substitutions(), r.Err)
	if err != nil {
		return fmt.Errorf("写入运行记录失败: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_documents (run_id, position, name, output_path, pdf_path, success, substitutions, unresolved, error_message, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("准备语句失败: %w", err)
	}
	defer stmt.Close()

	for i, d := range r.Outcomes() {
		_, err := stmt.Exec(id, i, d.Name, d.OutputPath, d.PDFPath, d.Success, d.Substitutions,
			strings.Join(d.Unresolved, "\n"), d.Error, d.Duration.Milliseconds())
		if err != nil {
			return fmt.Errorf("写入文档结果失败: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// ListRuns 按开始时间倒序列出最近的运行
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, project, output_dir, started_at, finished_at, total, succeeded, substitutions, error_message
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("查询运行记录失败: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun 读取一次运行及其文档结果
func (s *Store) GetRun(id string) (*RunDetail, error) {
	row := s.db.QueryRow(`
		SELECT id, project, output_dir, started_at, finished_at, total, succeeded, substitutions, error_message
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT name, output_path, pdf_path, success, substitutions, unresolved, error_message, duration_ms
		FROM run_documents WHERE run_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("查询文档结果失败: %w", err)
	}
	defer rows.Close()

	detail := &RunDetail{RunSummary: run}
	for rows.Next() {
		var (
			d          report.Outcome
			unresolved string
			durationMS int64
		)
		if err := rows.Scan(&d.Name, &d.OutputPath, &d.PDFPath, &d.Success, &d.Substitutions,
			&unresolved, &d.Error, &durationMS); err != nil {
			return nil, fmt.Errorf("读取文档结果失败: %w", err)
		}
		if unresolved != "" {
			d.Unresolved = strings.Split(unresolved, "\n")
		}
		d.Duration = time.Duration(durationMS) * time.Millisecond
		detail.Documents = append(detail.Documents, d)
	}
	return detail, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (RunSummary, error) {
	var (
		run               RunSummary
		started, finished string
	)
	err := row.Scan(&run.ID, &run.Project, &run.OutputDir, &started, &finished,
		&run.Total, &run.Succeeded, &run.Substitutions, &run.Error)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, err
		}
		return run, fmt.Errorf("读取运行记录失败: %w", err)
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	return run, nil
}
