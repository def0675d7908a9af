package store

import (
	"fmt"
	"time"
)

// MaxRecentSGK 保留的最近 SGK 短码数量
const MaxRecentSGK = 3

// RememberSGK 把短码放到最近列表的最前面，只保留最近三个
func (s *Store) RememberSGK(code string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO sgk_history (code, used_at) VALUES (?, ?)
		ON CONFLICT(code) DO UPDATE SET used_at = excluded.used_at
	`, code, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("写入 SGK 历史失败: %w", err)
	}

	_, err = tx.Exec(`
		DELETE FROM sgk_history WHERE code NOT IN (
			SELECT code FROM sgk_history ORDER BY used_at DESC LIMIT ?
		)
	`, MaxRecentSGK)
	if err != nil {
		return fmt.Errorf("清理 SGK 历史失败: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// RecentSGK 最近使用的短码，最新的在前
func (s *Store) RecentSGK() ([]string, error) {
	rows, err := s.db.Query(`SELECT code FROM sgk_history ORDER BY used_at DESC LIMIT ?`, MaxRecentSGK)
	if err != nil {
		return nil, fmt.Errorf("查询 SGK 历史失败: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("读取 SGK 历史失败: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}
