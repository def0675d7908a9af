package datasource

import (
	"errors"
	"fmt"
)

// ErrMissingColumn 表头中缺少必需的列
var ErrMissingColumn = errors.New("缺少必需的列")

// DataSourceError 数据源无法读取，整个批次应当中止
type DataSourceError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("数据源不可用 %s (%s): %v", e.Path, e.Reason, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// NewDataSourceError 创建数据源错误
func NewDataSourceError(path, reason string, err error) *DataSourceError {
	return &DataSourceError{
		Path:   path,
		Reason: reason,
		Err:    err,
	}
}
