package domain

import "errors"

var (
	ErrTemplateNotFound     = errors.New("模板未找到")
	ErrOutputCollision      = errors.New("输出路径已被本次运行使用")
	ErrRuleNotFound         = errors.New("没有匹配的删除规则")
	ErrConverterUnavailable = errors.New("PDF 转换器不可用")
	ErrUnsupportedFormat    = errors.New("不支持的文档格式")
	ErrInvalidDocumentName  = errors.New("文档名不能包含路径")
)
