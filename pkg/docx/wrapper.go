package docx

import (
	"fmt"
	"io"
	"os"

	"github.com/nguyenthenguyen/docx"
)

// DocxWrapper 包装 nguyenthenguyen/docx 库
type DocxWrapper struct {
	reader   *docx.ReplaceDocx
	doc      *docx.Docx
	filePath string
	modified bool
}

// OpenDocument 打开DOCX文档
func (dw *DocxWrapper) OpenDocument(filePath string) error {
	reader, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return fmt.Errorf("打开文档失败: %w", err)
	}

	dw.reader = reader
	dw.doc = reader.Editable()
	dw.filePath = filePath
	dw.modified = false
	return nil
}

// Content 返回正文 XML
func (dw *DocxWrapper) Content() string {
	if dw.doc == nil {
		return ""
	}
	return dw.doc.GetContent()
}

// SetContent 替换正文 XML
func (dw *DocxWrapper) SetContent(content string) {
	if dw.doc == nil || content == dw.doc.GetContent() {
		return
	}
	dw.doc.SetContent(content)
	dw.modified = true
}

// SaveDocument 保存文档
func (dw *DocxWrapper) SaveDocument(outputPath string) error {
	if dw.doc == nil {
		return fmt.Errorf("文档未打开")
	}

	// 如果没有修改，直接复制原文件
	if !dw.modified {
		return dw.copyOriginalFile(outputPath)
	}

	// 输出可能就是源文件，先写临时文件，关闭源文件后再改名
	tmpPath := outputPath + ".tmp"
	if err := dw.doc.WriteToFile(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("保存文档失败: %w", err)
	}
	if err := dw.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("关闭源文档失败: %w", err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("保存文档失败: %w", err)
	}
	return nil
}

// copyOriginalFile 复制原始文件
func (dw *DocxWrapper) copyOriginalFile(outputPath string) error {
	if dw.filePath == outputPath {
		return nil
	}

	sourceFile, err := os.Open(dw.filePath)
	if err != nil {
		return fmt.Errorf("打开源文件失败: %w", err)
	}
	defer sourceFile.Close()

	destFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("创建目标文件失败: %w", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return fmt.Errorf("复制文件失败: %w", err)
	}
	return nil
}

// Close 关闭文档
func (dw *DocxWrapper) Close() error {
	if dw.reader == nil {
		return nil
	}
	err := dw.reader.Close()
	dw.reader = nil
	dw.doc = nil
	return err
}
