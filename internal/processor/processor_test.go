package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/allanpk716/evrak_generator/internal/domain"
	"github.com/allanpk716/evrak_generator/internal/testutil"
)

func TestNewDocumentProcessor(t *testing.T) {
	processor := NewDocumentProcessor(nil)

	if processor == nil {
		t.Error("NewDocumentProcessor 返回 nil")
	}

	// 验证接口实现
	var _ domain.DocumentProcessor = processor
}

func TestDocumentProcessor_Fill_InvalidPath(t *testing.T) {
	processor := NewDocumentProcessor(nil)
	keywordMap := domain.ReplacementMap{"[DEĞİŞTİR:TEST]": "value"}

	_, err := processor.Fill(context.Background(), "nonexistent.docx", "output.docx", keywordMap, domain.MethodMatrix)
	if err == nil {
		t.Error("期望处理不存在的文件时返回错误")
	}

	if processor.FillDocument(context.Background(), "nonexistent.xlsx", "output.xlsx", keywordMap, domain.MethodMatrix) {
		t.Error("FillDocument 应返回 false")
	}
}

func TestDocumentProcessor_Fill_UnsupportedFormat(t *testing.T) {
	input := filepath.Join(t.TempDir(), "notlar.txt")
	if err := os.WriteFile(input, []byte("[DEĞİŞTİR:PROJEADI]"), 0644); err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	processor := NewDocumentProcessor(nil)
	_, err := processor.Fill(context.Background(), input, input+".out", nil, domain.MethodMatrix)
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Errorf("期望 ErrUnsupportedFormat，实际: %v", err)
	}
}

func TestDocumentProcessor_Fill_Timeout(t *testing.T) {
	tempDir := t.TempDir()
	inputFile := testutil.WriteDocx(t, filepath.Join(tempDir, "test.docx"),
		`<w:p><w:r><w:t>[DEĞİŞTİR:PROJEADI]</w:t></w:r></w:p>`, "")
	outputFile := filepath.Join(tempDir, "output.docx")

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
	defer cancel()
	time.Sleep(1 * time.Millisecond)

	processor := NewDocumentProcessor(nil)
	if _, err := processor.Fill(ctx, inputFile, outputFile, domain.ReplacementMap{"[DEĞİŞTİR:PROJEADI]": "X"}, domain.MethodMatrix); err == nil {
		t.Error("期望在超时时返回错误")
	}
	if _, err := os.Stat(outputFile); err == nil {
		t.Error("超时后不应生成输出文件")
	}
}

func TestDocumentProcessor_Dispatch(t *testing.T) {
	tempDir := t.TempDir()
	replacements := domain.ReplacementMap{"[DEĞİŞTİR:PROJEADI]": "ACME"}

	wordTemplate := testutil.WriteDocx(t, filepath.Join(tempDir, "a.docx"),
		`<w:p><w:r><w:t>[DEĞİŞTİR:PROJEADI]</w:t></w:r></w:p>`, "")
	sheetTemplate := testutil.WriteWorkbook(t, filepath.Join(tempDir, "b.xlsx"), []string{"Sayfa1"},
		map[string]testutil.Cells{"Sayfa1": {"A1": "[DEĞİŞTİR:PROJEADI]"}})

	tests := []struct {
		name     string
		template string
		output   string
	}{
		{"word", wordTemplate, filepath.Join(tempDir, "ACME - a.docx")},
		{"spreadsheet", sheetTemplate, filepath.Join(tempDir, "ACME - b.xlsx")},
	}

	processor := NewDocumentProcessor(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := processor.Fill(context.Background(), tt.template, tt.output, replacements, domain.MethodMatrix)
			if err != nil {
				t.Fatalf("Fill() error = %v", err)
			}
			if result.Substitutions != 1 {
				t.Errorf("Substitutions = %d, expected 1", result.Substitutions)
			}
			if result.Stats["[DEĞİŞTİR:PROJEADI]"] != 1 {
				t.Errorf("Stats = %v", result.Stats)
			}
		})
	}
}
