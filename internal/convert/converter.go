// Package convert 把生成的 office 文档导出为 PDF
package convert

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/allanpk716/evrak_generator/internal/config"
	"github.com/allanpk716/evrak_generator/internal/domain"
)

// NewDocumentConverter 根据启动时探测到的平台能力选择转换器
// Windows 使用 Office 自动化，其他平台使用 LibreOffice 命令行
func NewDocumentConverter(env *config.RuntimeEnvironment) domain.DocumentConverter {
	timeout := time.Duration(env.Config.PDF.TimeoutSeconds) * time.Second
	logger := env.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if env.Platform == "windows" {
		if shell, err := exec.LookPath("powershell"); err == nil {
			return &officeConverter{shell: shell, timeout: timeout, logger: logger}
		}
	}
	if env.SofficePath != "" {
		return &sofficeConverter{binary: env.SofficePath, timeout: timeout, logger: logger}
	}

	logger.Warn("未找到 PDF 转换器，PDF 导出不可用")
	return unavailableConverter{}
}

// sofficeConverter 通过 soffice --headless --convert-to pdf 转换
type sofficeConverter struct {
	binary  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewSofficeConverter 创建 LibreOffice 转换器
func NewSofficeConverter(binary string, timeout time.Duration, logger *zap.Logger) domain.DocumentConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sofficeConverter{binary: binary, timeout: timeout, logger: logger}
}

func (c *sofficeConverter) Name() string {
	return "libreoffice"
}

// Convert 转换为 PDF，LibreOffice 按源文件名命名输出，完成后移动到目标路径
func (c *sofficeConverter) Convert(ctx context.Context, sourcePath, targetPDF string) error {
	source, err := filepath.Abs(sourcePath)
	if err != nil {
		return fmt.Errorf("解析源文件路径失败: %w", err)
	}
	outDir := filepath.Dir(targetPDF)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("创建 PDF 目录失败: %w", err)
	}

	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary, "--headless", "--convert-to", "pdf", "--outdir", outDir, source)
	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("PDF 转换超时 (%s): %s", c.timeout, filepath.Base(sourcePath))
	}
	if err != nil {
		return fmt.Errorf("PDF 转换失败: %w: %s", err, strings.TrimSpace(string(output)))
	}

	produced := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))+".pdf")
	if produced != targetPDF {
		if err := os.Rename(produced, targetPDF); err != nil {
			return fmt.Errorf("移动 PDF 文件失败: %w", err)
		}
	}

	c.logger.Info("PDF 已生成", zap.String("converter", c.Name()), zap.String("file", filepath.Base(targetPDF)))
	return nil
}

// officeConverter 通过 PowerShell 调用 Word/Excel 的 ExportAsFixedFormat
type officeConverter struct {
	shell   string
	timeout time.Duration
	logger  *zap.Logger
}

func (c *officeConverter) Name() string {
	return "office"
}

func (c *officeConverter) Convert(ctx context.Context, sourcePath, targetPDF string) error {
	source, err := filepath.Abs(sourcePath)
	if err != nil {
		return fmt.Errorf("解析源文件路径失败: %w", err)
	}
	target, err := filepath.Abs(targetPDF)
	if err != nil {
		return fmt.Errorf("解析目标路径失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("创建 PDF 目录失败: %w", err)
	}

	script, err := officeScript(source, target)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.shell, "-NoProfile", "-NonInteractive", "-Command", script)
	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("PDF 转换超时 (%s): %s", c.timeout, filepath.Base(sourcePath))
	}
	if err != nil {
		return fmt.Errorf("调用 Office 导出 PDF 失败: %w: %s", err, strings.TrimSpace(string(output)))
	}
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("PDF 文件未生成: %w", err)
	}

	c.logger.Info("PDF 已生成", zap.String("converter", c.Name()), zap.String("file", filepath.Base(targetPDF)))
	return nil
}

// officeScript 生成导出脚本，路径中的单引号按 PowerShell 规则转义
func officeScript(source, target string) (string, error) {
	src := psQuote(source)
	dst := psQuote(target)

	switch domain.FormatFromPath(source) {
	case domain.FormatWord:
		return "$app = New-Object -ComObject Word.Application; $app.Visible = $false; $app.DisplayAlerts = 0; " +
			"try { $doc = $app.Documents.Open(" + src + ", $false, $true); $doc.ExportAsFixedFormat(" + dst + ", 17); $doc.Close($false) } " +
			"finally { $app.Quit() }", nil
	case domain.FormatSpreadsheet:
		return "$app = New-Object -ComObject Excel.Application; $app.Visible = $false; $app.DisplayAlerts = $false; " +
			"try { $wb = $app.Workbooks.Open(" + src + ", 0, $true); $wb.ExportAsFixedFormat(0, " + dst + "); $wb.Close($false) } " +
			"finally { $app.Quit() }", nil
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Ext(source))
	}
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// unavailableConverter 没有可用转换器时使用
type unavailableConverter struct{}

func (unavailableConverter) Name() string {
	return "none"
}

func (unavailableConverter) Convert(context.Context, string, string) error {
	return domain.ErrConverterUnavailable
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
