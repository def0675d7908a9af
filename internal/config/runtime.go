package config

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RuntimeEnvironment 启动时构建一次，之后只读
type RuntimeEnvironment struct {
	Config   *AppConfig
	Logger   *zap.Logger
	Platform string
	WorkDir  string

	// SofficePath 为空表示未找到 LibreOffice
	SofficePath string
}

// NewRuntimeEnvironment 构建运行环境并探测平台能力
func NewRuntimeEnvironment(cfg *AppConfig, verbose bool) (*RuntimeEnvironment, error) {
	logger, err := NewLogger(cfg.Log, verbose)
	if err != nil {
		return nil, err
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	env := &RuntimeEnvironment{
		Config:   cfg,
		Logger:   logger,
		Platform: runtime.GOOS,
		WorkDir:  wd,
	}
	env.SofficePath = lookupSoffice(cfg.PDF.SofficeBinary)

	logger.Debug("运行环境已就绪",
		zap.String("platform", env.Platform),
		zap.String("workdir", env.WorkDir),
		zap.String("soffice", env.SofficePath))
	return env, nil
}

// Close 刷新日志
func (e *RuntimeEnvironment) Close() {
	if e.Logger != nil {
		_ = e.Logger.Sync()
	}
}

// NewLogger 创建 zap 日志器，verbose 时使用开发模式配置
func NewLogger(cfg LogConfig, verbose bool) (*zap.Logger, error) {
	var zc zap.Config
	if verbose {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zc.Sampling = nil

		level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
		if err != nil {
			return nil, fmt.Errorf("无效的日志级别 %q: %w", cfg.Level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}

	zc.OutputPaths = []string{"stderr"}
	if cfg.File != "" {
		zc.OutputPaths = append(zc.OutputPaths, cfg.File)
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("创建日志器失败: %w", err)
	}
	return logger, nil
}

// lookupSoffice 查找 LibreOffice 可执行文件
func lookupSoffice(configured string) string {
	candidates := []string{configured, "soffice", "libreoffice"}
	if runtime.GOOS == "darwin" {
		candidates = append(candidates, "/Applications/LibreOffice.app/Contents/MacOS/soffice")
	}
	if runtime.GOOS == "windows" {
		candidates = append(candidates,
			`C:\Program Files\LibreOffice\program\soffice.exe`,
			`C:\Program Files (x86)\LibreOffice\program\soffice.exe`)
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		if path, err := exec.LookPath(c); err == nil {
			return path
		}
	}
	return ""
}
