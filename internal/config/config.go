package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/allanpk716/evrak_generator/internal/domain"
)

// ConfigFileName 默认配置文件名
const ConfigFileName = "config.toml"

// AppConfig 应用配置
type AppConfig struct {
	Paths        PathsConfig       `toml:"paths"`
	Placeholders PlaceholderConfig `toml:"placeholders"`
	Business     BusinessConfig    `toml:"business"`
	PDF          PDFConfig         `toml:"pdf"`
	Log          LogConfig         `toml:"log"`
	History      HistoryConfig     `toml:"history"`
	Server       ServerConfig      `toml:"server"`
}

// PathsConfig 文件和目录
type PathsConfig struct {
	DocumentDir      string `toml:"document_dir"`
	YearlyDir        string `toml:"yearly_dir"`
	DataFile         string `toml:"data_file"`
	RulesFile        string `toml:"rules_file"`
	YearlyDataFile   string `toml:"yearly_data_file"`
	WorkplaceTable   string `toml:"workplace_table"`
	NaceTable        string `toml:"nace_table"`
	ActivityTemplate string `toml:"activity_template"`
	OutputRoot       string `toml:"output_root"`
	BackupRoot       string `toml:"backup_root"`
}

// PlaceholderConfig 业务逻辑读取的占位符名称
type PlaceholderConfig struct {
	ProjectName  string `toml:"project_name"`
	CompanyTitle string `toml:"company_title"`
	StaffCount   string `toml:"staff_count"`
	YearlyDate   string `toml:"yearly_date"`
	YearlyYear   string `toml:"yearly_year"`
	RiskMethod   string `toml:"risk_method"`
	ActivityDate string `toml:"activity_date"`
}

// BusinessConfig 业务配置
type BusinessConfig struct {
	CouncilThreshold  int    `toml:"council_threshold"`
	DefaultRiskMethod string `toml:"default_risk_method"`
	StrictRules       bool   `toml:"strict_rules"`
	KeyHeader         string `toml:"key_header"`
	ValueHeader       string `toml:"value_header"`
}

// PDFConfig PDF 导出配置
type PDFConfig struct {
	Enabled        bool   `toml:"enabled"`
	SofficeBinary  string `toml:"soffice_binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// HistoryConfig 运行历史配置
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db_path"`
}

// ServerConfig 本地 HTTP 服务配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// ConfigManager 配置管理接口
type ConfigManager interface {
	LoadConfig(filePath string) (*AppConfig, error)
	ValidateConfig(config *AppConfig) error
	SaveConfig(config *AppConfig, filePath string) error
}

// configManager 配置管理器实现
type configManager struct {
	getenv func(string) string
}

// NewConfigManager 创建新的配置管理器
func NewConfigManager() ConfigManager {
	return &configManager{getenv: os.Getenv}
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Paths: PathsConfig{
			DocumentDir:      "Evraklar",
			YearlyDir:        filepath.Join("Evraklar", "YILLIKLAR"),
			DataFile:         "veri.xlsx",
			RulesFile:        "YILLIK_SILME_KURALLARI.csv",
			YearlyDataFile:   "yıllıkverileri.xlsx",
			WorkplaceTable:   "ANKARA İŞYERI TABLOSU.xlsx",
			NaceTable:        "Nace Kod Listesi.xlsx",
			ActivityTemplate: filepath.Join("Evraklar", "FAALİYET FORMU.xlsx"),
			OutputRoot:       "",
			BackupRoot:       "yedekler",
		},
		Placeholders: PlaceholderConfig{
			ProjectName:  domain.TokenProjectName,
			CompanyTitle: domain.TokenCompanyTitle,
			StaffCount:   domain.TokenStaffCount,
			YearlyDate:   domain.TokenYearlyDate,
			YearlyYear:   domain.TokenYearlyYear,
			RiskMethod:   domain.TokenRiskMethod,
			ActivityDate: domain.TokenActivityDate,
		},
		Business: BusinessConfig{
			CouncilThreshold:  50,
			DefaultRiskMethod: string(domain.MethodMatrix),
			StrictRules:       false,
			KeyHeader:         "Anahtar",
			ValueHeader:       "Karşılık",
		},
		PDF: PDFConfig{
			Enabled:        false,
			SofficeBinary:  "soffice",
			TimeoutSeconds: 60,
		},
		Log: LogConfig{
			Level: "info",
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  filepath.Join("data", "evrak.db"),
		},
		Server: ServerConfig{
			Port: 20262,
		},
	}
}

// LoadConfig 从 TOML 文件加载配置
// 路径为空时依次查找可执行文件目录和当前目录，都不存在则使用默认配置
func (cm *configManager) LoadConfig(filePath string) (*AppConfig, error) {
	config := DefaultConfig()

	explicit := filePath != ""
	if !explicit {
		filePath = locateConfigFile()
	}

	if filePath != "" {
		if ext := strings.ToLower(filepath.Ext(filePath)); ext != ".toml" {
			return nil, fmt.Errorf("配置文件必须是 TOML 格式，当前文件: %s", ext)
		}

		data, err := os.ReadFile(filePath)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("解析配置文件失败: %w", err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		case errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("配置文件不存在: %s", filePath)
		default:
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	cm.applyEnvOverrides(config)

	if err := cm.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return config, nil
}

// applyEnvOverrides 环境变量覆盖
func (cm *configManager) applyEnvOverrides(config *AppConfig) {
	if v := cm.getenv("EVRAK_DATA_FILE"); v != "" {
		config.Paths.DataFile = v
	}
	if v := cm.getenv("EVRAK_OUTPUT_DIR"); v != "" {
		config.Paths.OutputRoot = v
	}
	if v := cm.getenv("EVRAK_SOFFICE"); v != "" {
		config.PDF.SofficeBinary = v
	}
}

// ValidateConfig 验证配置的有效性
func (cm *configManager) ValidateConfig(config *AppConfig) error {
	if config == nil {
		return fmt.Errorf("配置不能为空")
	}

	if config.Paths.DocumentDir == "" {
		return fmt.Errorf("文档目录不能为空")
	}
	if config.Paths.DataFile == "" {
		return fmt.Errorf("替换表路径不能为空")
	}

	if config.Business.CouncilThreshold <= 0 {
		return fmt.Errorf("委员会人数阈值必须大于 0，当前: %d", config.Business.CouncilThreshold)
	}
	if _, ok := domain.ParseRiskMethod(config.Business.DefaultRiskMethod); !ok {
		return fmt.Errorf("未知的风险评估方法: %s", config.Business.DefaultRiskMethod)
	}

	placeholders := map[string]string{
		"project_name":  config.Placeholders.ProjectName,
		"staff_count":   config.Placeholders.StaffCount,
		"yearly_date":   config.Placeholders.YearlyDate,
		"yearly_year":   config.Placeholders.YearlyYear,
		"risk_method":   config.Placeholders.RiskMethod,
		"activity_date": config.Placeholders.ActivityDate,
	}
	for name, value := range placeholders {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("占位符 %s 不能为空", name)
		}
	}

	if config.PDF.TimeoutSeconds <= 0 {
		return fmt.Errorf("PDF 转换超时必须大于 0")
	}
	if config.Server.Port < 0 || config.Server.Port > 65535 {
		return fmt.Errorf("端口无效: %d", config.Server.Port)
	}

	return nil
}

// SaveConfig 保存配置到 TOML 文件
func (cm *configManager) SaveConfig(config *AppConfig, filePath string) error {
	if err := cm.ValidateConfig(config); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建配置目录失败: %w", err)
		}
	}

	if _, err := createBackup(filePath); err != nil {
		return fmt.Errorf("创建配置备份失败: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}

// createBackup 覆盖前备份已有的配置文件，文件不存在时返回空路径
func createBackup(filePath string) (string, error) {
	src, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("读取原文件失败: %w", err)
	}

	dir := filepath.Dir(filePath)
	base := filepath.Base(filePath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	timestamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(dir, fmt.Sprintf("%s_backup_%s%s", name, timestamp, ext))

	if err := os.WriteFile(backupPath, src, 0644); err != nil {
		return "", fmt.Errorf("写入备份文件失败: %w", err)
	}
	return backupPath, nil
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// locateConfigFile 查找默认位置的配置文件，找不到返回当前目录下的默认路径
func locateConfigFile() string {
	if exeDir, err := GetExeDir(); err == nil {
		candidate := filepath.Join(exeDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ConfigFileName
}

// ResolveOutputRoot 输出根目录，未配置时使用桌面
func (c *AppConfig) ResolveOutputRoot() string {
	if c.Paths.OutputRoot != "" {
		return c.Paths.OutputRoot
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	desktop := filepath.Join(home, "Desktop")
	if info, err := os.Stat(desktop); err == nil && info.IsDir() {
		return desktop
	}
	return home
}

// RiskMethod 默认风险评估方法
func (c *AppConfig) RiskMethod() domain.RiskMethod {
	if m, ok := domain.ParseRiskMethod(c.Business.DefaultRiskMethod); ok {
		return m
	}
	return domain.MethodMatrix
}
