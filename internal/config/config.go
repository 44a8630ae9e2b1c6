package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ToolConfig 外部转换工具的配置
type ToolConfig struct {
	Command  string `mapstructure:"command"`  // 覆盖默认可执行文件名
	Disabled bool   `mapstructure:"disabled"` // 禁用该工具（跳过对应策略）
}

// Config 保存 documix 的所有配置
type Config struct {
	OutputFile        string   `mapstructure:"output_file"`        // 输出文件路径
	Recursive         bool     `mapstructure:"recursive"`          // 递归遍历子目录
	IncludeExtensions []string `mapstructure:"include_extensions"` // 处理的扩展名列表
	ExcludePatterns   []string `mapstructure:"exclude_patterns"`   // 文件名排除模式（正则）
	ForceMode         string   `mapstructure:"force_mode"`         // 强制输出模式（standard / single_email）
	MaxDepth          int      `mapstructure:"max_depth"`          // 容器递归最大深度
	Debug             bool     `mapstructure:"debug"`
	Verbose           bool     `mapstructure:"verbose"` // 详细模式，显示每个文件的转换细节
	Quiet             bool     `mapstructure:"quiet"`   // 静默模式，不显示进度条和汇总

	// 外部工具配置（按工具名）
	Tools map[string]ToolConfig `mapstructure:"tools"`
}

// DefaultExtensions 默认处理的扩展名，与历史行为保持一致
var DefaultExtensions = []string{
	".pdf", ".epub", ".docx", ".doc", ".rtf", ".txt", ".md",
	".py", ".rb", ".js", ".html", ".css", ".json", ".yml", ".yaml",
	".zip", ".eml",
}

// NewDefaultConfig 创建默认配置
func NewDefaultConfig() *Config {
	return &Config{
		OutputFile:        "documix-output.md",
		Recursive:         false,
		IncludeExtensions: append([]string(nil), DefaultExtensions...),
		ExcludePatterns:   nil,
		ForceMode:         "",
		MaxDepth:          10,
		Tools:             map[string]ToolConfig{},
	}
}

// LoadConfig 加载配置文件（未找到时返回默认配置）
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".documix")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return NewDefaultConfig(), nil
		}
		// 隐式搜索到的配置文件解析失败：提示后按默认配置继续
		if configPath == "" {
			fmt.Printf("WARNING: Failed to read config file: %v\n", err)
			return NewDefaultConfig(), nil
		}
		// 显式指定的配置文件必须存在且可解析
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := NewDefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	normalize(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalize 规整配置：扩展名统一为小写且带点
func normalize(cfg *Config) {
	if len(cfg.IncludeExtensions) == 0 {
		cfg.IncludeExtensions = append([]string(nil), DefaultExtensions...)
	}
	for i, ext := range cfg.IncludeExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.IncludeExtensions[i] = ext
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 10
	}
}

// validate 验证配置
func validate(cfg *Config) error {
	switch cfg.ForceMode {
	case "", "standard", "single_email":
	default:
		return fmt.Errorf("invalid force_mode: %q (expected standard or single_email)", cfg.ForceMode)
	}
	if cfg.OutputFile == "" {
		return fmt.Errorf("output_file must not be empty")
	}
	return nil
}
