package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	xerrors "CalendarAgent/internal/errors"
)

// 支持的命令来源。
const (
	DriverConsole  = "console"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverRabbitMQ = "rabbitmq"
)

// Config 描述了日程助手启动阶段需要加载的全部配置。
type Config struct {
	Logging   LoggingConfig   `json:"logging" yaml:"logging" envPrefix:"LOG_"`
	Console   ConsoleConfig   `json:"console" yaml:"console" envPrefix:"CONSOLE_"`
	Transport TransportConfig `json:"transport" yaml:"transport" envPrefix:"TRANSPORT_"`
}

// LoggingConfig 控制诊断日志与审计日志。
type LoggingConfig struct {
	Level   string      `json:"level" yaml:"level" env:"LEVEL"`
	Format  string      `json:"format" yaml:"format" env:"FORMAT"`
	Outputs []string    `json:"outputs" yaml:"outputs" env:"OUTPUTS" envSeparator:","`
	Audit   AuditConfig `json:"audit" yaml:"audit" envPrefix:"AUDIT_"`
}

// AuditConfig 描述审计日志文件及其轮转策略。
type AuditConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled" env:"ENABLED"`
	Path       string `json:"path" yaml:"path" env:"PATH"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups" env:"MAX_BACKUPS"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days" env:"MAX_AGE_DAYS"`
}

// ConsoleConfig 控制交互式会话的提示信息。
type ConsoleConfig struct {
	Prompt     string `json:"prompt" yaml:"prompt" env:"PROMPT"`
	HideBanner bool   `json:"hide_banner" yaml:"hide_banner" env:"HIDE_BANNER"`
}

// TransportConfig 选择命令来源：标准输入或消息队列。
type TransportConfig struct {
	Driver   string         `json:"driver" yaml:"driver" env:"DRIVER"`
	Workers  int            `json:"workers" yaml:"workers" env:"WORKERS"`
	Redis    RedisConfig    `json:"redis" yaml:"redis" envPrefix:"REDIS_"`
	RabbitMQ RabbitMQConfig `json:"rabbitmq" yaml:"rabbitmq" envPrefix:"RABBITMQ_"`
}

// RedisConfig 描述 Redis 队列的连接参数。
type RedisConfig struct {
	Address          string `json:"address" yaml:"address" env:"ADDRESS"`
	Password         string `json:"password" yaml:"password" env:"PASSWORD"`
	DB               int    `json:"db" yaml:"db" env:"DB"`
	Queue            string `json:"queue" yaml:"queue" env:"QUEUE"`
	ReplyQueue       string `json:"reply_queue" yaml:"reply_queue" env:"REPLY_QUEUE"`
	BlockWaitSeconds int    `json:"block_wait_seconds" yaml:"block_wait_seconds" env:"BLOCK_WAIT_SECONDS"`
}

// BlockWait 返回 BRPOP 的阻塞时长。
func (c RedisConfig) BlockWait() time.Duration {
	return time.Duration(c.BlockWaitSeconds) * time.Second
}

// RabbitMQConfig 描述 RabbitMQ 队列的连接参数。
type RabbitMQConfig struct {
	URL        string `json:"url" yaml:"url" env:"URL"`
	Queue      string `json:"queue" yaml:"queue" env:"QUEUE"`
	ReplyQueue string `json:"reply_queue" yaml:"reply_queue" env:"REPLY_QUEUE"`
	Prefetch   int    `json:"prefetch" yaml:"prefetch" env:"PREFETCH"`
	Durable    bool   `json:"durable" yaml:"durable" env:"DURABLE"`
	AutoDelete bool   `json:"auto_delete" yaml:"auto_delete" env:"AUTO_DELETE"`
}

const (
	// EnvPrefix 是所有环境变量覆盖项的公共前缀。
	EnvPrefix = "CALENDAR_"
	// PathEnv 指定配置文件路径的环境变量。
	PathEnv = "CALENDAR_AGENT_CONFIG"
	// DefaultPath 是未设置 PathEnv 时尝试读取的配置文件。
	DefaultPath = "configs/calendar-agent.yaml"
)

// Default 返回未提供配置文件时使用的配置。
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults("")
	return cfg
}

// Resolve 按 PathEnv、DefaultPath 的顺序寻找配置文件；都不存在时仅使用默认值与环境变量。
func Resolve() (*Config, error) {
	path := strings.TrimSpace(os.Getenv(PathEnv))
	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}
	if path != "" {
		return Load(path)
	}

	cfg := &Config{}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults("")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load 解析指定路径的 JSON 或 YAML 配置文件，并叠加环境变量覆盖项。
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, xerrors.New(xerrors.CodeConfigInvalid, "配置文件路径为空")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeConfigInvalid, err, "读取配置文件失败")
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &cfg)
	case ".json":
		err = json.Unmarshal(content, &cfg)
	default:
		return nil, xerrors.New(xerrors.CodeConfigInvalid, fmt.Sprintf("不支持的配置文件格式: %s", path))
	}
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeConfigInvalid, err, "解析配置失败")
	}

	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv 使用 CALENDAR_ 前缀的环境变量覆盖已加载的配置。
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return xerrors.Wrap(xerrors.CodeConfigInvalid, err, "解析环境变量失败")
	}
	return nil
}

// Validate 检查配置项组合是否可用。
func (c *Config) Validate() error {
	switch c.Transport.Driver {
	case DriverConsole, DriverMemory:
	case DriverRedis:
		if c.Transport.Redis.Address == "" {
			return xerrors.New(xerrors.CodeConfigInvalid, "redis 驱动需要配置 address")
		}
	case DriverRabbitMQ:
		if c.Transport.RabbitMQ.URL == "" {
			return xerrors.New(xerrors.CodeConfigInvalid, "rabbitmq 驱动需要配置 url")
		}
	default:
		return xerrors.New(xerrors.CodeConfigInvalid, fmt.Sprintf("未知的命令来源驱动: %s", c.Transport.Driver))
	}
	return nil
}

// applyDefaults 在用户未填写部分字段时设置合理的默认值。
func (c *Config) applyDefaults(baseDir string) {
	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if len(c.Logging.Outputs) == 0 {
		c.Logging.Outputs = []string{"stderr"}
	}
	if c.Logging.Audit.Enabled {
		if c.Logging.Audit.Path == "" {
			c.Logging.Audit.Path = filepath.Join("logs", "audit.log")
		}
		if baseDir != "" && !filepath.IsAbs(c.Logging.Audit.Path) {
			c.Logging.Audit.Path = filepath.Join(baseDir, c.Logging.Audit.Path)
		}
	}

	if c.Console.Prompt == "" {
		c.Console.Prompt = "> Your command: "
	}

	c.Transport.Driver = strings.ToLower(strings.TrimSpace(c.Transport.Driver))
	if c.Transport.Driver == "" {
		c.Transport.Driver = DriverConsole
	}
	if c.Transport.Workers <= 0 {
		c.Transport.Workers = 1
	}
	if c.Transport.Redis.Queue == "" {
		c.Transport.Redis.Queue = "calendar:commands"
	}
	if c.Transport.Redis.ReplyQueue == "" {
		c.Transport.Redis.ReplyQueue = "calendar:replies"
	}
	if c.Transport.Redis.BlockWaitSeconds <= 0 {
		c.Transport.Redis.BlockWaitSeconds = 5
	}
	if c.Transport.RabbitMQ.Queue == "" {
		c.Transport.RabbitMQ.Queue = "calendar.commands"
	}
	if c.Transport.RabbitMQ.ReplyQueue == "" {
		c.Transport.RabbitMQ.ReplyQueue = "calendar.replies"
	}
}
