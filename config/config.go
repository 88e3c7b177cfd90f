package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用程序配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Data       DataConfig       `mapstructure:"data" yaml:"data"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Cache      CacheConfig      `mapstructure:"cache" yaml:"cache"`
	Storage    StorageConfig    `mapstructure:"storage" yaml:"storage"`
	Queue      QueueConfig      `mapstructure:"queue" yaml:"queue"`
	Evaluation EvaluationConfig `mapstructure:"evaluation" yaml:"evaluation"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`                                         // 服务器主机
	Port            int           `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`              // 服务器端口
	Mode            string        `mapstructure:"mode" yaml:"mode" validate:"oneof=debug release test"`     // gin运行模式
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"gt=0"`         // 读取超时
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"gt=0"`       // 写入超时
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"` // 优雅关闭等待时间
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level" validate:"oneof=trace debug info warn warning error"` // 日志级别
	File       string `mapstructure:"file" yaml:"file"`                                                        // 日志文件，为空时只输出到标准输出
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb" validate:"min=1"`                         // 单个文件最大体积
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" validate:"min=0"`                         // 保留的旧文件数
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days" validate:"min=0"`                       // 旧文件保留天数
	Compress   bool   `mapstructure:"compress" yaml:"compress"`                                                // 是否压缩旧文件
}

// DataConfig 预分块案件数据配置
type DataConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir" validate:"required"` // 数据目录，包含metadata和各策略分块目录
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type string `mapstructure:"type" yaml:"type" validate:"oneof=sqlite"` // 数据库类型
	DSN  string `mapstructure:"dsn" yaml:"dsn" validate:"required"`       // 数据源名称
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enable     bool   `mapstructure:"enable" yaml:"enable"`                                     // 是否启用缓存
	Type       string `mapstructure:"type" yaml:"type" validate:"oneof=memory redis"`           // 缓存类型
	Address    string `mapstructure:"address" yaml:"address" validate:"required_if=Type redis"` // Redis地址
	Password   string `mapstructure:"password" yaml:"password"`                                 // Redis密码
	DB         int    `mapstructure:"db" yaml:"db" validate:"min=0"`                            // Redis数据库
	KeyPrefix  string `mapstructure:"key_prefix" yaml:"key_prefix"`                             // Redis键前缀
	TTL        int    `mapstructure:"ttl" yaml:"ttl" validate:"min=0"`                          // 缓存TTL（秒）
	MaxEntries int    `mapstructure:"max_entries" yaml:"max_entries" validate:"min=0"`          // 内存缓存最大条目数，0不限制
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type      string `mapstructure:"type" yaml:"type" validate:"oneof=local minio"`              // 存储类型
	Path      string `mapstructure:"path" yaml:"path"`                                           // 本地存储路径
	Bucket    string `mapstructure:"bucket" yaml:"bucket" validate:"required_if=Type minio"`     // MinIO桶名称
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint" validate:"required_if=Type minio"` // MinIO端点
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`                               // MinIO访问密钥
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`                               // MinIO秘密密钥
	UseSSL    bool   `mapstructure:"use_ssl" yaml:"use_ssl"`                                     // 是否使用SSL
}

// QueueConfig 任务队列配置
type QueueConfig struct {
	Enable        bool   `mapstructure:"enable" yaml:"enable"`                                            // 是否启用异步评估
	Type          string `mapstructure:"type" yaml:"type" validate:"oneof=redis"`                         // 队列类型
	RedisAddr     string `mapstructure:"redis_addr" yaml:"redis_addr" validate:"required_if=Enable true"` // Redis地址
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password"`                            // Redis密码
	RedisDB       int    `mapstructure:"redis_db" yaml:"redis_db" validate:"min=0"`                       // Redis数据库编号
	Concurrency   int    `mapstructure:"concurrency" yaml:"concurrency" validate:"min=1"`                 // 任务处理并发数
	RetryLimit    int    `mapstructure:"retry_limit" yaml:"retry_limit" validate:"min=0"`                 // 任务最大重试次数
	RetryDelay    int    `mapstructure:"retry_delay" yaml:"retry_delay" validate:"min=0"`                 // 重试延迟(秒)
	TaskExpiry    int    `mapstructure:"task_expiry" yaml:"task_expiry" validate:"min=1"`                 // 任务记录保留时间(小时)
}

// EvaluationConfig 摘要与评估配置
type EvaluationConfig struct {
	RougeMode        string `mapstructure:"rouge_mode" yaml:"rouge_mode" validate:"oneof=auto full approx"`     // ROUGE计算方式
	SummarySentences int    `mapstructure:"summary_sentences" yaml:"summary_sentences" validate:"min=1,max=50"` // 策略对比的摘要句子数
	MaxFeatures      int    `mapstructure:"max_features" yaml:"max_features" validate:"min=1"`                  // TF-IDF词表上限
	Workers          int    `mapstructure:"workers" yaml:"workers" validate:"min=1"`                            // 聚合评估并行案件数
}

// LoadEnvFile 加载.env文件，文件不存在时忽略
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// Load 从文件和环境变量加载配置
// 文件路径为空或文件不存在时使用默认值，环境变量以下划线代替层级分隔符
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to access config file: %w", err)
		}
	}

	expandEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigFileUsed 返回实际使用的配置文件，没有时为空
func ConfigFileUsed(configPath string) string {
	if configPath == "" {
		return ""
	}
	if _, err := os.Stat(configPath); err != nil {
		return ""
	}
	return configPath
}

// expandEnv 替换配置值中的${VAR}引用
func expandEnv(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		s, ok := v.Get(key).(string)
		if !ok || !strings.Contains(s, "${") {
			continue
		}
		v.Set(key, os.ExpandEnv(s))
	}
}

var validate = validator.New()

// Validate 校验配置取值
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// CacheTTL 缓存TTL
func (c CacheConfig) CacheTTL() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "2m")
	v.SetDefault("server.shutdown_timeout", "10s")

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	// 数据目录默认配置
	v.SetDefault("data.dir", "./data")

	// 数据库默认配置
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "data/legal-summary.db")

	// 缓存默认配置
	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.key_prefix", "legal-summary:cache")
	v.SetDefault("cache.ttl", 3600) // 1小时
	v.SetDefault("cache.max_entries", 10000)

	// 存储默认配置
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.path", "./uploads")
	v.SetDefault("storage.bucket", "legal-summary")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.use_ssl", false)

	// 队列默认配置
	v.SetDefault("queue.enable", false)
	v.SetDefault("queue.type", "redis")
	v.SetDefault("queue.redis_addr", "localhost:6379")
	v.SetDefault("queue.redis_password", "")
	v.SetDefault("queue.redis_db", 0)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.retry_limit", 1)
	v.SetDefault("queue.retry_delay", 30)
	v.SetDefault("queue.task_expiry", 168) // 7天

	// 评估默认配置
	v.SetDefault("evaluation.rouge_mode", "auto")
	v.SetDefault("evaluation.summary_sentences", 5)
	v.SetDefault("evaluation.max_features", 1000)
	v.SetDefault("evaluation.workers", 4)
}
