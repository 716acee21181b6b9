package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration tree.
type Config struct {
	Server          ServerConfig          `mapstructure:"server"`
	Database        DatabaseConfig        `mapstructure:"database"`
	Redis           RedisConfig           `mapstructure:"redis"`
	Kafka           KafkaConfig           `mapstructure:"kafka"`
	JWT             JWTConfig             `mapstructure:"jwt"`
	Log             LogConfig             `mapstructure:"log"`
	Minio           MinioConfig           `mapstructure:"minio"`
	Convert         ConvertConfig         `mapstructure:"convert"`
	Worker          WorkerConfig          `mapstructure:"worker"`
	ServiceRegistry ServiceRegistryConfig `mapstructure:"service_registry"`
	Profiling       ProfilingConfig       `mapstructure:"profiling"`
}

// ServerConfig HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig MySQL settings for job persistence.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	Charset         string        `mapstructure:"charset"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig live progress cache settings.
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	EnableTLS    bool          `mapstructure:"enable_tls"`
}

// KafkaConfig intake/outcome topic settings.
type KafkaConfig struct {
	BootstrapServers     []string          `mapstructure:"bootstrap_servers"`
	ClientID             string            `mapstructure:"client_id"`
	GroupID              string            `mapstructure:"group_id"`
	Enabled              bool              `mapstructure:"enabled"`
	Topics               KafkaTopicsConfig `mapstructure:"topics"`
	CommitOnDecodeError  bool              `mapstructure:"commit_on_decode_error"`
	CommitOnProcessError bool              `mapstructure:"commit_on_process_error"`
}

type KafkaTopicsConfig struct {
	ConversionRequests string `mapstructure:"conversion_requests"`
	ConversionOutcomes string `mapstructure:"conversion_outcomes"`
}

// JWTConfig bearer-token validation settings for the HTTP API.
type JWTConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Secret     string        `mapstructure:"secret"`
	Issuer     string        `mapstructure:"issuer"`
	ExpireTime time.Duration `mapstructure:"expire_time"`
}

// LogConfig logrus settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MinioConfig object storage settings for source and artifact files.
type MinioConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKey       string `mapstructure:"access_key"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SecretKey       string `mapstructure:"secret_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// ConvertConfig conversion engine settings.
type ConvertConfig struct {
	FFmpeg FFmpegConfig `mapstructure:"ffmpeg"`
}

// FFmpegConfig encoder binary settings.
type FFmpegConfig struct {
	BinaryPath      string        `mapstructure:"binary_path"`
	ProbeBinaryPath string        `mapstructure:"probe_binary_path"`
	TempDir         string        `mapstructure:"temp_dir"`
	Timeout         time.Duration `mapstructure:"timeout"`
	VideoPreset     string        `mapstructure:"video_preset"`
	Threads         int           `mapstructure:"threads"`
	// CancelGracePeriod bounds how long a cancel request waits for the engine
	// process to exit before the job is classified cancelled anyway.
	CancelGracePeriod time.Duration `mapstructure:"cancel_grace_period"`
}

// WorkerConfig conversion worker pool settings.
type WorkerConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	WorkerID            string        `mapstructure:"worker_id"`
	MaxConcurrentJobs   int           `mapstructure:"max_concurrent_jobs"`
	QueueCapacity       int           `mapstructure:"queue_capacity"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
}

// ServiceRegistryConfig etcd registration settings.
type ServiceRegistryConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Endpoints       []string      `mapstructure:"endpoints"`
	ServiceName     string        `mapstructure:"service_name"`
	ServiceID       string        `mapstructure:"service_id"`
	RegisterHost    string        `mapstructure:"register_host"`
	TTL             time.Duration `mapstructure:"ttl"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// ProfilingConfig continuous profiling settings.
type ProfilingConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ServerAddress string `mapstructure:"server_address"`
}

// Load reads and parses the configuration file at the given path.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("service_registry.enabled", false)
	viper.SetDefault("kafka.enabled", true)
	viper.SetDefault("kafka.client_id", "convert-service")
	viper.SetDefault("kafka.group_id", "convert-service-group")
	viper.SetDefault("kafka.bootstrap_servers", []string{"localhost:29092"})
	viper.SetDefault("kafka.topics.conversion_requests", "convert.requests")
	viper.SetDefault("kafka.topics.conversion_outcomes", "convert.outcomes")
	viper.SetDefault("kafka.commit_on_decode_error", true)
	viper.SetDefault("kafka.commit_on_process_error", false)
	viper.SetDefault("worker.enabled", true)

	viper.SetEnvPrefix("CONVERT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.normalize()

	return &config, nil
}

// normalize fills in defaults for fields the config file left empty.
func (c *Config) normalize() {
	if c.Minio.AccessKeyID == "" {
		c.Minio.AccessKeyID = c.Minio.AccessKey
	}
	if c.Minio.SecretAccessKey == "" {
		c.Minio.SecretAccessKey = c.Minio.SecretKey
	}

	if c.Worker.MaxConcurrentJobs <= 0 {
		c.Worker.MaxConcurrentJobs = 2
	}
	if c.Worker.QueueCapacity <= 0 {
		c.Worker.QueueCapacity = c.Worker.MaxConcurrentJobs * 10
	}
	if c.Worker.ShutdownGracePeriod == 0 {
		c.Worker.ShutdownGracePeriod = 10 * time.Second
	}

	if c.Convert.FFmpeg.TempDir == "" {
		c.Convert.FFmpeg.TempDir = "/tmp/convert"
	}
	if c.Convert.FFmpeg.BinaryPath == "" {
		c.Convert.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.Convert.FFmpeg.ProbeBinaryPath == "" {
		c.Convert.FFmpeg.ProbeBinaryPath = "ffprobe"
	}
	if c.Convert.FFmpeg.VideoPreset == "" {
		c.Convert.FFmpeg.VideoPreset = "medium"
	}
	if c.Convert.FFmpeg.Threads < 0 {
		c.Convert.FFmpeg.Threads = 0
	}
	if c.Convert.FFmpeg.Timeout == 0 {
		c.Convert.FFmpeg.Timeout = time.Hour
	}
	if c.Convert.FFmpeg.CancelGracePeriod <= 0 {
		c.Convert.FFmpeg.CancelGracePeriod = 5 * time.Second
	}

	if c.ServiceRegistry.ServiceName == "" {
		c.ServiceRegistry.ServiceName = "convert-service"
	}
	if c.ServiceRegistry.TTL == 0 {
		c.ServiceRegistry.TTL = 30 * time.Second
	}
	if c.ServiceRegistry.RefreshInterval == 0 {
		c.ServiceRegistry.RefreshInterval = 10 * time.Second
	}

	if len(c.Kafka.BootstrapServers) == 0 {
		c.Kafka.BootstrapServers = []string{"localhost:29092"}
	}
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "convert-service"
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8084
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// GetDSN builds the MySQL connection string.
func (c *DatabaseConfig) GetDSN() string {
	charset := c.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database, charset)
}

// GetRedisAddr builds the Redis host:port address.
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
