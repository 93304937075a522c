package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Host      string `json:"host"`
	PprofHost string `json:"pprof_host" yaml:"pprof_host" mapstructure:"pprof_host"`

	DB    string `json:"db"`
	DBLog bool   `json:"dblog"`

	// TokenSecret verifies the identify token on the online event. Empty
	// disables verification (the node then trusts the announced userId).
	TokenSecret string `json:"token_secret" yaml:"token_secret" mapstructure:"token_secret"`

	// NotifySecret signs requests to the /notify endpoint.
	NotifySecret string `json:"notify_secret" yaml:"notify_secret" mapstructure:"notify_secret"`

	Redis  RedisConfig  `json:"redis" yaml:"redis" mapstructure:"redis"`
	Client ClientConfig `json:"client" yaml:"client" mapstructure:"client"`
}

type RedisConfig struct {
	Enable  bool   `json:"enable" yaml:"enable" mapstructure:"enable"`
	Host    string `json:"host" yaml:"host" mapstructure:"host"`
	Channel string `json:"channel" yaml:"channel" mapstructure:"channel"`
}

type ClientConfig struct {
	ReadMessageSizeLimit int64 `json:"read_message_size_limit" yaml:"read_message_size_limit" mapstructure:"read_message_size_limit"`
	Compression          bool  `json:"compression" yaml:"compression" mapstructure:"compression"`
	CompressionLevel     int   `json:"compression_level" yaml:"compression_level" mapstructure:"compression_level"`
	ReadBufferSize       int   `json:"read_buffer_size" yaml:"read_buffer_size" mapstructure:"read_buffer_size"`
	WriteBufferSize      int   `json:"write_buffer_size" yaml:"write_buffer_size" mapstructure:"write_buffer_size"`
	SendQueue            int   `json:"send_queue" yaml:"send_queue" mapstructure:"send_queue"`
}

// Load reads config.yaml from path and applies environment overrides
// (REDIS_HOST overrides redis.host, and so on).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("config")
	v.AddConfigPath(path)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = ":8080"
	}
	if c.Client.ReadMessageSizeLimit <= 0 {
		c.Client.ReadMessageSizeLimit = 64 * 1024
	}
	if c.Client.ReadBufferSize <= 0 {
		c.Client.ReadBufferSize = 1024
	}
	if c.Client.WriteBufferSize <= 0 {
		c.Client.WriteBufferSize = 1024
	}
	if c.Client.SendQueue <= 0 {
		c.Client.SendQueue = 16
	}
}
