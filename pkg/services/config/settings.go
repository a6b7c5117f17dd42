// Package config loads the sync settings from a YAML file, with environment
// overrides under the REGISTRY_SYNC_ prefix.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/registry-sync/pkg/models/domain"
	"github.com/spf13/viper"
)

type AuthSettings struct {
	// SecretARN points at an AWS Secrets Manager secret holding
	// client_id/client_secret. When empty, ClientID/ClientSecret are used.
	SecretARN    string `mapstructure:"secret_arn"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

type PolicySettings struct {
	CleanupEnabled       bool `mapstructure:"cleanup_enabled"`
	OfflineThresholdDays int  `mapstructure:"offline_threshold_days"`
	VerifyBeforeOnboard  bool `mapstructure:"verify_before_onboard"`
}

type DiscoverySettings struct {
	// Workers bounds the per-account registry discovery fan-out.
	Workers   int `mapstructure:"workers"`
	PageSize  int `mapstructure:"page_size"`
	BatchSize int `mapstructure:"batch_size"`
}

type HTTPSettings struct {
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	MaxRetries        int     `mapstructure:"max_retries"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type ServerSettings struct {
	Host                   string `mapstructure:"host"`
	Port                   string `mapstructure:"port"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds"`
}

type Settings struct {
	BaseURL           string            `mapstructure:"base_url"`
	RunTimeoutSeconds int               `mapstructure:"run_timeout_seconds"`
	Auth              AuthSettings      `mapstructure:"auth"`
	Policy            PolicySettings    `mapstructure:"policy"`
	Discovery         DiscoverySettings `mapstructure:"discovery"`
	HTTP              HTTPSettings      `mapstructure:"http"`
	Server            ServerSettings    `mapstructure:"server"`
}

// Load reads settings from path (optional) and the environment.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("REGISTRY_SYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if s.BaseURL == "" {
		return nil, fmt.Errorf("base_url must not be empty")
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "https://api.crowdstrike.com")
	v.SetDefault("run_timeout_seconds", 600)
	v.SetDefault("policy.cleanup_enabled", true)
	v.SetDefault("policy.offline_threshold_days", 7)
	v.SetDefault("policy.verify_before_onboard", false)
	v.SetDefault("discovery.workers", 4)
	v.SetDefault("discovery.page_size", 500)
	v.SetDefault("discovery.batch_size", 100)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.requests_per_second", 5)
	v.SetDefault("http.burst", 10)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout_seconds", 10)
}

// RunPolicy maps the policy settings onto the decision-engine policy.
func (s *Settings) RunPolicy() domain.Policy {
	return domain.Policy{
		CleanupEnabled:      s.Policy.CleanupEnabled,
		OfflineThreshold:    time.Duration(s.Policy.OfflineThresholdDays) * 24 * time.Hour,
		VerifyBeforeOnboard: s.Policy.VerifyBeforeOnboard,
	}
}

func (s *Settings) RunTimeout() time.Duration {
	return time.Duration(s.RunTimeoutSeconds) * time.Second
}

func (s *Settings) HTTPTimeout() time.Duration {
	return time.Duration(s.HTTP.TimeoutSeconds) * time.Second
}

func (s *Settings) ShutdownTimeout() time.Duration {
	return time.Duration(s.Server.ShutdownTimeoutSeconds) * time.Second
}
