package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cmstar/go-tuyavacuum/tuya"
)

// 环境变量的名称，作为各命令行参数的默认值。
const (
	EnvBaseUrl      = "TUYA_BASE_URL"
	EnvClientId     = "TUYA_CLIENT_ID"
	EnvClientSecret = "TUYA_CLIENT_SECRET"
	EnvDeviceId     = "TUYA_DEVICE_ID"
	EnvOutDir       = "TUYA_OUT_DIR"
	EnvTimeoutMs    = "TUYA_TIMEOUT_MS"
)

// Config 是 tuyamap 的运行参数。
type Config struct {
	BaseUrl      string
	ClientId     string
	ClientSecret string
	DeviceId     string
	OutDir       string
	Timeout      time.Duration
	Verbose      bool
}

// LoadConfig 从环境变量和命令行参数读取配置，命令行参数优先。
// getenv 通常为 [os.Getenv] 。
func LoadConfig(args []string, getenv func(string) string) (Config, error) {
	var cfg Config

	timeoutMs, err := intEnvOrDefault(getenv, EnvTimeoutMs, int(tuya.DefaultTimeout/time.Millisecond))
	if err != nil {
		return cfg, err
	}

	fs := flag.NewFlagSet("tuyamap", flag.ContinueOnError)
	fs.StringVar(&cfg.BaseUrl, "base-url", envOrDefault(getenv, EnvBaseUrl, tuya.BaseUrl_CentralEurope), "API base URL of the data center")
	fs.StringVar(&cfg.ClientId, "client-id", envOrDefault(getenv, EnvClientId, ""), "access ID of the cloud project")
	fs.StringVar(&cfg.ClientSecret, "client-secret", envOrDefault(getenv, EnvClientSecret, ""), "access secret of the cloud project")
	fs.StringVar(&cfg.DeviceId, "device-id", envOrDefault(getenv, EnvDeviceId, ""), "ID of the vacuum")
	fs.StringVar(&cfg.OutDir, "out", envOrDefault(getenv, EnvOutDir, "."), "directory to write layout.bin and path.bin to")
	fs.IntVar(&timeoutMs, "timeout", timeoutMs, "timeout of each request in milliseconds")
	fs.BoolVar(&cfg.Verbose, "v", false, "print debug logs, including raw API responses")

	err = fs.Parse(args)
	if err != nil {
		return cfg, err
	}

	cfg.Timeout = time.Duration(timeoutMs) * time.Millisecond
	return cfg, cfg.Validate()
}

// Validate 检查必填项。
func (c Config) Validate() error {
	var missing []string
	if c.BaseUrl == "" {
		missing = append(missing, "base-url")
	}
	if c.ClientId == "" {
		missing = append(missing, "client-id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client-secret")
	}
	if c.DeviceId == "" {
		missing = append(missing, "device-id")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required parameters: %s", strings.Join(missing, ", "))
	}

	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}

func envOrDefault(getenv func(string) string, key, defaultValue string) string {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return defaultValue
	}
	return v
}

func intEnvOrDefault(getenv func(string) string, key string, defaultValue int) (int, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
