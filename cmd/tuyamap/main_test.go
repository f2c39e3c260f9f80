package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cmstar/go-logx"
	"github.com/cmstar/go-tuyavacuum/tuya"
	"github.com/cmstar/go-tuyavacuum/tuyatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFunc(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := LoadConfig([]string{"-client-id", "c", "-client-secret", "s", "-device-id", "d"}, envFunc(nil))
		require.NoError(t, err)
		assert.Equal(t, Config{
			BaseUrl:      tuya.BaseUrl_CentralEurope,
			ClientId:     "c",
			ClientSecret: "s",
			DeviceId:     "d",
			OutDir:       ".",
			Timeout:      tuya.DefaultTimeout,
		}, cfg)
	})

	t.Run("Env", func(t *testing.T) {
		cfg, err := LoadConfig(nil, envFunc(map[string]string{
			EnvBaseUrl:      "http://temp.org",
			EnvClientId:     " c ",
			EnvClientSecret: "s",
			EnvDeviceId:     "d",
			EnvOutDir:       "/tmp/x",
			EnvTimeoutMs:    "100",
		}))
		require.NoError(t, err)
		assert.Equal(t, "http://temp.org", cfg.BaseUrl)
		assert.Equal(t, "c", cfg.ClientId)
		assert.Equal(t, "/tmp/x", cfg.OutDir)
		assert.Equal(t, 100*time.Millisecond, cfg.Timeout)
	})

	t.Run("FlagsOverrideEnv", func(t *testing.T) {
		cfg, err := LoadConfig([]string{"-device-id", "flag", "-timeout", "10", "-v"}, envFunc(map[string]string{
			EnvClientId:     "c",
			EnvClientSecret: "s",
			EnvDeviceId:     "env",
		}))
		require.NoError(t, err)
		assert.Equal(t, "flag", cfg.DeviceId)
		assert.Equal(t, 10*time.Millisecond, cfg.Timeout)
		assert.True(t, cfg.Verbose)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadConfig([]string{"-client-id", "c"}, envFunc(nil))
		require.Error(t, err)
		assert.Equal(t, "missing required parameters: client-secret, device-id", err.Error())
	})

	t.Run("BadTimeoutEnv", func(t *testing.T) {
		_, err := LoadConfig(nil, envFunc(map[string]string{EnvTimeoutMs: "abc"}))
		require.Error(t, err)
		assert.Regexp(t, EnvTimeoutMs, err.Error())
	})

	t.Run("NonPositiveTimeout", func(t *testing.T) {
		_, err := LoadConfig([]string{"-client-id", "c", "-client-secret", "s", "-device-id", "d", "-timeout", "0"}, envFunc(nil))
		require.Error(t, err)
		assert.Regexp(t, "timeout must be positive", err.Error())
	})
}

func TestRun(t *testing.T) {
	s := tuyatest.NewServer(tuyatest.ServerOp{ClientId: "c", ClientSecret: "s"})
	defer s.Close()

	s.SetMapResources("d",
		tuya.MapResource{MapType: tuya.MapType_Layout, MapUrl: s.SetFile("l", []byte("L"))},
	)

	args := func(out, device string) []string {
		return []string{
			"-base-url", s.URL,
			"-client-id", "c",
			"-client-secret", "s",
			"-device-id", device,
			"-out", out,
		}
	}

	t.Run("OK", func(t *testing.T) {
		dir := t.TempDir()
		logger := tuyatest.NewLogRecorder()

		code := run(args(dir, "d"), envFunc(nil), io.Discard, logger)
		require.Equal(t, 0, code)

		data, err := os.ReadFile(filepath.Join(dir, LayoutFileName))
		require.NoError(t, err)
		assert.Equal(t, []byte("L"), data)

		_, err = os.Stat(filepath.Join(dir, PathFileName))
		assert.True(t, os.IsNotExist(err))

		// 未给定 -v ，不输出 DEBUG 日志。
		assert.Empty(t, logger.Filter(logx.LevelDebug))
		assert.Len(t, logger.Filter(logx.LevelInfo), 1)
	})

	t.Run("Verbose", func(t *testing.T) {
		logger := tuyatest.NewLogRecorder()
		code := run(append(args(t.TempDir(), "d"), "-v"), envFunc(nil), io.Discard, logger)
		require.Equal(t, 0, code)
		assert.NotEmpty(t, logger.Filter(logx.LevelDebug))
	})

	t.Run("CloudError", func(t *testing.T) {
		logger := tuyatest.NewLogRecorder()
		code := run(args(t.TempDir(), "unknown"), envFunc(nil), io.Discard, logger)
		require.Equal(t, 1, code)

		errs := logger.Filter(logx.LevelError)
		require.Len(t, errs, 1)
		kind, _ := errs[0].Get("Kind")
		assert.Equal(t, "InvalidDeviceId", kind)
	})

	t.Run("BadArgs", func(t *testing.T) {
		stderr := new(strings.Builder)
		code := run([]string{"-client-id", "c"}, envFunc(nil), stderr, tuyatest.NewLogRecorder())
		assert.Equal(t, 2, code)
		assert.Regexp(t, "missing required parameters", stderr.String())
	})
}
