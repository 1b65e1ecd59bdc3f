package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonathan/knotic/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, llm.DefaultTimeout, cfg.LLM.Timeout)
	assert.Equal(t, "fitz", cfg.PDF.Engine)
	assert.Equal(t, DefaultJWTExpirationHours, cfg.Auth.JWTExpirationHours)
	assert.Equal(t, DefaultBcryptCost, cfg.Auth.BcryptCost)
	assert.Empty(t, cfg.Storage.Bucket)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeConfig(t, "knotic.yaml", `
server:
  port: 9090
llm:
  provider: openai
  timeout: 45s
  advanced-model: gpt-4.1
pdf:
  engine: pure
storage:
  bucket: knotic-uploads
log:
  json: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "pure", cfg.PDF.Engine)
	assert.Equal(t, "knotic-uploads", cfg.Storage.Bucket)
	assert.Equal(t, "resumes", cfg.Storage.Prefix)
	assert.True(t, cfg.Log.JSON)

	llmCfg, err := cfg.LLMClientConfig()
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderOpenAI, llmCfg.Provider)
	assert.Equal(t, "gpt-4.1", llmCfg.GetModel(llm.TierAdvanced))
	assert.Equal(t, "gpt-4o-mini", llmCfg.GetModel(llm.TierStandard))
	assert.Equal(t, 45*time.Second, llmCfg.Timeout)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "knotic.json", `{"server": {"port": 7000}, "llm": {"api-key": "from-file"}}`)
	t.Setenv("KNOTIC_SERVER_PORT", "7001")
	t.Setenv("KNOTIC_LLM_API_KEY", "from-env")
	t.Setenv("KNOTIC_DATABASE_URL", "postgres://localhost/knotic")
	t.Setenv("KNOTIC_AUTH_JWT_SECRET", "env-secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7001, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
	assert.Equal(t, "postgres://localhost/knotic", cfg.Database.URL)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("/nonexistent/knotic.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")

	path := writeConfig(t, "broken.json", `{ invalid json }`)
	_, err = Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8080, AnalyzeParallel: 2},
			LLM:    LLMConfig{Provider: "gemini", Timeout: time.Minute},
			PDF:    PDFConfig{Engine: "fitz"},
			Redis:  RedisConfig{RateLimit: 10, Window: time.Minute},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"no parallelism", func(c *Config) { c.Server.AnalyzeParallel = 0 }, "analyze-parallel"},
		{"zero timeout", func(c *Config) { c.LLM.Timeout = 0 }, "llm.timeout"},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "claude" }, "unknown provider"},
		{"unknown engine", func(c *Config) { c.PDF.Engine = "ocr" }, "unknown pdf engine"},
		{"negative rate limit", func(c *Config) { c.Redis.RateLimit = -1 }, "rate-limit"},
		{"redis without window", func(c *Config) { c.Redis.Addr = "localhost:6379"; c.Redis.Window = 0 }, "rate-window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
