package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.SearchProvider)
	assert.Equal(t, "gemini", cfg.LLM.CoachProvider)
	assert.Equal(t, 90, cfg.LLM.TimeoutSecs)
	assert.Equal(t, 2, cfg.LLM.RetryAttempts)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, "sonar-pro", cfg.Perplexity.Model)
	assert.Equal(t, 4, cfg.Search.MaxAttempts)
	assert.InDelta(t, 1.5, cfg.Search.OverRequest, 0.001)
	assert.Equal(t, 1, cfg.Search.FanOut)
	assert.Equal(t, 6, cfg.Search.DefaultCount)
	assert.Equal(t, "55", cfg.Phone.CountryCode)
	assert.Equal(t, []int{10, 11}, cfg.Phone.LocalLengths)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "prospect.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "https://login.salesforce.com", cfg.Salesforce.LoginURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Gemini.Key)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
llm:
  search_provider: perplexity
search:
  max_attempts: 6
  fan_out: 2
phone:
  country_code: "1"
  local_lengths: [10]
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "perplexity", cfg.LLM.SearchProvider)
	assert.Equal(t, 6, cfg.Search.MaxAttempts)
	assert.Equal(t, 2, cfg.Search.FanOut)
	assert.Equal(t, "1", cfg.Phone.CountryCode)
	assert.Equal(t, []int{10}, cfg.Phone.LocalLengths)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.InDelta(t, 1.5, cfg.Search.OverRequest, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("PROSPECT_STORE_DRIVER", "postgres")
	t.Setenv("PROSPECT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadCredentialsFromEnv(t *testing.T) {
	chdirTemp(t)

	t.Setenv("PROSPECT_GEMINI_KEY", "gm-key")
	t.Setenv("PROSPECT_NOTION_LEAD_DB", "lead-db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gm-key", cfg.Gemini.Key)
	assert.Equal(t, "lead-db", cfg.Notion.LeadDB)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PROSPECT_ANTHROPIC_KEY=sk-ant-dotenv\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("PROSPECT_ANTHROPIC_KEY") }) //nolint:errcheck

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-dotenv", cfg.Anthropic.Key)
}

func TestProviderKey(t *testing.T) {
	cfg := &Config{}
	cfg.Gemini.Key = "g"
	cfg.Anthropic.Key = "a"
	cfg.Perplexity.Key = "p"

	assert.Equal(t, "g", cfg.ProviderKey("gemini"))
	assert.Equal(t, "a", cfg.ProviderKey("anthropic"))
	assert.Equal(t, "p", cfg.ProviderKey("perplexity"))
	assert.Empty(t, cfg.ProviderKey("openai"))
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.LLM.SearchProvider = "gemini"
	cfg.LLM.CoachProvider = "gemini"
	cfg.Gemini.Key = "gm-key"
	cfg.Search.MaxAttempts = 4
	cfg.Search.OverRequest = 1.5
	cfg.Search.FanOut = 1
	cfg.Store.Driver = "sqlite"
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateSearch_AllPresent(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("search"))
}

func TestValidateSearch_MissingKey(t *testing.T) {
	cfg := validDefaults()
	cfg.Gemini.Key = ""

	err := cfg.Validate("search")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini.key is required")
}

func TestValidateSearch_UnknownProvider(t *testing.T) {
	cfg := validDefaults()
	cfg.LLM.SearchProvider = "openai"

	err := cfg.Validate("search")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.search_provider must be one of")
}

func TestValidateSearch_Bounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Search.MaxAttempts = 0
	cfg.Search.OverRequest = 0.5
	cfg.Search.FanOut = 9

	err := cfg.Validate("search")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search.max_attempts must be between 1 and 10")
	assert.Contains(t, err.Error(), "search.over_request must be between 1 and 5")
	assert.Contains(t, err.Error(), "search.fan_out must be between 1 and 5")
}

func TestValidateCoach_UsesCoachProvider(t *testing.T) {
	cfg := validDefaults()
	cfg.LLM.CoachProvider = "anthropic"

	err := cfg.Validate("coach")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")

	cfg.Anthropic.Key = "sk-ant"
	assert.NoError(t, cfg.Validate("coach"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateStoreDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("coach")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
