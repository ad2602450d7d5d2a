package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseCreds(t *testing.T) {
	cfg := &Config{BasicAuthCreds: "user1:pass1, user2 : pass2"}
	creds, err := cfg.parseCreds()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"user1": "pass1", "user2": "pass2"}, creds)
}

func TestParseCredsErrors(t *testing.T) {
	_, err := (&Config{}).parseCreds()
	assert.Error(t, err, "empty creds are an error; development swallows it")

	_, err = (&Config{BasicAuthCreds: "user1"}).parseCreds()
	assert.Error(t, err)

	_, err = (&Config{BasicAuthCreds: "user1:pass1:extra"}).parseCreds()
	assert.Error(t, err)
}

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("BASIC_AUTH_CREDS", "")
	cfg, err := NewConfig(nil, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 8090, cfg.ServerPort)
	assert.Equal(t, 10, cfg.FootballData.RequestsPerMin)
	assert.Equal(t, 50, cfg.FeedSize)
	assert.Empty(t, cfg.GetCreds())
}

func TestNewConfigRequiresCredsOutsideDevelopment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("BASIC_AUTH_CREDS", "")
	_, err := NewConfig(nil, zap.NewNop())
	assert.Error(t, err)
}
