package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConf = `
network:
  name: sepolia
  url: http://127.0.0.1:8545
  chainid: 11155111
  ratelimit: 5
  burst: 2
deploy:
  artifacts: ./build/artifacts
  domain: banana
  price: "0.25"
  timeout: 2m
journal:
  path: ./data/journal
logconfig:
  level: DEBUG
  console: true
`

func writeConf(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "domainsConf.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	assert := assert.New(t)

	cfg, err := LoadConfig(writeConf(t, testConf))
	require.NoError(t, err)

	assert.Equal("sepolia", cfg.NetworkCfg.Name)
	assert.Equal("http://127.0.0.1:8545", cfg.NetworkCfg.URL)
	assert.Equal(int64(11155111), cfg.NetworkCfg.ChainId)
	assert.Equal(5.0, cfg.NetworkCfg.RateLimit)
	assert.Equal(2, cfg.NetworkCfg.Burst)

	assert.Equal("./build/artifacts", cfg.DeployCfg.Artifacts)
	assert.Equal("banana", cfg.DeployCfg.Domain)
	assert.Equal("0.25", cfg.DeployCfg.Price)
	assert.Equal(2*time.Minute, cfg.DeployCfg.Timeout)
	// untouched keys keep their defaults
	assert.Equal("Domains", cfg.DeployCfg.Contract)
	assert.Equal("sexy", cfg.DeployCfg.TLD)
	assert.Equal("Am I a steak", cfg.DeployCfg.Record)

	assert.Equal("./data/journal", cfg.JournalCfg.Path)
	assert.Equal("DEBUG", cfg.LogConfig.Level)
	assert.True(cfg.LogConfig.Console)
	assert.Equal("./logs/deploy.log", cfg.LogConfig.FileName)
}

func TestLoadConfigDefaults(t *testing.T) {
	assert := assert.New(t)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal("hardhat", cfg.NetworkCfg.Name)
	assert.Empty(cfg.NetworkCfg.URL)
	assert.Equal("Domains", cfg.DeployCfg.Contract)
	assert.Equal("steak", cfg.DeployCfg.Domain)
	assert.Equal("0.1", cfg.DeployCfg.Price)
	assert.Equal(time.Duration(0), cfg.DeployCfg.Timeout)
	assert.Empty(cfg.JournalCfg.Path)
	assert.Equal("INFO", cfg.LogConfig.Level)
}

func TestLoadConfigEnv(t *testing.T) {
	assert := assert.New(t)

	os.Setenv("DOMAINS_NETWORK_URL", "ws://node:8546")
	os.Setenv("DOMAINS_DEPLOY_DOMAIN", "ribeye")
	defer os.Unsetenv("DOMAINS_NETWORK_URL")
	defer os.Unsetenv("DOMAINS_DEPLOY_DOMAIN")

	cfg, err := LoadConfig(writeConf(t, testConf))
	require.NoError(t, err)

	assert.Equal("ws://node:8546", cfg.NetworkCfg.URL)
	assert.Equal("ribeye", cfg.DeployCfg.Domain)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestShippedConfig(t *testing.T) {
	assert := assert.New(t)

	cfg, err := LoadConfig(filepath.Join("..", "..", "config", "domainsConf.yaml"))
	require.NoError(t, err)

	assert.Empty(cfg.NetworkCfg.URL)
	assert.Equal("./artifacts", cfg.DeployCfg.Artifacts)
	assert.Equal("Domains", cfg.DeployCfg.Contract)
	assert.Equal("sexy", cfg.DeployCfg.TLD)
	assert.Equal("steak", cfg.DeployCfg.Domain)
	assert.Equal("Am I a steak", cfg.DeployCfg.Record)
	assert.Equal("0.1", cfg.DeployCfg.Price)
	assert.Empty(cfg.JournalCfg.Path)
}
