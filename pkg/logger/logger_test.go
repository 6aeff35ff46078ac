package logger

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLogger(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultConfig()
	cfg.FileName = filepath.Join(t.TempDir(), "deploy.log")
	cfg.Compress = false
	require.NoError(t, InitLogger(cfg))
	defer func() {
		Logger = zap.NewNop()
		helperLogger = Logger
		SugarLogger = Logger.Sugar()
	}()

	Debug("hidden")
	Info("contract deployed", zap.String("address", "0x01"))
	With(zap.String("run", "r1")).Warn("slow confirmation")
	SugarLogger.Infof("listed %d runs", 3)
	Error("journal write failed")
	Sync()

	data, err := ioutil.ReadFile(cfg.FileName)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(lines, 4)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal("INFO", entry["level"])
	assert.Equal("contract deployed", entry["msg"])
	assert.Equal("0x01", entry["address"])
	assert.Contains(entry, "time")
	// helpers report their caller, not themselves
	assert.Contains(entry["caller"], "logger/logger_test.go")

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal("WARN", entry["level"])
	assert.Equal("r1", entry["run"])
	assert.Contains(entry["caller"], "logger/logger_test.go")

	require.NoError(t, json.Unmarshal([]byte(lines[2]), &entry))
	assert.Equal("listed 3 runs", entry["msg"])
	assert.Contains(entry["caller"], "logger/logger_test.go")

	require.NoError(t, json.Unmarshal([]byte(lines[3]), &entry))
	assert.Equal("ERROR", entry["level"])
	assert.Contains(entry["caller"], "logger/logger_test.go")
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "LOUD"
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNewWithoutSinks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FileName = ""
	l, err := New(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, l)
}
