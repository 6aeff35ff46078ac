package config

import (
	"errors"
	"strings"
	"time"

	"github.com/korthochain/domains/pkg/logger"
	"github.com/spf13/viper"
)

const envPrefix = "DOMAINS"

type CfgInfo struct {
	NetworkCfg *NetworkConfig `mapstructure:"network"`
	DeployCfg  *DeployConfig  `mapstructure:"deploy"`
	JournalCfg *JournalConfig `mapstructure:"journal"`
	LogConfig  *logger.Config `mapstructure:"logconfig"`
}

// NetworkConfig selects the chain the deployment runs against. An empty URL
// starts an in-process chain that lives for the duration of the run.
type NetworkConfig struct {
	Name       string  `mapstructure:"name"`
	URL        string  `mapstructure:"url"`
	ChainId    int64   `mapstructure:"chainid"`
	PrivateKey string  `mapstructure:"privatekey"`
	RateLimit  float64 `mapstructure:"ratelimit"`
	Burst      int     `mapstructure:"burst"`
}

type DeployConfig struct {
	Artifacts string        `mapstructure:"artifacts"`
	Contract  string        `mapstructure:"contract"`
	TLD       string        `mapstructure:"tld"`
	Domain    string        `mapstructure:"domain"`
	Record    string        `mapstructure:"record"`
	Price     string        `mapstructure:"price"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type JournalConfig struct {
	Path string `mapstructure:"path"`
}

// LoadConfig load configuration information. With an empty path the
// optional ./config/domainsConf.yaml is read, otherwise the given file must
// exist. Every key can be overridden from the environment, e.g.
// DOMAINS_NETWORK_URL.
func LoadConfig(path string) (*CfgInfo, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("domainsConf")
		v.AddConfigPath("./config/")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	var cfg CfgInfo
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("network.name", "hardhat")
	v.SetDefault("network.url", "")
	v.SetDefault("network.chainid", 0)
	v.SetDefault("network.privatekey", "")
	v.SetDefault("network.ratelimit", 0)
	v.SetDefault("network.burst", 1)

	v.SetDefault("deploy.artifacts", "./artifacts")
	v.SetDefault("deploy.contract", "Domains")
	v.SetDefault("deploy.tld", "sexy")
	v.SetDefault("deploy.domain", "steak")
	v.SetDefault("deploy.record", "Am I a steak")
	v.SetDefault("deploy.price", "0.1")
	v.SetDefault("deploy.timeout", 0)

	v.SetDefault("journal.path", "")

	lc := logger.DefaultConfig()
	v.SetDefault("logconfig.level", lc.Level)
	v.SetDefault("logconfig.filename", lc.FileName)
	v.SetDefault("logconfig.maxsize", lc.MaxSize)
	v.SetDefault("logconfig.maxage", lc.MaxAge)
	v.SetDefault("logconfig.maxbackups", lc.MaxBackups)
	v.SetDefault("logconfig.compress", lc.Compress)
	v.SetDefault("logconfig.console", lc.Console)
}
