package main

import (
	"os"
	"path/filepath"

	"github.com/golobby/clickhouse"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

type config struct {
	URL       string
	WithNames bool
	Verbose   bool
}

// loadConfig reads .env, then .chq.yaml from the working directory or the
// home directory, then CHQ_* variables. Flags bound in root.go win.
func loadConfig(v *viper.Viper) (*config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, err
		}
	}

	v.SetConfigName(".chq")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
		v.AddConfigPath(filepath.Join(home, ".config", "chq"))
	}
	v.SetEnvPrefix("CHQ")
	v.AutomaticEnv()
	v.SetDefault("url", "http://localhost:8123/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return &config{
		URL:       v.GetString("url"),
		WithNames: v.GetBool("with_names"),
		Verbose:   v.GetBool("verbose"),
	}, nil
}

func (c *config) client() (*clickhouse.Client, error) {
	conf := clickhouse.Config{URL: c.URL, QueryIDs: true}
	if c.WithNames {
		conf.Format = clickhouse.Formats.TabSeparatedWithNames
	}
	if c.Verbose {
		conf.LogLevel = clickhouse.LogLevelDev
	}
	return clickhouse.New(conf)
}
