package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Netflix/go-env"
	"github.com/golang/glog"
	"github.com/joho/godotenv"
)

// envConfig mirrors the command line flags. Empty values are ignored.
type envConfig struct {
	Addr          string `env:"MINICHAT_ADDR"`
	PidFile       string `env:"MINICHAT_PID_FILE"`
	Store         string `env:"MINICHAT_STORE"`
	StoreDsn      string `env:"MINICHAT_STORE_DSN"`
	SweepInterval string `env:"MINICHAT_SWEEP_INTERVAL"`
	StaleAfter    string `env:"MINICHAT_STALE_AFTER"`
	KafkaBrokers  string `env:"MINICHAT_KAFKA_BROKERS"`
	KafkaTopic    string `env:"MINICHAT_KAFKA_TOPIC"`
	CORSOrigin    string `env:"MINICHAT_CORS_ORIGIN"`
	PprofDir      string `env:"MINICHAT_PPROF_DIR"`
}

func (c *envConfig) byFlag() map[string]string {
	return map[string]string{
		"addr":           c.Addr,
		"pid-file":       c.PidFile,
		"store":          c.Store,
		"store-dsn":      c.StoreDsn,
		"sweep-interval": c.SweepInterval,
		"stale-after":    c.StaleAfter,
		"kafka-brokers":  c.KafkaBrokers,
		"kafka-topic":    c.KafkaTopic,
		"cors-origin":    c.CORSOrigin,
		"pprof-dir":      c.PprofDir,
	}
}

// applyEnv loads `.env`, if any, then overrides the defaults of fs with the
// MINICHAT_* environment. Flags set on the command line are left alone.
func applyEnv(fs *flag.FlagSet) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		glog.Warningf("load .env error: %v", err)
	}

	var conf envConfig
	if _, err := env.UnmarshalFromEnviron(&conf); err != nil {
		return err
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})

	for name, value := range conf.byFlag() {
		if value == "" || explicit[name] {
			continue
		}
		if err := fs.Set(name, value); err != nil {
			return fmt.Errorf("--%s from env: %v", name, err)
		}
		glog.V(1).Infof("--%s is set from env", name)
	}
	return nil
}
