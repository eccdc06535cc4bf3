// Package config loads the node-level configuration for the soulcore CLI
// daemon: data directory, default graduation threshold, protocol wallet, and
// logging settings. It mirrors config/config.go from the teacher: a TOML
// file that self-initializes with sane defaults on first run.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config captures the node-level settings for a soulcore deployment.
type Config struct {
	DataDir                string `toml:"DataDir"`
	DefaultGraduationCoins uint64 `toml:"DefaultGraduationCoins"`
	ProtocolWallet         string `toml:"ProtocolWallet"`
	OwnerAddress           string `toml:"OwnerAddress"`
	FactoryAddress         string `toml:"FactoryAddress"`
	RouterAddress          string `toml:"RouterAddress"`
	Env                    string `toml:"Env"`
	LogFile                string `toml:"LogFile"`
}

// Load reads the configuration from path, writing out a default file the
// first time it is invoked against a path that does not yet exist.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		DataDir:                "./soulcore-data",
		DefaultGraduationCoins: 100,
		ProtocolWallet:         "0x0000000000000000000000000000000000d001",
		OwnerAddress:           "0x0000000000000000000000000000000000d002",
		FactoryAddress:         "0x0000000000000000000000000000000000d003",
		RouterAddress:          "0x0000000000000000000000000000000000d004",
		Env:                    "dev",
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
