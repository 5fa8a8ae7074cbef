package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/shadowsync/internal/paths"
	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "SHADOWSYNC"

	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeySpreadsheetID = "spreadsheet_id"
	cfgKeyTargetID      = "target_spreadsheet_id"
	cfgKeySyncStrategy  = "sync_strategy"
	cfgKeyActor         = "actor"
	cfgKeyLogLevel      = "log_level"
	cfgKeyServerAddr    = "server.addr"
	cfgKeyServerToken   = "server.token"
	cfgKeySweep         = "mirror.sweep_stale_copies"

	defaultSpreadsheetID = "local"
	defaultLogLevel      = "info"
	defaultServerAddr    = ":8080"
)

// envKeys may be overridden by SHADOWSYNC_<KEY> variables. data_dir is left
// out: SHADOWSYNC_DATA_DIR ranks below config.yaml and is handled by paths.
var envKeys = []string{
	cfgKeyBackend, cfgKeySpreadsheetID, cfgKeyTargetID, cfgKeySyncStrategy,
	cfgKeyActor, cfgKeyLogLevel, cfgKeyServerAddr, cfgKeyServerToken, cfgKeySweep,
}

// configFile is the structure written to config.yaml.
type configFile struct {
	Backend       string        `yaml:"backend"`
	DataDir       string        `yaml:"data_dir,omitempty"`
	SpreadsheetID string        `yaml:"spreadsheet_id"`
	TargetID      string        `yaml:"target_spreadsheet_id"`
	SyncStrategy  string        `yaml:"sync_strategy"`
	Actor         string        `yaml:"actor,omitempty"`
	LogLevel      string        `yaml:"log_level"`
	Server        serverSection `yaml:"server"`
	Mirror        mirrorSection `yaml:"mirror"`
}

type serverSection struct {
	Addr  string `yaml:"addr"`
	Token string `yaml:"token,omitempty"`
}

type mirrorSection struct {
	SweepStaleCopies bool `yaml:"sweep_stale_copies"`
}

// settings are the effective configuration values.
type settings struct {
	Backend       string
	DataDir       string
	SpreadsheetID string
	TargetID      string
	SyncStrategy  string
	Actor         string
	LogLevel      string
	ServerAddr    string
	ServerToken   string
	Sweep         bool
}

// defaultConfigFile returns the config written by init.
func defaultConfigFile(spreadsheetID, dataDir string) configFile {
	return configFile{
		Backend:       types.BackendSQLite,
		DataDir:       dataDir,
		SpreadsheetID: spreadsheetID,
		TargetID:      spreadsheetID,
		SyncStrategy:  types.SyncImmediate,
		LogLevel:      defaultLogLevel,
		Server:        serverSection{Addr: defaultServerAddr},
	}
}

// loadConfig reads config.yaml from configDir using Viper. A missing
// config.yaml is not an error; defaults apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeySpreadsheetID, defaultSpreadsheetID)
	v.SetDefault(cfgKeySyncStrategy, types.SyncImmediate)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyServerAddr, defaultServerAddr)
	v.SetDefault(cfgKeySweep, false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// settingsFrom extracts effective settings. The target defaults to the
// local spreadsheet id.
func settingsFrom(v *viper.Viper) settings {
	s := settings{
		Backend:       v.GetString(cfgKeyBackend),
		DataDir:       v.GetString(cfgKeyDataDir),
		SpreadsheetID: v.GetString(cfgKeySpreadsheetID),
		TargetID:      v.GetString(cfgKeyTargetID),
		SyncStrategy:  v.GetString(cfgKeySyncStrategy),
		Actor:         v.GetString(cfgKeyActor),
		LogLevel:      v.GetString(cfgKeyLogLevel),
		ServerAddr:    v.GetString(cfgKeyServerAddr),
		ServerToken:   v.GetString(cfgKeyServerToken),
		Sweep:         v.GetBool(cfgKeySweep),
	}
	if s.TargetID == "" {
		s.TargetID = s.SpreadsheetID
	}
	return s
}

// writeConfigIfMissing creates config.yaml with cfg if the file does not
// exist. It reports whether the file was written.
func writeConfigIfMissing(path string, cfg configFile) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// configPath returns the config.yaml path in the resolved config directory.
func (a *app) configPath() string {
	return paths.ConfigFile(a.configDir)
}
