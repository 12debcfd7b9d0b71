package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk JSON layout of [StructuredConfig].
type StructuredJSONConfig struct {
	App struct {
		HashKey       string   `json:"hash_key"`
		TokenSignKey  string   `json:"token_sign_key"`
		TokenIssuer   string   `json:"token_issuer"`
		TokenDuration Duration `json:"token_duration"`
		Devices       []string `json:"devices"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		GRPCAddress    string   `json:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		GRPCAddress    string   `json:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout"`
		Token          string   `json:"token"`
	} `json:"adapter,omitempty"`

	Workers struct {
		SyncInterval  Duration `json:"sync_interval"`
		StartupDelay  Duration `json:"startup_delay"`
		ProbeInterval Duration `json:"probe_interval"`
	} `json:"workers,omitempty"`

	Sync struct {
		Collections    []string `json:"collections"`
		ConflictPolicy string   `json:"conflict_policy"`
		TimestampField string   `json:"timestamp_field"`
		BackoffBase    Duration `json:"backoff_base"`
		BackoffMax     Duration `json:"backoff_max"`
	} `json:"sync,omitempty"`

	LocalAPI struct {
		Address string `json:"address"`
	} `json:"local_api,omitempty"`

	Log struct {
		Level      string `json:"level"`
		File       string `json:"file"`
		MaxSizeMB  int    `json:"max_size_mb"`
		MaxBackups int    `json:"max_backups"`
		MaxAgeDays int    `json:"max_age_days"`
	} `json:"log,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			HashKey:       jsonCfg.App.HashKey,
			TokenSignKey:  jsonCfg.App.TokenSignKey,
			TokenIssuer:   jsonCfg.App.TokenIssuer,
			TokenDuration: time.Duration(jsonCfg.App.TokenDuration),
			Devices:       jsonCfg.App.Devices,
		},
		Storage: Storage{
			DB: DB{DSN: jsonCfg.Storage.DB.DSN},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			GRPCAddress:    jsonCfg.Server.GRPCAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			GRPCAddress:    jsonCfg.Adapter.GRPCAddress,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
			Token:          jsonCfg.Adapter.Token,
		},
		Workers: Workers{
			SyncInterval:  time.Duration(jsonCfg.Workers.SyncInterval),
			StartupDelay:  time.Duration(jsonCfg.Workers.StartupDelay),
			ProbeInterval: time.Duration(jsonCfg.Workers.ProbeInterval),
		},
		Sync: Sync{
			Collections:    jsonCfg.Sync.Collections,
			ConflictPolicy: jsonCfg.Sync.ConflictPolicy,
			TimestampField: jsonCfg.Sync.TimestampField,
			BackoffBase:    time.Duration(jsonCfg.Sync.BackoffBase),
			BackoffMax:     time.Duration(jsonCfg.Sync.BackoffMax),
		},
		LocalAPI: LocalAPI{Address: jsonCfg.LocalAPI.Address},
		Log: Log{
			Level:      jsonCfg.Log.Level,
			File:       jsonCfg.Log.File,
			MaxSizeMB:  jsonCfg.Log.MaxSizeMB,
			MaxBackups: jsonCfg.Log.MaxBackups,
			MaxAgeDays: jsonCfg.Log.MaxAgeDays,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s" as well as integer nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
