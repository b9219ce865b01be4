package config

import (
	"encoding/json"
	"os"
)

type Config struct {
	InputNexus           string `json:"input_nexus"`
	OutputFasta          string `json:"output_fasta"`
	LogFile              string `json:"log_file"`
	LogLevel             string `json:"log_level"`
	WrapColumns          int    `json:"wrap_columns"`
	TreebaseCachePath    string `json:"treebase_cache_path"`
	TreebaseCacheTTLSecs int64  `json:"treebase_cache_ttl_seconds"`
}

// LoadConfig loads a JSON config from the given path. If path is empty, looks for ./config.json.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}
	f, err := os.Open(path)
	if err != nil {
		// not fatal: return defaults
		return &Config{}, nil
	}
	defer f.Close()
	var c Config
	dec := json.NewDecoder(f)
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
