// Package config persists tool configuration and the table schema cache
// under the user's home directory, and resolves effective settings from
// flag overrides, the config file, and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dynaqlabs/dynaq/schema"
)

const (
	configDirName   = ".dynaq"
	configFileName  = "config.yml"
	cacheFileName   = "cache.yml"
	configDirEnvVar = "DY_CONFIG_DIR"
)

// DefaultRegion is used when neither a flag nor the config file names
// one and the SDK resolves nothing either.
const DefaultRegion = "us-east-1"

// QueryConfig holds query behavior settings.
type QueryConfig struct {
	// StrictMode disables sort key literal coercion by default.
	StrictMode bool `yaml:"strict_mode"`
}

// Config is the persisted tool configuration.
type Config struct {
	Region string      `yaml:"region,omitempty"`
	Table  string      `yaml:"table,omitempty"`
	Query  QueryConfig `yaml:"query"`
}

// CachedTable is one table schema entry of the cache file.
type CachedTable struct {
	Region string      `yaml:"region"`
	Name   string      `yaml:"name"`
	Pk     CachedKey   `yaml:"pk"`
	Sk     *CachedKey  `yaml:"sk,omitempty"`
	Mode   string      `yaml:"mode,omitempty"`
	Gsi    []CachedIdx `yaml:"gsi,omitempty"`
}

// CachedKey is a key attribute in the cache file.
type CachedKey struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// CachedIdx is a secondary index entry in the cache file.
type CachedIdx struct {
	Name string     `yaml:"name"`
	Pk   CachedKey  `yaml:"pk"`
	Sk   *CachedKey `yaml:"sk,omitempty"`
}

// Cache is the persisted table schema cache, keyed by region/table.
type Cache struct {
	Tables map[string]CachedTable `yaml:"tables"`
}

func cacheKey(region, table string) string {
	return region + "/" + table
}

// Dir returns the configuration directory, honoring the DY_CONFIG_DIR
// override.
func Dir() (string, error) {
	if dir := os.Getenv(configDirEnvVar); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	return filepath.Join(home, configDirName), nil
}

// LoadConfig reads the config file. A missing file yields a zero
// config, not an error.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := loadYAML(configFileName, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig writes the config file, creating the directory if needed.
func SaveConfig(cfg *Config) error {
	return saveYAML(configFileName, cfg)
}

// LoadCache reads the schema cache file. A missing file yields an empty
// cache.
func LoadCache() (*Cache, error) {
	cache := &Cache{}
	if err := loadYAML(cacheFileName, cache); err != nil {
		return nil, err
	}

	if cache.Tables == nil {
		cache.Tables = map[string]CachedTable{}
	}

	return cache, nil
}

// SaveCache writes the schema cache file.
func SaveCache(cache *Cache) error {
	return saveYAML(cacheFileName, cache)
}

// Insert stores a table schema in the cache.
func (c *Cache) Insert(table *schema.Table) {
	entry := CachedTable{
		Region: table.Region,
		Name:   table.Name,
		Pk:     CachedKey{Name: table.Pk.Name, Type: string(table.Pk.Type)},
		Mode:   table.Mode,
	}

	if table.Sk != nil {
		entry.Sk = &CachedKey{Name: table.Sk.Name, Type: string(table.Sk.Type)}
	}

	for _, idx := range table.Indexes {
		cidx := CachedIdx{
			Name: idx.Name,
			Pk:   CachedKey{Name: idx.Pk.Name, Type: string(idx.Pk.Type)},
		}

		if idx.Sk != nil {
			cidx.Sk = &CachedKey{Name: idx.Sk.Name, Type: string(idx.Sk.Type)}
		}

		entry.Gsi = append(entry.Gsi, cidx)
	}

	c.Tables[cacheKey(table.Region, table.Name)] = entry
}

// Lookup returns the cached schema for a region/table pair.
func (c *Cache) Lookup(region, table string) (*schema.Table, bool) {
	entry, ok := c.Tables[cacheKey(region, table)]
	if !ok {
		return nil, false
	}

	t, err := entry.toSchema()
	if err != nil {
		return nil, false
	}

	return t, true
}

func (e CachedTable) toSchema() (*schema.Table, error) {
	pk, err := toSchemaKey(e.Pk)
	if err != nil {
		return nil, err
	}

	table := &schema.Table{
		Name:    e.Name,
		Region:  e.Region,
		Pk:      pk,
		Indexes: map[string]schema.Index{},
		Mode:    e.Mode,
	}

	if e.Sk != nil {
		sk, err := toSchemaKey(*e.Sk)
		if err != nil {
			return nil, err
		}

		table.Sk = &sk
	}

	for _, cidx := range e.Gsi {
		pk, err := toSchemaKey(cidx.Pk)
		if err != nil {
			return nil, err
		}

		idx := schema.Index{Name: cidx.Name, Pk: pk}

		if cidx.Sk != nil {
			sk, err := toSchemaKey(*cidx.Sk)
			if err != nil {
				return nil, err
			}

			idx.Sk = &sk
		}

		table.Indexes[cidx.Name] = idx
	}

	return table, nil
}

func toSchemaKey(k CachedKey) (schema.Key, error) {
	kt, err := schema.ParseKeyType(k.Type)
	if err != nil {
		return schema.Key{}, err
	}

	return schema.Key{Name: k.Name, Type: kt}, nil
}

func loadYAML(name string, out any) error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}

	return nil
}

func saveYAML(name string, in any) error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	data, err := yaml.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}

	return nil
}
