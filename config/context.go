package config

import (
	"errors"
	"fmt"

	"github.com/dynaqlabs/dynaq/schema"
)

// ErrNoTable is returned when no target table is bound by flag or
// config file.
var ErrNoTable = errors.New("no target table, pass --table or run the use command first")

// Context carries the loaded configuration plus per-invocation flag
// overrides. Overrides win over the config file.
type Context struct {
	Config *Config
	Cache  *Cache

	regionOverride string
	tableOverride  string
	portOverride   int

	// shouldStrict is nil when neither strict flag was passed, so the
	// config file decides.
	shouldStrict *bool
}

// NewContext builds a context from the persisted config and cache.
func NewContext() (*Context, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	cache, err := LoadCache()
	if err != nil {
		return nil, err
	}

	return &Context{Config: cfg, Cache: cache}, nil
}

// WithRegion sets the per-invocation region override.
func (c *Context) WithRegion(region string) *Context {
	c.regionOverride = region

	return c
}

// WithTable sets the per-invocation table override.
func (c *Context) WithTable(table string) *Context {
	c.tableOverride = table

	return c
}

// WithPort points the context at a local endpoint on the given port.
func (c *Context) WithPort(port int) *Context {
	c.portOverride = port

	return c
}

// SetStrictFlags records the --strict/--non-strict flag pair. When
// either flag is passed it wins; --strict beats --non-strict when the
// caller somehow passes both.
func (c *Context) SetStrictFlags(strict, nonStrict bool) {
	if strict || nonStrict {
		v := strict || !nonStrict
		c.shouldStrict = &v
	}
}

// ShouldStrictForQuery reports whether sort key literals must match the
// key type exactly. Flags win over the config file; the default is
// non-strict.
func (c *Context) ShouldStrictForQuery() bool {
	if c.shouldStrict != nil {
		return *c.shouldStrict
	}

	return c.Config.Query.StrictMode
}

// EffectiveRegion resolves the region: flag override, then config file,
// then the default. A local endpoint context reports "local" so cached
// schemas never collide with a real region's tables.
func (c *Context) EffectiveRegion() string {
	if c.IsLocal() {
		return "local"
	}

	if c.regionOverride != "" {
		return c.regionOverride
	}

	if c.Config.Region != "" {
		return c.Config.Region
	}

	return DefaultRegion
}

// EffectiveTableName resolves the target table: flag override, then the
// table bound in the config file.
func (c *Context) EffectiveTableName() (string, error) {
	if c.tableOverride != "" {
		return c.tableOverride, nil
	}

	if c.Config.Table != "" {
		return c.Config.Table, nil
	}

	return "", ErrNoTable
}

// IsLocal reports whether the context targets a local endpoint.
func (c *Context) IsLocal() bool {
	return c.portOverride != 0
}

// EffectiveEndpoint returns the local endpoint URL, or "" for the real
// service.
func (c *Context) EffectiveEndpoint() string {
	if !c.IsLocal() {
		return ""
	}

	return fmt.Sprintf("http://localhost:%d", c.portOverride)
}

// CachedSchema returns the cached schema of the effective table.
func (c *Context) CachedSchema() (*schema.Table, bool) {
	table, err := c.EffectiveTableName()
	if err != nil {
		return nil, false
	}

	return c.Cache.Lookup(c.EffectiveRegion(), table)
}

// RememberSchema stores a schema in the cache and persists it.
func (c *Context) RememberSchema(table *schema.Table) error {
	c.Cache.Insert(table)

	return SaveCache(c.Cache)
}

// UseTable binds the config file to a table and region and persists it.
func (c *Context) UseTable(region, table string) error {
	c.Config.Region = region
	c.Config.Table = table

	return SaveConfig(c.Config)
}
