package store

// Config holds configuration for the DynamoDB store.
type Config struct {
	// TablePrefix is prepended to every collection name to form its
	// DynamoDB table name.
	// Default: "catalog_"
	TablePrefix string

	// UniqueTable is the name of the unique constraints table.
	// Default: "catalog_unique_constraints"
	UniqueTable string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TablePrefix: "catalog_",
		UniqueTable: "catalog_unique_constraints",
	}
}

// validate ensures config values are usable.
func (c *Config) validate() {
	if c.TablePrefix == "" {
		c.TablePrefix = "catalog_"
	}
	if c.UniqueTable == "" {
		c.UniqueTable = "catalog_unique_constraints"
	}
}

// TableFor returns the DynamoDB table name for a collection.
func (c Config) TableFor(collection string) string {
	return c.TablePrefix + collection
}
