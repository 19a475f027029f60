package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database.max_conns must be >= 1 (got %d)", c.Database.MaxConns)
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns must be between 0 and max_conns (got %d)", c.Database.MinConns)
	}

	if c.Providers.Jisho.Timeout <= 0 {
		return fmt.Errorf("providers.jisho.timeout must be > 0 (got %v)", c.Providers.Jisho.Timeout)
	}
	if c.Providers.Tatoeba.Timeout <= 0 {
		return fmt.Errorf("providers.tatoeba.timeout must be > 0 (got %v)", c.Providers.Tatoeba.Timeout)
	}

	if c.Enrich.ExamplesPerGloss < 0 {
		return fmt.Errorf("enrich.examples_per_gloss must be >= 0 (got %d)", c.Enrich.ExamplesPerGloss)
	}
	if c.Enrich.Concurrency < 1 {
		return fmt.Errorf("enrich.concurrency must be >= 1 (got %d)", c.Enrich.Concurrency)
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	return nil
}
