package jobconfig

// Config holds the job parameters read from the YAML file.
// It is created once at startup and never mutated.
type Config struct {
	Seed    int64  `json:"seed"`
	Window  int    `json:"window"`
	Version string `json:"version"`
}

// document is the YAML shape. Pointer fields distinguish an absent key from a
// zero value; unknown keys are ignored.
type document struct {
	Seed    *int64  `yaml:"seed" validate:"present"`
	Window  *int    `yaml:"window" validate:"present,gte=1"`
	Version *string `yaml:"version" validate:"present"`
}

func (d *document) config() *Config {
	return &Config{
		Seed:    *d.Seed,
		Window:  *d.Window,
		Version: *d.Version,
	}
}

// Fields returns the parameters as log fields
func (c *Config) Fields() map[string]interface{} {
	return map[string]interface{}{
		"seed":    c.Seed,
		"window":  c.Window,
		"version": c.Version,
	}
}
