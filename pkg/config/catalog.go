package config

// CatalogConfig points at the YAML catalog files for built-in models,
// personas, agents and resources. Empty paths fall back to the
// compiled-in defaults.
type CatalogConfig struct {
	// Models catalog file path.
	Models string `yaml:"models,omitempty" json:"models,omitempty" jsonschema:"title=Models,description=Model catalog YAML path"`

	// Personas catalog file path.
	Personas string `yaml:"personas,omitempty" json:"personas,omitempty" jsonschema:"title=Personas,description=Built-in persona catalog YAML path"`

	// Agents catalog file path.
	Agents string `yaml:"agents,omitempty" json:"agents,omitempty" jsonschema:"title=Agents,description=Built-in agent catalog YAML path"`

	// Resources catalog file path.
	Resources string `yaml:"resources,omitempty" json:"resources,omitempty" jsonschema:"title=Resources,description=Recommendation resource catalog YAML path"`
}

func (c *CatalogConfig) SetDefaults() {}
