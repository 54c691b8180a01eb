package config

// Config holds maquette configuration.
// Stored at: ~/.maquette/config.yaml
type Config struct {
	Defra  DefraConfig  `mapstructure:"defra" yaml:"defra"`
	Export ExportConfig `mapstructure:"export" yaml:"export"`
}

// DefraConfig holds DefraDB container configuration.
type DefraConfig struct {
	// URL overrides the computed container URL when set.
	URL string `mapstructure:"url" yaml:"url,omitempty"`
	// ContainerName is the Docker container name (default: maquette-defra)
	ContainerName string `mapstructure:"container_name" yaml:"container_name"`
	// Image is the Docker image to use (default: sourcenetwork/defradb:latest)
	Image string `mapstructure:"image" yaml:"image"`
	// Port is the host port to bind (default: 9181)
	Port string `mapstructure:"port" yaml:"port"`
}

// ExportConfig holds export pipeline defaults. Command-line flags override
// these per run.
type ExportConfig struct {
	// Language overrides the guide language in export metadata.
	Language string `mapstructure:"language" yaml:"language,omitempty"`
	// TruncationMarker terminates truncated text fields.
	TruncationMarker string `mapstructure:"truncation_marker" yaml:"truncation_marker"`
	// KeepNullPictos retains inactive pictos in export documents.
	KeepNullPictos bool `mapstructure:"keep_null_pictos" yaml:"keep_null_pictos"`
	// MaxLengths are per-field truncation overrides.
	MaxLengths map[string]int `mapstructure:"max_lengths" yaml:"max_lengths,omitempty"`
	// ImageConcurrency bounds parallel image downloads.
	ImageConcurrency int `mapstructure:"image_concurrency" yaml:"image_concurrency"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Defra: DefraConfig{
			ContainerName: "maquette-defra",
			Image:         "sourcenetwork/defradb:latest",
			Port:          "9181",
		},
		Export: ExportConfig{
			TruncationMarker: "…",
			ImageConcurrency: 4,
		},
	}
}

// DefraURL returns the configured DefraDB URL, or the localhost URL built
// from the container port.
func (c *Config) DefraURL() string {
	if c.Defra.URL != "" {
		return c.Defra.URL
	}
	return "http://localhost:" + c.Defra.Port
}
