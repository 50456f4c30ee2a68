package compilation

import (
	"encoding/json"

	"github.com/crytic/harvester/compilation/platforms"
	"github.com/pkg/errors"
)

// CompilationConfig describes which toolchains are detected in a repository, in which order they are attempted, and
// how each of them is configured.
type CompilationConfig struct {
	// PlatformOrder lists the platform identifiers to detect and build with, most preferred first.
	PlatformOrder []string `json:"platformOrder"`

	// PlatformConfigs maps a platform identifier to its platform-specific configuration. Platforms without an entry
	// use their defaults.
	PlatformConfigs map[string]*json.RawMessage `json:"platformConfigs,omitempty"`
}

// NewCompilationConfig returns a CompilationConfig which attempts every supported platform in default order, with the
// default configuration of each platform serialized.
func NewCompilationConfig() (*CompilationConfig, error) {
	config := &CompilationConfig{
		PlatformOrder:   GetSupportedCompilationPlatforms(),
		PlatformConfigs: make(map[string]*json.RawMessage),
	}
	for _, platform := range config.PlatformOrder {
		if err := config.SetPlatformConfig(GetDefaultPlatformConfig(platform)); err != nil {
			return nil, err
		}
	}
	return config, nil
}

// SetPlatformConfig serializes the platforms.PlatformConfig and stores it as the configuration of its platform. This
// allows many platform config types to be serialized/deserialized to their appropriate types and supported generally.
func (c *CompilationConfig) SetPlatformConfig(platformConfig platforms.PlatformConfig) error {
	b, err := json.Marshal(platformConfig)
	if err != nil {
		return errors.WithStack(err)
	}
	if c.PlatformConfigs == nil {
		c.PlatformConfigs = make(map[string]*json.RawMessage)
	}
	c.PlatformConfigs[platformConfig.Platform()] = (*json.RawMessage)(&b)
	return nil
}

// GetPlatformConfig deserializes the configuration of the provided platform over its default configuration.
func (c *CompilationConfig) GetPlatformConfig(platform string) (platforms.PlatformConfig, error) {
	// Verify the platform is valid
	if !IsSupportedCompilationPlatform(platform) {
		return nil, errors.Errorf("platform '%s' is unsupported", platform)
	}

	// Allocate a platform config given our platform identifier. It is necessary to do so as json.Unmarshal needs a
	// concrete structure to populate.
	platformConfig := GetDefaultPlatformConfig(platform)
	if raw, exists := c.PlatformConfigs[platform]; exists && raw != nil {
		if err := json.Unmarshal(*raw, platformConfig); err != nil {
			return nil, errors.Wrapf(err, "invalid configuration for platform '%s'", platform)
		}
	}
	return platformConfig, nil
}

// GetPlatforms returns the configured platforms in preference order.
func (c *CompilationConfig) GetPlatforms() ([]platforms.PlatformConfig, error) {
	platformConfigs := make([]platforms.PlatformConfig, 0, len(c.PlatformOrder))
	for _, platform := range c.PlatformOrder {
		platformConfig, err := c.GetPlatformConfig(platform)
		if err != nil {
			return nil, err
		}
		platformConfigs = append(platformConfigs, platformConfig)
	}
	return platformConfigs, nil
}

// Validate ensures that the platform order is non-empty, names only supported platforms, and names each at most once.
// Every platform configuration must also deserialize and pass its own validation, if it has any.
func (c *CompilationConfig) Validate() error {
	if len(c.PlatformOrder) == 0 {
		return errors.New("at least one compilation platform must be configured")
	}
	seen := make(map[string]bool)
	for _, platform := range c.PlatformOrder {
		if seen[platform] {
			return errors.Errorf("compilation platform '%s' is listed more than once", platform)
		}
		seen[platform] = true
	}
	for platform := range c.PlatformConfigs {
		if !IsSupportedCompilationPlatform(platform) {
			return errors.Errorf("configuration provided for unsupported platform '%s'", platform)
		}
	}
	platformConfigs, err := c.GetPlatforms()
	if err != nil {
		return err
	}
	for _, platformConfig := range platformConfigs {
		if validator, ok := platformConfig.(interface{ Validate() error }); ok {
			if err = validator.Validate(); err != nil {
				return errors.Wrapf(err, "invalid configuration for platform '%s'", platformConfig.Platform())
			}
		}
	}
	return nil
}
