package system

import (
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables read as system properties:
// DBMATRIX_DATABASE_PROFILE_NAME answers "database_profile_name".
const EnvPrefix = "DBMATRIX"

// PropertySource answers system property lookups. Layers, highest first:
// command-line overrides (-D), DBMATRIX_* environment variables, then the
// system_properties section of the tool config.
type PropertySource struct {
	v *viper.Viper
}

// NewPropertySource layers overrides and the environment over cfg.
func NewPropertySource(cfg *Config, overrides map[string]string) *PropertySource {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfg != nil {
		for key, value := range cfg.SystemProperties {
			v.SetDefault(key, value)
		}
	}
	for key, value := range overrides {
		v.Set(key, value)
	}
	return &PropertySource{v: v}
}

// Lookup returns a system property. Keys are case-insensitive.
func (s *PropertySource) Lookup(key string) (string, bool) {
	if !s.v.IsSet(key) {
		return "", false
	}
	return s.v.GetString(key), true
}

// Keys returns the keys set through the config or overrides, sorted.
// Environment-only keys are not listed.
func (s *PropertySource) Keys() []string {
	keys := s.v.AllKeys()
	sort.Strings(keys)
	return keys
}
