package common

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Keys the catalog loader consumes itself; they never reach the service config.
const (
	includesKey = "includes"
	profilesKey = "profiles"
	profileKey  = "profile"
)

// LoadWithIncludes reads the catalog config at base and merges further files
// over it. Files named by the base file's own Includes list come first,
// resolved against the base file's directory; the includes given on the
// command line follow in order. Later files win key by key.
func LoadWithIncludes(base string, includes []string) (*viper.Viper, error) {
	v := viper.New()
	if base == "" {
		return mergeIncludes(v, includes)
	}
	v.SetConfigFile(base)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	own := v.GetStringSlice(includesKey)
	for i, inc := range own {
		if !filepath.IsAbs(inc) {
			own[i] = filepath.Join(filepath.Dir(base), inc)
		}
	}
	return mergeIncludes(v, append(own, includes...))
}

func mergeIncludes(v *viper.Viper, files []string) (*viper.Viper, error) {
	for _, inc := range files {
		iv := viper.New()
		iv.SetConfigFile(inc)
		if err := iv.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("include %s: %w", inc, err)
		}
		if err := v.MergeConfigMap(iv.AllSettings()); err != nil {
			return nil, fmt.Errorf("include %s: %w", inc, err)
		}
	}
	settings := v.AllSettings()
	delete(settings, includesKey)
	out := viper.New()
	if err := out.MergeConfigMap(settings); err != nil {
		return nil, err
	}
	return out, nil
}

// overlay merges b into a, descending into nested sections.
func overlay(a, b map[string]any) map[string]any {
	for k, vb := range b {
		if ma, ok := a[k].(map[string]any); ok {
			if mb, ok := vb.(map[string]any); ok {
				a[k] = overlay(ma, mb)
				continue
			}
		}
		a[k] = vb
	}
	return a
}

// ApplySectionAndProfile narrows v to section (when the catalog config is
// nested in a shared file) and overlays profiles.<profile> on the result.
// An empty profile falls back to the config's own Profile key. Both keys and
// the profiles block are removed before the config is handed on.
func ApplySectionAndProfile(v *viper.Viper, section, profile string) (*viper.Viper, error) {
	if section != "" {
		sub := v.Sub(section)
		if sub == nil {
			return nil, fmt.Errorf("section %s not found", section)
		}
		v = sub
	}
	settings := v.AllSettings()
	if profile == "" {
		profile = strings.TrimSpace(v.GetString(profileKey))
	}
	if profile != "" {
		profiles, _ := settings[profilesKey].(map[string]any)
		p, ok := profiles[strings.ToLower(profile)].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("profile %s not found", profile)
		}
		settings = overlay(settings, p)
	}
	delete(settings, profilesKey)
	delete(settings, profileKey)
	nv := viper.New()
	if err := nv.MergeConfigMap(settings); err != nil {
		return nil, err
	}
	return nv, nil
}
