package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
)

// EnvLoader loads settings from environment variables.
type EnvLoader struct {
	prefix   string                  // Environment variable prefix, e.g. "LANGKIT_"
	mapping  map[string]string       // Env var -> setting path
	settings map[string]reflect.Kind // Setting path -> field kind
	environ  func() []string

	ignored []string
}

// NewEnvLoader creates an environment loader. The prefix should include the
// trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:   prefix,
		mapping:  defaultEnvMapping(prefix),
		settings: settingKinds(reflect.TypeOf((*Config)(nil)).Elem()),
		environ:  os.Environ,
	}
}

func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "LOG_LEVEL": "logging.level",
		prefix + "LOG_FILE":  "logging.file",
		prefix + "LIB_DIR":   "libraries.dir",
	}
}

// settingKinds lists the dotted toml path and kind of every setting in t.
func settingKinds(t reflect.Type) map[string]reflect.Kind {
	kinds := make(map[string]reflect.Kind)
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		if section.Type.Kind() != reflect.Struct {
			continue
		}
		name := section.Tag.Get("toml")
		for j := 0; j < section.Type.NumField(); j++ {
			field := section.Type.Field(j)
			kinds[name+"."+field.Tag.Get("toml")] = field.Type.Kind()
		}
	}
	return kinds
}

// Load returns the settings found in the environment as a nested map.
// Empty values are kept, not treated as unset. Prefixed variables that name
// no setting are skipped and reported by Ignored.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	l.ignored = nil

	for _, env := range l.environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}

		path, ok := l.mapping[name]
		if !ok {
			path, _ = l.envToPath(name)
		}

		kind, ok := l.settings[path]
		if !ok {
			l.ignored = append(l.ignored, name)
			continue
		}

		if kind != reflect.Bool {
			setByPath(config, path, value)
			continue
		}
		b, ok := parseBool(value)
		if !ok {
			return nil, &ValidationError{Path: name, Err: fmt.Errorf("%q is not a boolean", value)}
		}
		setByPath(config, path, b)
	}

	return config, nil
}

// Ignored returns the prefixed variables the last Load skipped.
func (l *EnvLoader) Ignored() []string {
	return l.ignored
}

// envToPath converts LANGKIT_ASSETS_BASE_PATH to assets.base_path.
func (l *EnvLoader) envToPath(env string) (string, bool) {
	name := strings.TrimPrefix(env, l.prefix)

	section, key, ok := strings.Cut(name, "_")
	if !ok || section == "" || key == "" {
		return "", false
	}
	return strings.ToLower(section) + "." + strings.ToLower(key), true
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0":
		return false, true
	}
	return false, false
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}

	current[parts[len(parts)-1]] = value
}

// DeepMerge recursively merges src into dst. Values in src win; maps are
// merged key by key.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}

	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
			continue
		}
		dst[key] = srcVal
	}

	return dst
}
