package config

import (
	"errors"
	"reflect"
	"testing"
)

func TestEnvLoader(t *testing.T) {
	l := NewEnvLoader("LANGKIT_")
	l.environ = func() []string {
		return []string{
			"HOME=/root",
			"LANGKIT_LOG_LEVEL=debug",
			"LANGKIT_LIB_DIR=/types",
			"LANGKIT_ASSETS_ENGINE_VERSION=1",
			"LANGKIT_LIBRARIES_WATCH=off",
			"LANGKIT_TYPESCRIPT_CHECK_JS=1",
			"LANGKIT_SERVER_NAME=",
			"LANGKIT_NOSECTION=1",
			"LANGKIT_CACHE_DIR=/tmp",
		}
	}

	got, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := map[string]any{
		"logging":    map[string]any{"level": "debug"},
		"libraries":  map[string]any{"dir": "/types", "watch": false},
		"assets":     map[string]any{"engine_version": "1"},
		"typescript": map[string]any{"check_js": true},
		"server":     map[string]any{"name": ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %v, want %v", got, want)
	}

	if want := []string{"LANGKIT_NOSECTION", "LANGKIT_CACHE_DIR"}; !reflect.DeepEqual(l.Ignored(), want) {
		t.Errorf("Ignored() = %v, want %v", l.Ignored(), want)
	}
}

func TestEnvLoaderBadBool(t *testing.T) {
	l := NewEnvLoader("LANGKIT_")
	l.environ = func() []string {
		return []string{"LANGKIT_LIBRARIES_WATCH=sometimes"}
	}

	_, err := l.Load()
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Path != "LANGKIT_LIBRARIES_WATCH" {
		t.Errorf("err = %v, want a ValidationError for LANGKIT_LIBRARIES_WATCH", err)
	}
}

func TestSettingKinds(t *testing.T) {
	kinds := settingKinds(reflect.TypeOf((*Config)(nil)).Elem())

	tests := []struct {
		path string
		want reflect.Kind
	}{
		{"assets.engine_version", reflect.String},
		{"libraries.watch", reflect.Bool},
		{"typescript.eager_model_sync", reflect.Bool},
		{"server.name", reflect.String},
	}
	for _, tt := range tests {
		if got := kinds[tt.path]; got != tt.want {
			t.Errorf("kind of %s = %v, want %v", tt.path, got, tt.want)
		}
	}
	if _, ok := kinds["cache.dir"]; ok {
		t.Error("cache.dir should not be a setting")
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
		ok   bool
	}{
		{"true", true, true},
		{"YES", true, true},
		{"1", true, true},
		{"off", false, true},
		{"0", false, true},
		{"es2020", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		if got, ok := parseBool(tt.in); got != tt.want || ok != tt.ok {
			t.Errorf("parseBool(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"logging": map[string]any{"level": "info", "file": "a.log"},
		"server":  map[string]any{"name": "langkit"},
	}
	src := map[string]any{
		"logging": map[string]any{"level": "debug"},
		"assets":  map[string]any{"base_path": "/srv"},
	}

	got := DeepMerge(dst, src)
	want := map[string]any{
		"logging": map[string]any{"level": "debug", "file": "a.log"},
		"server":  map[string]any{"name": "langkit"},
		"assets":  map[string]any{"base_path": "/srv"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DeepMerge() = %v, want %v", got, want)
	}

	if got := DeepMerge(nil, nil); len(got) != 0 {
		t.Errorf("DeepMerge(nil, nil) = %v", got)
	}
}
