package engine

import (
	"fmt"
	"strings"
	"sync"
)

// JsxEmit selects how JSX is emitted by the type checker.
type JsxEmit int

// JSX emit modes.
const (
	JsxNone JsxEmit = iota
	JsxPreserve
	JsxReact
	JsxReactNative
	JsxReactJSX
	JsxReactJSXDev
)

// ModuleResolution selects the module resolution strategy.
type ModuleResolution int

// Module resolution strategies.
const (
	ModuleResolutionClassic ModuleResolution = 1
	ModuleResolutionNodeJs  ModuleResolution = 2
)

// ScriptTarget is the ECMAScript language level.
type ScriptTarget int

// Script targets.
const (
	ES3    ScriptTarget = 0
	ES5    ScriptTarget = 1
	ES2015 ScriptTarget = 2
	ES2016 ScriptTarget = 3
	ES2017 ScriptTarget = 4
	ES2018 ScriptTarget = 5
	ES2019 ScriptTarget = 6
	ES2020 ScriptTarget = 7
	ESNext ScriptTarget = 99
)

var (
	jsxNames = map[string]JsxEmit{
		"none":         JsxNone,
		"preserve":     JsxPreserve,
		"react":        JsxReact,
		"react-native": JsxReactNative,
		"react-jsx":    JsxReactJSX,
		"react-jsxdev": JsxReactJSXDev,
	}
	resolutionNames = map[string]ModuleResolution{
		"classic": ModuleResolutionClassic,
		"node":    ModuleResolutionNodeJs,
		"nodejs":  ModuleResolutionNodeJs,
	}
	targetNames = map[string]ScriptTarget{
		"es3":    ES3,
		"es5":    ES5,
		"es2015": ES2015,
		"es6":    ES2015,
		"es2016": ES2016,
		"es2017": ES2017,
		"es2018": ES2018,
		"es2019": ES2019,
		"es2020": ES2020,
		"esnext": ESNext,
	}
)

// ParseJsxEmit parses a JSX mode name such as "preserve".
func ParseJsxEmit(s string) (JsxEmit, error) {
	if v, ok := jsxNames[strings.ToLower(s)]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("unknown jsx mode %q", s)
}

// ParseModuleResolution parses a resolution name such as "node".
func ParseModuleResolution(s string) (ModuleResolution, error) {
	if v, ok := resolutionNames[strings.ToLower(s)]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("unknown module resolution %q", s)
}

// ParseScriptTarget parses a target name such as "ES2020".
func ParseScriptTarget(s string) (ScriptTarget, error) {
	if v, ok := targetNames[strings.ToLower(s)]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("unknown script target %q", s)
}

// CompilerOptions configures the script-family type checker.
type CompilerOptions struct {
	ExperimentalDecorators       bool
	AllowSyntheticDefaultImports bool
	JSX                          JsxEmit
	ModuleResolution             ModuleResolution
	AllowNonTSExtensions         bool
	Target                       ScriptTarget
	NoEmit                       bool
	CheckJS                      bool
}

// DefaultCompilerOptions returns the options the IDE runs with.
func DefaultCompilerOptions() CompilerOptions {
	return CompilerOptions{
		ExperimentalDecorators:       true,
		AllowSyntheticDefaultImports: true,
		JSX:                          JsxPreserve,
		ModuleResolution:             ModuleResolutionNodeJs,
		AllowNonTSExtensions:         true,
		Target:                       ES2020,
		NoEmit:                       true,
		CheckJS:                      false,
	}
}

// ExtraLib is a virtual declaration file visible to the type checker.
type ExtraLib struct {
	Name    string
	Content string
	Version int
}

// TypeScriptDefaults holds the type-checking environment shared by all
// script-family models.
type TypeScriptDefaults struct {
	mu sync.RWMutex

	options        CompilerOptions
	eagerModelSync bool

	libs     map[string]*ExtraLib
	libOrder []string
}

func newTypeScriptDefaults() *TypeScriptDefaults {
	return &TypeScriptDefaults{
		eagerModelSync: true,
		libs:           make(map[string]*ExtraLib),
	}
}

// SetCompilerOptions replaces the compiler options.
func (d *TypeScriptDefaults) SetCompilerOptions(opts CompilerOptions) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.options = opts
}

// CompilerOptions returns the current compiler options.
func (d *TypeScriptDefaults) CompilerOptions() CompilerOptions {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.options
}

// SetEagerModelSync controls whether every open model is synced to the type
// checker, or only models that are referenced.
func (d *TypeScriptDefaults) SetEagerModelSync(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.eagerModelSync = enabled
}

// EagerModelSync reports the model sync mode.
func (d *TypeScriptDefaults) EagerModelSync() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.eagerModelSync
}

// AddExtraLib adds or replaces the declaration file called name. Adding the
// same content again is a no-op.
func (d *TypeScriptDefaults) AddExtraLib(content, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if lib, ok := d.libs[name]; ok {
		if lib.Content != content {
			lib.Content = content
			lib.Version++
		}
		return
	}

	d.libs[name] = &ExtraLib{Name: name, Content: content, Version: 1}
	d.libOrder = append(d.libOrder, name)
}

// ExtraLib returns the declaration file called name.
func (d *TypeScriptDefaults) ExtraLib(name string) (ExtraLib, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	lib, ok := d.libs[name]
	if !ok {
		return ExtraLib{}, false
	}
	return *lib, true
}

// ExtraLibs returns all declaration files in the order they were first added.
func (d *TypeScriptDefaults) ExtraLibs() []ExtraLib {
	d.mu.RLock()
	defer d.mu.RUnlock()

	libs := make([]ExtraLib, 0, len(d.libOrder))
	for _, name := range d.libOrder {
		libs = append(libs, *d.libs[name])
	}
	return libs
}
