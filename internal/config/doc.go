// Package config loads langkit settings.
//
// Settings come from three layers, later layers overriding earlier ones:
//
//  1. Built-in defaults (Default)
//  2. A TOML file
//  3. LANGKIT_* environment variables
//
// Command-line flags are applied on top by the command.
//
// # Environment Variables
//
// A variable named LANGKIT_<SECTION>_<KEY> sets <key> in [<section>], with
// the key lowercased, so LANGKIT_ASSETS_BASE_PATH sets assets.base_path.
// A few short aliases exist:
//
//	LANGKIT_LOG_LEVEL  logging.level
//	LANGKIT_LOG_FILE   logging.file
//	LANGKIT_LIB_DIR    libraries.dir
//
// Values "true"/"false" (also yes/no, on/off, 1/0) become booleans.
package config
