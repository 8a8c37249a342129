// Package config loads autotox settings from defaults, an optional YAML
// file and AUTOTOX_* environment variables, in increasing precedence.
// Command-line flags are applied on top by the binary.
package config
