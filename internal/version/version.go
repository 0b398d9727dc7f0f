// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Terminal preview with event panel, JSON snapshot export, YAML config
// 0.2.0 - Comet afterglow, byte stream driver with colour order, TOML config
// 0.1.0 - Initial release: twinkling starfield, comets, headless mode
