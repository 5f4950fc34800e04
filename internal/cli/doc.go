// Package cli builds the tweakrunner command tree. It maps flags onto the
// configuration loader, runs the requested operation against an app
// session and translates failures into process exit codes.
package cli
