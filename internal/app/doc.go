// Package app wires a tweakrunner session together: the logger, the demo
// host, the settings store, the runner and the compiled-in tweak modules.
// It is decoupled from any specific entrypoint like a CLI or a remote
// bridge.
package app
