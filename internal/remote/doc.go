// Package remote delivers host callbacks over socket.io. A remote process
// plays the host: it emits toggle, update, gui, hide_gui and save events,
// and may query or change tweak state with status and set_enabled. Every
// event is handled on one dispatch loop, so the callbacks reach the runner
// in order and never concurrently.
package remote
