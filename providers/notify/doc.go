// Package notify defines the fire-and-forget event sink consumed by the
// healing loop, plus small ready-made sinks (nop, function adapter, slog).
// Events carry a unique id, a name, a timestamp, and an emitter-owned
// payload.
package notify
