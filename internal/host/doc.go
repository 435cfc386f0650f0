// Package host is the metadata side of the binder: per-type member tables,
// generic member instantiation and the raw invoke primitives that thunks
// call into. Members are registered as data (reflection-as-data); the Go
// bridge in gobridge.go fills the same tables from reflect metadata.
package host
