// Package driving provides interfaces for primary/inbound adapters
// (CLI, watchers). Adapters call the core through these interfaces.
package driving
