// Package driving provides interfaces for primary/inbound ports.
// The CLI depends on these interfaces; core services implement them.
package driving
