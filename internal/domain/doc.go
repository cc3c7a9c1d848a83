// Package domain contains the core entities of the drill API: catalog
// items, per-user review records, and the session/batch state owned by
// the scheduling engine. Domain types carry their own validation and
// have no dependencies on persistence or transport layers.
package domain
