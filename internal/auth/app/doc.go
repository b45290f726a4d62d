// Package server composes and runs the auth process boundary.
//
// It wires the ceremony service, session manager, challenge store, and
// SQLite persistence behind one HTTP listener so identity decisions are
// made from a single source of truth.
package server
