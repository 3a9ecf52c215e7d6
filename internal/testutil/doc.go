// Package testutil holds deterministic helpers shared by the test suites:
// a rewindable logical clock, fixed match IDs and compact rally builders.
//
// Nothing here depends on the engine, so engine tests can import it.
package testutil
