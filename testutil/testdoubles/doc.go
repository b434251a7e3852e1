// Package testdoubles provides spies for the observability interfaces of the event store and the
// circulation handlers. All spies are safe for concurrent use.
package testdoubles
