// Package oteladapters implements the eventstore observability interfaces on top of OpenTelemetry.
//
// The librarian service wires these when telemetry is enabled in its config; engines and command
// handlers only see the small eventstore interfaces.
package oteladapters
