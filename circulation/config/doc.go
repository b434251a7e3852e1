// Package config loads the librarian configuration and builds the database handles and
// OpenTelemetry providers it describes.
//
// Sources are layered: built-in defaults, then an optional YAML file, then .env files,
// then LIBRARY_* environment variables. The result is validated before it is returned.
package config
