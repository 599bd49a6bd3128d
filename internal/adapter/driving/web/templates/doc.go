// Package templates holds the templ components for the map GUI. Edit the
// .templ sources and run `go tool templ generate` to refresh the _templ.go
// files.
package templates
