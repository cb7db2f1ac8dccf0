// Package widgets implements the radio and select boxes widgets on top of the
// option engine in package field, plus the registry that picks a widget for a
// field configuration.
package widgets
