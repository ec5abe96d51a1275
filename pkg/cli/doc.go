// Package cli implements the mockbay command line interface.
package cli
