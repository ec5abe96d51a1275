// Package registry implements owner-scoped management of endpoint
// definitions on top of the storage layer. Dispatch never goes through
// the registry; matching is global, ownership only gates create, update,
// delete and listing.
package registry
