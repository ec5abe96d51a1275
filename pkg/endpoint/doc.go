// Package endpoint defines the virtual endpoint model: the stored
// Definition, path canonicalization into the /test/ and /testws/
// namespaces, field defaulting, and validation.
package endpoint
