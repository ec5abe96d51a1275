// Package storage provides endpoint definition storage abstractions and
// implementations: a mutex-guarded in-memory store and a MongoDB-backed
// durable store.
package storage
