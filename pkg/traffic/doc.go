// Package traffic captures dispatch outcomes in a bounded, newest-first
// buffer and fans new entries out to owner-scoped live subscribers.
package traffic
