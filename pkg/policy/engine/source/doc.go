// Package source provides flag sources for the growth engine that are not
// backed by the configuration store, for tests, benchmarks and embedding
// hosts that manage their own configuration.
package source
