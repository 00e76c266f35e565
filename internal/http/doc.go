// Package http wraps the HTTP operations shared by the search and
// download components: page fetches with a declared client identity,
// metadata-only probes, and streaming downloads with a size ceiling.
package http
