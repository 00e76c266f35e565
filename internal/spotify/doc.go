// Package spotify reads public playlist metadata from the Spotify Web
// API using the client-credentials flow. It is the playlist ingestion
// side of the pipeline: a playlist reference in, track descriptors out.
package spotify
