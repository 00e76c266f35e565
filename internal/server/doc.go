// Package server exposes playlist analysis and resolution over HTTP.
package server
