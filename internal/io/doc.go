// Package ioutils provides file system utilities for sonicsync.
//
// This package contains functions for:
//   - Filename sanitization
//   - Collision-free file creation under concurrent writers
//   - Directory creation
//   - Cover art preparation for ID3 embedding
package ioutils
