// Package download fetches a ranked candidate to disk. Every transfer
// is preceded by a metadata probe that rejects non-audio or out-of-size
// links outright; only transport failures after a passed probe are
// retried, with exponential backoff between attempts.
package download
