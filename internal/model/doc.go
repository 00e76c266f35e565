// Package model defines the value types that flow through the resolution
// pipeline: track descriptors coming in, candidates and ranked matches
// produced transiently per track, and download results plus the run
// summary coming out.
//
// All types here are plain data. Candidates and ranked matches live only
// for the duration of one track's resolution; DownloadResult values and
// the archive referenced by PipelineSummary are the only artifacts that
// outlive a run.
package model
