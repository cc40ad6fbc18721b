// Package runner executes one gpg invocation as a subprocess.
//
// A run wires the caller's optional input and output streams to the
// subprocess through concurrent pumps, captures stderr in full, and races
// a timeout watcher against process exit. Run does not return until every
// concurrent activity has finished, so no background I/O survives a run.
package runner
