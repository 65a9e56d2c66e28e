// Package process launches supervised roles as local OS processes with their
// stdout and stderr merged into a single stream.
//
// Full process-group termination is only guaranteed on Linux, where the
// runtime can rely on job-control semantics to deliver SIGKILL to every
// member of the child process group. On macOS and Windows termination is
// best-effort: the direct child is killed, but grandchildren it spawned may
// survive and must be cleaned up separately.
package process
