// Package profile starts and stops runtime profiling of hsmod.
//
// Profiling is backed by github.com/pkg/profile and compiled in only with
// the pprof build tag:
//
//	go build -tags pprof .
//
// Without the tag [Modes] is empty and [Config.Start] always returns a no-op.
package profile

// Tag is the build tag that enables profiling. It also names the flag
// group and the default output directory.
const Tag = "pprof"
