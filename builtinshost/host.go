// Package builtinshost defines the plain, dependency-free host-side types
// exchanged across monty's suspension boundary: HostPath, HostStatResult,
// and HostException. It exists only so that both
// vm (the conversion boundary) and builtins (the Path/StatResult value
// surface) can share these shapes without an import cycle between the two.
package builtinshost

// HostPath is the host-side immutable form of a Path value: a pure POSIX
// path with an absolute flag and normalized components.
type HostPath struct {
	Absolute bool
	Parts    []string
}

func (p HostPath) String() string {
	sep := "/"
	joined := ""
	for i, part := range p.Parts {
		if i > 0 {
			joined += sep
		}
		joined += part
	}
	if p.Absolute {
		return "/" + joined
	}
	if joined == "" {
		return "."
	}
	return joined
}

// HostStatResult is the host-side form of a StatResult answer to a
// Path.stat() Snapshot: a 10-tuple with named fields.
// TypeName is always "StatResult"; Fields holds the ten values in
// st_mode, st_ino, st_dev, st_nlink, st_uid, st_gid, st_size, st_atime,
// st_mtime, st_ctime order.
type HostStatResult struct {
	TypeName string
	Fields   []interface{}
}

// StatFieldNames is the canonical field order of a StatResult, shared by the
// builtin constructors and the host boundary's record rebuilding.
var StatFieldNames = []string{
	"st_mode", "st_ino", "st_dev", "st_nlink", "st_uid", "st_gid",
	"st_size", "st_atime", "st_mtime", "st_ctime",
}

// NewFileStat builds the host-side answer for StatResult.file_stat(size,
// mode, mtime): ino=0, dev=0, nlink=1, uid=0, gid=0, atime=0.0, ctime=0.0.
func NewFileStat(size int64, mode int64, mtime float64) HostStatResult {
	return HostStatResult{TypeName: "StatResult", Fields: []interface{}{
		mode, int64(0), int64(0), int64(1), int64(0), int64(0), size, 0.0, mtime, 0.0,
	}}
}

// NewDirStat builds the host-side answer for StatResult.dir_stat(mode,
// mtime), analogous to NewFileStat but with size=0.
func NewDirStat(mode int64, mtime float64) HostStatResult {
	return HostStatResult{TypeName: "StatResult", Fields: []interface{}{
		mode, int64(0), int64(0), int64(1), int64(0), int64(0), int64(0), 0.0, mtime, 0.0,
	}}
}

// HostException is a host→interpreter exception-shaped resume value: when a
// Snapshot.resume(value) answer matches this shape, the interpreter raises
// it in-sandbox rather than treating it as a plain return value.
type HostException struct {
	TypeName string
	Message  string
}

func (e HostException) Error() string { return e.TypeName + ": " + e.Message }
