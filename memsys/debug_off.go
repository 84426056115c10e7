//go:build !nrtdebug

package memsys

// DebugEnabled is set by the nrtdebug build tag. When false, debug events and
// refcount assertions compile away.
const DebugEnabled = false
