//go:build !darwin

package platform

// RequiresMainThread reports whether input APIs must be called from the
// process main thread.
const RequiresMainThread = false
