package platform

// RequiresMainThread reports whether input APIs must be called from the
// process main thread. HIToolbox keyboard-layout lookups assert the main
// dispatch queue on macOS.
const RequiresMainThread = true
