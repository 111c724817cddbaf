// Package darwin provides macOS platform support using CoreGraphics and Accessibility APIs.
// Input and permission checks require CGo (Objective-C frameworks); screen capture
// shells out to screencapture(1). When CGo is disabled, or on other operating
// systems, only the key-name tables compile and no provider is registered.
package darwin
