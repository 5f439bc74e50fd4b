//go:build !darwin || server

// +build !darwin server

package main

// ToggleNativeFullscreen is a no-op off macOS and in headless server
// builds.
func ToggleNativeFullscreen() {}

// IsNativeFullscreen always returns false on this platform.
func IsNativeFullscreen() bool {
	return false
}
