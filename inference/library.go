package inference

import "runtime"

// SharedLibraryPath returns configured when set, otherwise the default
// location of the ONNX Runtime library for the current platform.
//
// Arguments:
//   - configured: The path from configuration, possibly empty.
//
// Returns:
//   - string: The library path.
func SharedLibraryPath(configured string) string {
	if configured != "" {
		return configured
	}
	return defaultLibraryPath(runtime.GOOS, runtime.GOARCH)
}

func defaultLibraryPath(goos, goarch string) string {
	switch goos {
	case "windows":
		return "third_party/onnxruntime.dll"
	case "darwin":
		return "third_party/libonnxruntime.dylib"
	}
	if goarch == "arm64" {
		return "third_party/onnxruntime_arm64.so"
	}
	return "third_party/onnxruntime.so"
}
