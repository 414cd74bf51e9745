// Package imaging loads sample images and prepares them for box detection.
//
// Images are decoded once through ImageCache and reused across measurement
// passes. Scale resizes an image by one of the configured scaling factors,
// Binarize reduces it to black outlines on white, and Dilate thickens those
// outlines so broken box edges join up before contour tracing.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The transform functions never modify
// their input and may run concurrently.
package imaging
