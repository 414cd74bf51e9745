// Package detection finds boxes in images and measures their sizes.
//
// DetectRectangles traces edge contours and keeps those whose length is close
// to the perimeter of their bounding box. MeasureBoxes runs that detector over
// an image at each configured scaling factor and reports the distinct box
// sizes it saw, in source pixels, as calibration samples.
//
// A typical flow feeds the result straight into the calibrator:
//
//	img, _ := cache.Load("form.png")
//	res, err := detection.MeasureBoxes(img, detection.MeasureOptionsFrom(p))
//	if err != nil {
//		return err
//	}
//	_, err = calibrate.Calibrate(p, res.Samples, calibrate.DefaultOptions())
//
// # Limitations
//
// Only axis-aligned boxes are detected. Rounded corners and broken outlines
// lower the rectangularity score; dilation helps with the latter.
package detection
