package viewport

// WheelScale converts a vertical scroll delta into a zoom multiplier for
// AnchorZoom. Scrolling down (positive delta) zooms out. Deltas of 100 or
// more produce a non-positive multiplier, which AnchorZoom ignores.
func WheelScale(scrollDeltaY float64) float64 {
	return 1 - scrollDeltaY/100
}
