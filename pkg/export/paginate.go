package export

// ImageHeight returns the placed height of a pixelWidth x pixelHeight image
// scaled to widthMM, preserving the aspect ratio.
func ImageHeight(pixelWidth, pixelHeight int, widthMM float64) float64 {
	if pixelWidth <= 0 {
		return 0
	}
	return float64(pixelHeight) * widthMM / float64(pixelWidth)
}

// PageOffsets returns the vertical offset of the image on each page. Page
// one shows the image at 0; while the remaining height is non-negative
// another page is added with the image shifted up by one more page height.
// The result has floor(imageHeight/pageHeight)+1 entries, so an image that
// is an exact multiple of the page height ends with a nearly blank page.
func PageOffsets(imageHeight, pageHeight float64) []float64 {
	offsets := []float64{0}
	if pageHeight <= 0 {
		return offsets
	}

	left := imageHeight - pageHeight
	for left >= 0 {
		offsets = append(offsets, left-imageHeight)
		left -= pageHeight
	}
	return offsets
}
