package graphics

// FlipRows reverses the row order of an image in place. GL reads the
// framebuffer bottom-up; callers of ReadPixels expect top-down rows.
func FlipRows(pixels []byte, stride int) {
	if stride <= 0 {
		return
	}
	tmp := make([]byte, stride)
	for top, bottom := 0, len(pixels)/stride-1; top < bottom; top, bottom = top+1, bottom-1 {
		t := pixels[top*stride : (top+1)*stride]
		b := pixels[bottom*stride : (bottom+1)*stride]
		copy(tmp, t)
		copy(t, b)
		copy(b, tmp)
	}
}
