package preview

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	xdraw "golang.org/x/image/draw"

	"codec/timeline"
)

// Layout constants mirroring the original visualization's fixed geometry.
const (
	Padding      = 40
	HeaderHeight = 50
)

var (
	colorBackground = color.Black
	colorHeaderText = color.White
	colorGridLabel  = color.RGBA{0xCC, 0xCC, 0xCC, 0xFF}
	colorGridMajor  = color.RGBA{0x55, 0x55, 0x55, 0xFF}
	colorGridMinor  = color.RGBA{0x33, 0x33, 0x33, 0xFF}
	colorAnchor     = color.RGBA{0xFF, 0x00, 0xFF, 0xFF}
)

// drawText draws s at (x, y) in c using golang.org/x/image's fixed-width
// bitmap font (basicfont.Face7x13); there is no system font dependency to manage, matching the
// original's font-fallback path when no TTF is available.
func drawText(img draw.Image, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func drawLine(img draw.Image, x0, y0, x1, y1 int, c color.Color) {
	dx, dy := x1-x0, y1-y0
	steps := dx
	if abs(dy) > abs(dx) {
		steps = dy
	}
	if steps == 0 {
		img.Set(x0, y0, c)
		return
	}
	if steps < 0 {
		steps = -steps
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := x0 + int(float64(dx)*t)
		y := y0 + int(float64(dy)*t)
		img.Set(x, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// PadToCanvas pads img by Padding pixels of background on every side,
// matching apply_overlays' canvas preparation.
func PadToCanvas(img image.Image) draw.Image {
	b := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx()+2*Padding, b.Dy()+2*Padding))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(Padding, Padding, Padding+b.Dx(), Padding+b.Dy()), img, b.Min, draw.Src)
	return canvas
}

// DrawCoordinateGrid draws a normalized 0.0-1.0 grid with margin labels onto
// a padded canvas of the given content dimensions.
func DrawCoordinateGrid(canvas draw.Image, contentWidth, contentHeight int) {
	for i := 0; i <= 10; i++ {
		frac := float64(i) / 10.0
		x := Padding + int(frac*float64(contentWidth))
		col := colorGridMinor
		if i%5 == 0 {
			col = colorGridMajor
		}
		drawLine(canvas, x, Padding, x, Padding+contentHeight, col)

		y := Padding + int(frac*float64(contentHeight))
		drawLine(canvas, Padding, y, Padding+contentWidth, y, col)
	}
	for _, frac := range []float64{0, 0.25, 0.5, 0.75, 1.0} {
		label := trimFloat(frac)
		x := Padding + int(frac*float64(contentWidth))
		drawText(canvas, x, Padding-5, label, colorGridLabel)
		y := Padding + int(frac*float64(contentHeight))
		drawText(canvas, 2, y, label, colorGridLabel)
	}
}

func trimFloat(f float64) string {
	switch f {
	case 0:
		return "0.0"
	case 0.25:
		return "0.25"
	case 0.5:
		return "0.5"
	case 0.75:
		return "0.75"
	case 1.0:
		return "1.0"
	default:
		return ""
	}
}

// InterpolatedPosition linearly interpolates the clip's position keyframes
// at relativeSec. This is a simplified linear interpolation used only for
// overlay visualization; it is independent of the renderer's authoritative
// MLT-driven interpolation.
func InterpolatedPosition(c *timeline.Clip, relativeSec float64) timeline.Point {
	var before, after *timeline.Keyframe
	for _, k := range c.Transformations {
		if k.Position == nil {
			continue
		}
		if k.TimeSec <= relativeSec && (before == nil || k.TimeSec > before.TimeSec) {
			before = k
		}
		if k.TimeSec >= relativeSec && (after == nil || k.TimeSec < after.TimeSec) {
			after = k
		}
	}
	if before == nil && after == nil {
		return timeline.Point{X: 0.5, Y: 0.5}
	}
	if before == nil {
		return *after.Position
	}
	if after == nil || before == after {
		return *before.Position
	}
	span := after.TimeSec - before.TimeSec
	if span <= 0 {
		return *before.Position
	}
	t := (relativeSec - before.TimeSec) / span
	return timeline.Point{
		X: before.Position.X + (after.Position.X-before.Position.X)*t,
		Y: before.Position.Y + (after.Position.Y-before.Position.Y)*t,
	}
}

// DrawAnchorPoint draws a cross marker at the clip's interpolated position
// at relativeSec.
func DrawAnchorPoint(canvas draw.Image, c *timeline.Clip, relativeSec float64, contentWidth, contentHeight int) {
	pos := InterpolatedPosition(c, relativeSec)
	drawCross(canvas, Padding+int(pos.X*float64(contentWidth)), Padding+int(pos.Y*float64(contentHeight)))
}

// DrawDefaultAnchorPoint draws a center-frame cross for contexts with no
// timeline (e.g. view_video).
func DrawDefaultAnchorPoint(canvas draw.Image, contentWidth, contentHeight int) {
	drawCross(canvas, Padding+contentWidth/2, Padding+contentHeight/2)
}

func drawCross(canvas draw.Image, x, y int) {
	const r = 8
	drawLine(canvas, x-r, y, x+r, y, colorAnchor)
	drawLine(canvas, x, y-r, x, y+r, colorAnchor)
}

// ComposeSideBySide lays left and right images side by side beneath a
// labeled header row, matching compose_side_by_side's geometry.
func ComposeSideBySide(left image.Image, leftLabel string, right image.Image, rightLabel string) image.Image {
	lb, rb := left.Bounds(), right.Bounds()
	w, h := lb.Dx(), lb.Dy()
	if rb.Dx() != w || rb.Dy() != h {
		resized := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.NearestNeighbor.Scale(resized, resized.Bounds(), right, rb, xdraw.Over, nil)
		right = resized
	}

	totalW := w*2 + Padding*3
	totalH := h + HeaderHeight + Padding
	canvas := image.NewRGBA(image.Rect(0, 0, totalW, totalH))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	drawText(canvas, Padding, HeaderHeight/2, leftLabel, colorHeaderText)
	drawText(canvas, Padding*2+w, HeaderHeight/2, rightLabel, colorHeaderText)

	draw.Draw(canvas, image.Rect(Padding, HeaderHeight, Padding+w, HeaderHeight+h), left, lb.Min, draw.Src)
	draw.Draw(canvas, image.Rect(Padding*2+w, HeaderHeight, Padding*2+2*w, HeaderHeight+h), right, image.Point{}, draw.Src)

	return canvas
}
