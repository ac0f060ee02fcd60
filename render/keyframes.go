package render

import (
	"fmt"
	"strings"

	"codec/timeline"
)

// interpMap maps the model's interpolation identifiers onto MLT's keyframe
// interpolation keywords.
var interpMap = map[timeline.Interpolation]string{
	timeline.InterpolationEasyEase: "smooth",
	timeline.InterpolationLinear:   "linear",
	timeline.InterpolationHold:    "discrete",
}

func interpOf(i timeline.Interpolation) string {
	if s, ok := interpMap[i]; ok {
		return s
	}
	return "linear"
}

// masterKeyframe is one fully-resolved sample: every property present, each
// either explicit at this time or carried forward from the previous sample.
type masterKeyframe struct {
	timeSec       float64
	position      timeline.Point
	scale         float64
	rotation      float64
	opacity       float64
	anchorPoint   timeline.Point
	interpolation timeline.Interpolation
}

// buildMasterKeyframes returns the union of every distinct TimeSec in
// c.Transformations, each record carrying forward the previous value of any
// property not explicitly overridden at that time. Defaults mirror the
// clip's natural position: centered, unscaled, unrotated, opaque, anchored
// at its own center — all normalized, per the normalized-throughout
// coordinate contract.
func buildMasterKeyframes(c *timeline.Clip) []masterKeyframe {
	cur := masterKeyframe{
		position:      timeline.Point{X: 0.5, Y: 0.5},
		scale:         1.0,
		rotation:      0.0,
		opacity:       100.0,
		anchorPoint:   timeline.Point{X: 0.5, Y: 0.5},
		interpolation: timeline.InterpolationEasyEase,
	}

	out := make([]masterKeyframe, 0, len(c.Transformations))
	for _, k := range c.Transformations {
		if k.Position != nil {
			cur.position = *k.Position
		}
		if k.Scale != nil {
			cur.scale = *k.Scale
		}
		if k.Rotation != nil {
			cur.rotation = *k.Rotation
		}
		if k.Opacity != nil {
			cur.opacity = *k.Opacity
		}
		if k.AnchorPoint != nil {
			cur.anchorPoint = *k.AnchorPoint
		}
		if k.Interpolation != "" {
			cur.interpolation = k.Interpolation
		}
		cur.timeSec = k.TimeSec
		snapshot := cur
		out = append(out, snapshot)
	}
	return out
}

// buildAffineFilter builds the affine transition filter for one keyframed
// video clip, scoped to its in/out frame range and target track index.
func buildAffineFilter(c *timeline.Clip, trackIndex int, seq timeline.SequenceProperties) Filter {
	master := buildMasterKeyframes(c)
	inFrames := frameOf(c.TimelineStartSec, seq.FrameRate)
	outFrames := frameOf(c.TimelineEndSec(), seq.FrameRate) - 1

	return Filter{
		In:  fmt.Sprintf("%d", inFrames),
		Out: fmt.Sprintf("%d", outFrames),
		Properties: []Property{
			{Name: "mlt_service", Value: "affine"},
			{Name: "track", Value: fmt.Sprintf("%d", trackIndex)},
			{Name: "transition.rect", Value: buildRectKeyframeString(master, c, seq)},
			{Name: "transition.fix_rotate_z", Value: buildGenericKeyframeString(master, seq, func(m masterKeyframe) float64 { return m.rotation })},
			{Name: "transition.b_alpha", Value: "1"},
		},
	}
}

// buildRectKeyframeString is the only place in the render path where
// normalized position/anchor values are converted to pixels; the preview
// overlays in preview/visuals.go convert separately when drawing.
func buildRectKeyframeString(master []masterKeyframe, c *timeline.Clip, seq timeline.SequenceProperties) string {
	var parts []string
	for _, m := range master {
		frame := frameOf(m.timeSec, seq.FrameRate)
		w := float64(c.SourceWidth) * m.scale
		h := float64(c.SourceHeight) * m.scale
		posX := m.position.X * float64(seq.Width)
		posY := m.position.Y * float64(seq.Height)
		anchorX := m.anchorPoint.X * float64(c.SourceWidth) * m.scale
		anchorY := m.anchorPoint.Y * float64(c.SourceHeight) * m.scale
		x := posX - anchorX
		y := posY - anchorY
		parts = append(parts, fmt.Sprintf("%d=%.3f/%.3f:%.3fx%.3f:%.2f:%s",
			frame, x, y, w, h, m.opacity, interpOf(m.interpolation)))
	}
	return "[" + strings.Join(parts, ";") + "]"
}

// buildGenericKeyframeString formats a single scalar track (rotation) as an
// MLT keyframe string.
func buildGenericKeyframeString(master []masterKeyframe, seq timeline.SequenceProperties, get func(masterKeyframe) float64) string {
	var parts []string
	for _, m := range master {
		frame := frameOf(m.timeSec, seq.FrameRate)
		parts = append(parts, fmt.Sprintf("%d=%g:%s", frame, get(m), interpOf(m.interpolation)))
	}
	return "[" + strings.Join(parts, ";") + "]"
}
