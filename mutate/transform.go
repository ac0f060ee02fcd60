package mutate

import (
	"fmt"
	"strings"

	"codec/timeline"
)

const keyframeToleranceSec = 0.001

// TransformProperties carries the independently-nullable affine properties
// a single transformation may set. A nil pointer means either "omitted" or
// "explicitly cleared"; Clear disambiguates the two for an update against an
// existing keyframe, naming the struct fields ("Position", "Scale",
// "Rotation", "Opacity", "AnchorPoint") the caller's request set to null.
// Creating a brand-new keyframe never consults Clear — there's nothing on
// it to clear yet.
type TransformProperties struct {
	Position    *timeline.Point
	Scale       *float64
	Rotation    *float64
	Opacity     *float64
	AnchorPoint *timeline.Point
	Clear       map[string]bool
}

// Transformation targets one clip, optionally at an explicit timeline time
// (defaulting to the clip's start).
type Transformation struct {
	ClipID        string
	TimelineSec   *float64
	Properties    TransformProperties
	Interpolation timeline.Interpolation
}

// Transform applies a batch of keyframe upserts atomically.
func Transform(tl *timeline.Timeline, transformations []Transformation) (*timeline.Timeline, error) {
	if len(transformations) == 0 {
		return tl, fmt.Errorf("transform requires at least one transformation")
	}

	var errs []string
	for _, t := range transformations {
		c := tl.FindClipByID(t.ClipID)
		if c == nil {
			errs = append(errs, fmt.Sprintf("clip %q not found", t.ClipID))
			continue
		}
		relative := 0.0
		if t.TimelineSec != nil {
			relative = *t.TimelineSec - c.TimelineStartSec
		}
		if relative < -keyframeToleranceSec || relative > c.DurationSec+keyframeToleranceSec {
			errs = append(errs, fmt.Sprintf("clip %q: time is outside the clip's extent", t.ClipID))
		}
	}
	if len(errs) > 0 {
		return tl, fmt.Errorf("Operation failed. Please fix the following errors:\n- %s", strings.Join(errs, "\n- "))
	}

	next := tl.Clone()
	for _, t := range transformations {
		c := next.FindClipByID(t.ClipID)
		relative := 0.0
		if t.TimelineSec != nil {
			relative = *t.TimelineSec - c.TimelineStartSec
		}
		applyOne(c, relative, t.Properties, t.Interpolation)
	}
	return next, nil
}

func applyOne(c *timeline.Clip, relativeSec float64, props TransformProperties, interp timeline.Interpolation) {
	var existing *timeline.Keyframe
	for _, k := range c.Transformations {
		if abs(k.TimeSec-relativeSec) <= keyframeToleranceSec {
			existing = k
			break
		}
	}

	if existing != nil {
		if props.Position != nil {
			existing.Position = props.Position
		} else if props.Clear["Position"] {
			existing.Position = nil
		}
		if props.Scale != nil {
			existing.Scale = props.Scale
		} else if props.Clear["Scale"] {
			existing.Scale = nil
		}
		if props.Rotation != nil {
			existing.Rotation = props.Rotation
		} else if props.Clear["Rotation"] {
			existing.Rotation = nil
		}
		if props.Opacity != nil {
			existing.Opacity = props.Opacity
		} else if props.Clear["Opacity"] {
			existing.Opacity = nil
		}
		if props.AnchorPoint != nil {
			existing.AnchorPoint = props.AnchorPoint
		} else if props.Clear["AnchorPoint"] {
			existing.AnchorPoint = nil
		}
		if interp != "" {
			existing.Interpolation = interp
		}
		isBase := abs(existing.TimeSec) < keyframeToleranceSec
		if !existing.HasAnyProperty() && !isBase {
			removeKeyframe(c, existing)
		}
		c.SortTransformations()
		return
	}

	kf := &timeline.Keyframe{TimeSec: relativeSec, Interpolation: interp}
	if interp == "" {
		kf.Interpolation = timeline.InterpolationEasyEase
	}
	kf.Position = props.Position
	kf.Scale = props.Scale
	kf.Rotation = props.Rotation
	kf.Opacity = props.Opacity
	kf.AnchorPoint = props.AnchorPoint
	if !kf.HasAnyProperty() {
		return
	}
	c.Transformations = append(c.Transformations, kf)
	c.SortTransformations()
}

func removeKeyframe(c *timeline.Clip, target *timeline.Keyframe) {
	out := c.Transformations[:0]
	for _, k := range c.Transformations {
		if k != target {
			out = append(out, k)
		}
	}
	c.Transformations = out
}
