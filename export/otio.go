// Package export emits exchange-format timeline files (OTIO JSON and
// legacy FCP7 XML) with optional media consolidation. No Go OTIO binding
// exists in the wider ecosystem, so the OTIO side is hand-built JSON
// mirroring the schema's own field names; the FCP7 side uses struct-tagged
// encoding/xml, matching the struct-first philosophy used throughout the
// rest of this module's XML emitters.
package export

import (
	"encoding/json"
	"fmt"

	"codec/timeline"
)

// otioKeyframe is the serialized form of a timeline.Keyframe under a clip's
// codec_transforms metadata key. Fields are omitted, not null, when unset.
type otioKeyframe struct {
	TimeSec       float64    `json:"time_sec"`
	Position      []float64  `json:"position,omitempty"`
	Scale         *float64   `json:"scale,omitempty"`
	Rotation      *float64   `json:"rotation,omitempty"`
	Opacity       *float64   `json:"opacity,omitempty"`
	AnchorPoint   []float64  `json:"anchor_point,omitempty"`
	Interpolation string     `json:"interpolation,omitempty"`
}

type otioRange struct {
	StartTimeSec float64 `json:"start_time_sec"`
	DurationSec  float64 `json:"duration_sec"`
}

type otioClip struct {
	SchemaType     string                 `json:"OTIO_SCHEMA"`
	Name           string                 `json:"name"`
	SourceRange    otioRange              `json:"source_range"`
	TargetURL      string                 `json:"target_url"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

type otioGap struct {
	SchemaType  string    `json:"OTIO_SCHEMA"`
	SourceRange otioRange `json:"source_range"`
}

type otioTrack struct {
	SchemaType string        `json:"OTIO_SCHEMA"`
	Name       string        `json:"name"`
	Kind       string        `json:"kind"`
	Children   []interface{} `json:"children"`
}

type otioTimeline struct {
	SchemaType string                 `json:"OTIO_SCHEMA"`
	Name       string                 `json:"name"`
	Tracks     []otioTrack            `json:"tracks"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

const gapTolerance = 0.001

// BuildOTIOTimeline converts tl into an OTIO-shaped document. resolveURL
// maps a clip's absolute source path to the target_url that should be
// written (relative to the export package, or rewritten to the
// consolidated media/ directory).
func BuildOTIOTimeline(tl *timeline.Timeline, name string, resolveURL func(sourcePath string) string) *otioTimeline {
	seq := tl.GetSequenceProperties()
	doc := &otioTimeline{
		SchemaType: "Timeline.1",
		Name:       name,
		Metadata: map[string]interface{}{
			"fcp_xml": map[string]interface{}{
				"rate": map[string]interface{}{
					"timebase": seq.FrameRate,
					"ntsc":     isNTSC(seq.FrameRate),
				},
			},
		},
	}

	for _, key := range tl.DistinctTrackKeys() {
		kind := "Video"
		if key.Type == timeline.TrackAudio {
			kind = "Audio"
		}
		track := otioTrack{
			SchemaType: "Track.1",
			Name:       trackRefLabel(key),
			Kind:       kind,
		}

		lastEnd := 0.0
		for _, c := range tl.ClipsOnTrack(key.Type, key.Number) {
			if gap := c.TimelineStartSec - lastEnd; gap > gapTolerance {
				track.Children = append(track.Children, otioGap{
					SchemaType:  "Gap.1",
					SourceRange: otioRange{DurationSec: gap},
				})
			}
			track.Children = append(track.Children, buildOTIOClip(c, resolveURL))
			lastEnd = c.TimelineEndSec()
		}
		doc.Tracks = append(doc.Tracks, track)
	}

	return doc
}

func buildOTIOClip(c *timeline.Clip, resolveURL func(string) string) otioClip {
	clip := otioClip{
		SchemaType:  "Clip.2",
		Name:        c.ClipID,
		SourceRange: otioRange{StartTimeSec: c.SourceInSec, DurationSec: c.DurationSec},
		TargetURL:   resolveURL(c.SourcePath),
	}
	if len(c.Transformations) > 0 {
		var kfs []otioKeyframe
		for _, k := range c.Transformations {
			kf := otioKeyframe{TimeSec: k.TimeSec, Interpolation: string(k.Interpolation)}
			if k.Position != nil {
				kf.Position = []float64{k.Position.X, k.Position.Y}
			}
			if k.AnchorPoint != nil {
				kf.AnchorPoint = []float64{k.AnchorPoint.X, k.AnchorPoint.Y}
			}
			kf.Scale = k.Scale
			kf.Rotation = k.Rotation
			kf.Opacity = k.Opacity
			kfs = append(kfs, kf)
		}
		clip.Metadata = map[string]interface{}{"codec_transforms": kfs}
	}
	return clip
}

func trackRefLabel(k timeline.TrackKey) string {
	prefix := "V"
	if k.Type == timeline.TrackAudio {
		prefix = "A"
	}
	return fmt.Sprintf("%s%d", prefix, k.Number)
}

func isNTSC(fps float64) bool {
	return absF(fps-23.976) < 0.01 || absF(fps-29.97) < 0.01
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// WriteOTIO marshals doc as indented JSON.
func WriteOTIO(doc *otioTimeline) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
