// Package render translates a timeline into an MLT XML project and invokes
// the external melt renderer, both for final output and for single-frame
// previews. XML is produced by marshaling tagged structs — never by string
// templates — so the document is always well-formed by construction.
package render

import (
	"encoding/xml"
	"fmt"
	"math"
	"path/filepath"

	"codec/timeline"
)

// Project is the root of an MLT XML document.
type Project struct {
	XMLName    xml.Name    `xml:"mlt"`
	Profile    Profile     `xml:"profile"`
	Producers  []Producer  `xml:"producer"`
	Playlists  []Playlist  `xml:"playlist"`
	Tractor    Tractor     `xml:"tractor"`
}

// Profile carries the sequence's frame rate and frame dimensions.
type Profile struct {
	Width         int    `xml:"width,attr"`
	Height        int    `xml:"height,attr"`
	FrameRateNum  int    `xml:"frame_rate_num,attr"`
	FrameRateDen  int    `xml:"frame_rate_den,attr"`
	Progressive   int    `xml:"progressive,attr"`
	SampleAspectNum int  `xml:"sample_aspect_num,attr"`
	SampleAspectDen int  `xml:"sample_aspect_den,attr"`
}

// Producer wraps one source file.
type Producer struct {
	ID         string     `xml:"id,attr"`
	Properties []Property `xml:"property"`
}

// Property is an MLT <property name="...">value</property> element.
type Property struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// PlaylistEntry is either a blank gap or a reference into a producer.
type PlaylistEntry struct {
	XMLName  xml.Name
	Producer string `xml:"producer,attr,omitempty"`
	In       string `xml:"in,attr,omitempty"`
	Out      string `xml:"out,attr,omitempty"`
	Length   string `xml:"length,attr,omitempty"`
}

// Playlist is one track's sequence of entries.
type Playlist struct {
	ID      string          `xml:"id,attr"`
	Entries []PlaylistEntry `xml:",any"`
}

// Tractor composites a multitrack plus any affine filters.
type Tractor struct {
	ID         string      `xml:"id,attr"`
	Multitrack Multitrack  `xml:"multitrack"`
	Filters    []Filter    `xml:"filter"`
}

// Multitrack lists the playlists composited together, lowest first.
type Multitrack struct {
	Tracks []Track `xml:"track"`
}

// Track references one playlist by ID.
type Track struct {
	Producer string `xml:"producer,attr"`
}

// Filter is an affine transform scoped to a track and an in/out frame range.
type Filter struct {
	In         string     `xml:"in,attr"`
	Out        string     `xml:"out,attr"`
	Properties []Property `xml:"property"`
}

// frameOf converts seconds to a frame number using round-half-to-even-free
// rounding, matching round(seconds * fps).
func frameOf(seconds, fps float64) int {
	return int(math.Round(seconds * fps))
}

// ntscFrameRate returns (num, den) for fps, snapping the two common NTSC
// drop-frame rates to their exact rational form.
func ntscFrameRate(fps float64) (int, int) {
	switch {
	case math.Abs(fps-23.976) < 0.01:
		return 24000, 1001
	case math.Abs(fps-29.97) < 0.01:
		return 30000, 1001
	case fps == math.Trunc(fps):
		return int(fps), 1
	default:
		return int(math.Round(fps * 1001)), 1001
	}
}

// BuildProject translates tl into an MLT Project, emitting one producer per
// distinct source path, numbered in first-seen order.
func BuildProject(tl *timeline.Timeline) *Project {
	seq := tl.GetSequenceProperties()
	fpsNum, fpsDen := ntscFrameRate(seq.FrameRate)

	p := &Project{
		Profile: Profile{
			Width: seq.Width, Height: seq.Height,
			FrameRateNum: fpsNum, FrameRateDen: fpsDen,
			Progressive: 1, SampleAspectNum: 1, SampleAspectDen: 1,
		},
	}

	producerID := map[string]string{}
	i := 0
	for _, c := range tl.Clips {
		if _, ok := producerID[c.SourcePath]; ok {
			continue
		}
		id := fmt.Sprintf("producer%d", i)
		i++
		producerID[c.SourcePath] = id
		abs, _ := filepath.Abs(c.SourcePath)
		p.Producers = append(p.Producers, Producer{
			ID: id,
			Properties: []Property{
				{Name: "resource", Value: abs},
			},
		})
	}

	var trackIndex int
	for _, key := range tl.DistinctTrackKeys() {
		clips := tl.ClipsOnTrack(key.Type, key.Number)
		playlistID := fmt.Sprintf("playlist_%s%d", key.Type, key.Number)

		pl := Playlist{ID: playlistID}
		lastEndFrames := 0
		for _, c := range clips {
			startFrames := frameOf(c.TimelineStartSec, seq.FrameRate)
			if gap := startFrames - lastEndFrames; gap > 0 {
				pl.Entries = append(pl.Entries, PlaylistEntry{
					XMLName: xml.Name{Local: "blank"},
					Length:  fmt.Sprintf("%d", gap),
				})
			}
			inFrames := frameOf(c.SourceInSec, seq.FrameRate)
			lengthFrames := frameOf(c.DurationSec, seq.FrameRate)
			pl.Entries = append(pl.Entries, PlaylistEntry{
				XMLName:  xml.Name{Local: "entry"},
				Producer: producerID[c.SourcePath],
				In:       fmt.Sprintf("%d", inFrames),
				Length:   fmt.Sprintf("%d", lengthFrames),
			})
			lastEndFrames = startFrames + lengthFrames

			if key.Type == timeline.TrackVideo && len(c.Transformations) > 0 {
				p.Tractor.Filters = append(p.Tractor.Filters, buildAffineFilter(c, trackIndex, seq))
			}
		}
		p.Playlists = append(p.Playlists, pl)
		p.Tractor.Multitrack.Tracks = append(p.Tractor.Multitrack.Tracks, Track{Producer: playlistID})
		trackIndex++
	}

	return p
}

// Marshal renders project to indented MLT XML.
func Marshal(p *Project) ([]byte, error) {
	out, err := xml.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
