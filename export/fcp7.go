package export

import (
	"encoding/xml"
	"fmt"
	"path/filepath"

	"codec/timeline"
)

// The following structs are tagged for encoding/xml and describe the legacy
// FCP7 "xmeml" interchange schema — distinct from (and structurally
// simpler than) the modern FCPXML resource/library/project schema, but
// built with the same struct-first philosophy: no string templates.

type xmeml struct {
	XMLName xml.Name    `xml:"xmeml"`
	Version string      `xml:"version,attr"`
	Sequence xmemlSequence `xml:"sequence"`
}

type xmemlSequence struct {
	Name   string     `xml:"name"`
	Rate   xmemlRate  `xml:"rate"`
	Media  xmemlMedia `xml:"media"`
}

type xmemlRate struct {
	Timebase int  `xml:"timebase"`
	NTSC     bool `xml:"ntsc"`
}

type xmemlMedia struct {
	Video xmemlTrackGroup `xml:"video"`
	Audio xmemlTrackGroup `xml:"audio"`
}

type xmemlTrackGroup struct {
	Tracks []xmemlTrack `xml:"track"`
}

type xmemlTrack struct {
	ClipItems []xmemlClipItem `xml:"clipitem"`
}

type xmemlClipItem struct {
	Name     string    `xml:"name,attr"`
	Start    int       `xml:"start"`
	End      int       `xml:"end"`
	In       int       `xml:"in"`
	Out      int       `xml:"out"`
	File     xmemlFile `xml:"file"`
}

type xmemlFile struct {
	PathURL string `xml:"pathurl"`
}

// BuildFCP7XML converts tl into a legacy FCP7 xmeml document. resolveURL has
// the same contract as in BuildOTIOTimeline.
func BuildFCP7XML(tl *timeline.Timeline, name string, resolveURL func(sourcePath string) string) []byte {
	seq := tl.GetSequenceProperties()
	doc := xmeml{
		Version: "5",
		Sequence: xmemlSequence{
			Name: name,
			Rate: xmemlRate{Timebase: int(seq.FrameRate), NTSC: isNTSC(seq.FrameRate)},
		},
	}

	for _, key := range tl.DistinctTrackKeys() {
		track := xmemlTrack{}
		for _, c := range tl.ClipsOnTrack(key.Type, key.Number) {
			startFrame := int(c.TimelineStartSec * seq.FrameRate)
			endFrame := int(c.TimelineEndSec() * seq.FrameRate)
			inFrame := int(c.SourceInSec * seq.FrameRate)
			outFrame := int(c.SourceOutSec * seq.FrameRate)
			track.ClipItems = append(track.ClipItems, xmemlClipItem{
				Name: c.ClipID, Start: startFrame, End: endFrame,
				In: inFrame, Out: outFrame,
				File: xmemlFile{PathURL: resolveURL(c.SourcePath)},
			})
		}
		if key.Type == timeline.TrackVideo {
			doc.Sequence.Media.Video.Tracks = append(doc.Sequence.Media.Video.Tracks, track)
		} else {
			doc.Sequence.Media.Audio.Tracks = append(doc.Sequence.Media.Audio.Tracks, track)
		}
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return []byte(fmt.Sprintf("<!-- error marshaling xmeml: %v -->", err))
	}
	return append([]byte(xml.Header), out...)
}

func baseNameURL(path string) string {
	return "media/" + filepath.Base(path)
}
