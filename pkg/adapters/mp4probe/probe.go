// Package mp4probe reads video track metadata from MP4 and MOV files.
package mp4probe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/framecast/pkg/ports"
)

// ErrNoVideoTrack is returned when the file has no video track.
var ErrNoVideoTrack = errors.New("mp4probe: no video track found")

// Inspector implements ports.VideoInspector with mp4ff.
type Inspector struct{}

// New creates an Inspector.
func New() *Inspector {
	return &Inspector{}
}

// Supports reports whether path has an ISO-BMFF extension.
func Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v", ".mov":
		return true
	}
	return false
}

// Inspect opens path and reads its video track.
func (i *Inspector) Inspect(path string) (ports.VideoInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ports.VideoInfo{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return i.InspectReader(f)
}

// InspectReader reads progressive and fragmented files alike.
func (i *Inspector) InspectReader(r io.ReadSeeker) (ports.VideoInfo, error) {
	mp4File, err := mp4.DecodeFile(r)
	if err != nil {
		return ports.VideoInfo{}, fmt.Errorf("decode mp4: %w", err)
	}

	moov := mp4File.Moov
	if mp4File.IsFragmented() && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return ports.VideoInfo{}, fmt.Errorf("no moov box found")
	}

	trak := videoTrak(moov)
	if trak == nil {
		return ports.VideoInfo{}, ErrNoVideoTrack
	}

	info := ports.VideoInfo{
		Width:  int(trak.Tkhd.Width >> 16),
		Height: int(trak.Tkhd.Height >> 16),
	}
	stbl := trak.Mdia.Minf.Stbl
	if stbl != nil && stbl.Stsd != nil {
		for _, child := range stbl.Stsd.Children {
			if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
				info.Codec = vse.Type()
				if info.Width == 0 || info.Height == 0 {
					info.Width, info.Height = int(vse.Width), int(vse.Height)
				}
				break
			}
		}
	}

	timescale := uint32(1000)
	if trak.Mdia.Mdhd != nil && trak.Mdia.Mdhd.Timescale != 0 {
		timescale = trak.Mdia.Mdhd.Timescale
	}

	if mp4File.IsFragmented() {
		count, dur, err := fragmentSamples(mp4File, moov, trak.Tkhd.TrackID)
		if err != nil {
			return ports.VideoInfo{}, err
		}
		info.FrameCount = count
		info.DurationSec = float64(dur) / float64(timescale)
		return info, nil
	}

	if stbl != nil && stbl.Stsz != nil {
		info.FrameCount = int(stbl.Stsz.SampleNumber)
	}
	if trak.Mdia.Mdhd != nil {
		info.DurationSec = float64(trak.Mdia.Mdhd.Duration) / float64(timescale)
	}
	return info, nil
}

func videoTrak(moov *mp4.MoovBox) *mp4.TrakBox {
	for _, trak := range moov.Traks {
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" && trak.Mdia.Minf != nil {
			return trak
		}
	}
	return nil
}

// fragmentSamples counts the samples of trackID across all fragments and
// sums their durations.
func fragmentSamples(f *mp4.File, moov *mp4.MoovBox, trackID uint32) (int, uint64, error) {
	var trex *mp4.TrexBox
	if moov.Mvex != nil {
		for _, t := range moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	count := 0
	var dur uint64
	for _, seg := range f.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil || !hasTrack(frag.Moof, trackID) {
				continue
			}
			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return 0, 0, fmt.Errorf("get samples: %w", err)
			}
			count += len(samples)
			for _, s := range samples {
				dur += uint64(s.Dur)
			}
		}
	}
	return count, dur, nil
}

func hasTrack(moof *mp4.MoofBox, trackID uint32) bool {
	for _, traf := range moof.Trafs {
		if traf.Tfhd != nil && traf.Tfhd.TrackID == trackID {
			return true
		}
	}
	return false
}

var _ ports.VideoInspector = (*Inspector)(nil)
