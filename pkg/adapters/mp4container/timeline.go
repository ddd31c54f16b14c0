package mp4container

import (
	"sort"

	"github.com/Eyevinn/mp4ff/mp4"
)

// sample is one video sample in presentation time, in media timescale units.
type sample struct {
	pts  int64
	sync bool
}

// timeline orders samples by presentation time.
func timeline(samples []sample) []sample {
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].pts < samples[j].pts })
	return samples
}

// editShift returns the media time the first edit starts at. Players present
// that time as zero. Empty edits (media time -1) are skipped.
func editShift(trak *mp4.TrakBox) int64 {
	if trak.Edts == nil {
		return 0
	}
	for _, elst := range trak.Edts.Elst {
		for _, e := range elst.Entries {
			if e.MediaTime >= 0 {
				return e.MediaTime
			}
		}
	}
	return 0
}

// progressiveSamples reads sample timing from the moov sample tables.
func progressiveSamples(trak *mp4.TrakBox) ([]sample, error) {
	if trak.Mdia == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return nil, ErrNoSampleTable
	}
	stbl := trak.Mdia.Minf.Stbl
	if stbl.Stsz == nil || stbl.Stts == nil {
		return nil, ErrNoSampleTable
	}

	syncSamples := make(map[uint32]bool)
	if stbl.Stss != nil {
		for _, nr := range stbl.Stss.SampleNumber {
			syncSamples[nr] = true
		}
	}
	allSync := stbl.Stss == nil

	shift := editShift(trak)
	count := stbl.Stsz.SampleNumber
	samples := make([]sample, 0, count)
	for nr := uint32(1); nr <= count; nr++ {
		decodeTime, _ := stbl.Stts.GetDecodeTime(nr)
		pts := int64(decodeTime)
		if stbl.Ctts != nil {
			pts += int64(stbl.Ctts.GetCompositionTimeOffset(nr))
		}
		samples = append(samples, sample{
			pts:  pts - shift,
			sync: allSync || syncSamples[nr],
		})
	}
	return timeline(samples), nil
}

// fragmentedSamples reads sample timing from every moof of the track.
func fragmentedSamples(f *mp4.File, trackID uint32, shift int64) ([]sample, error) {
	var trex *mp4.TrexBox
	if f.Init != nil && f.Init.Moov != nil && f.Init.Moov.Mvex != nil {
		for _, t := range f.Init.Moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	var samples []sample
	for _, seg := range f.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			// GetFullSamples covers the first traf only; single-track
			// fragments are the norm for video.
			if len(frag.Moof.Trafs) == 0 || frag.Moof.Trafs[0].Tfhd.TrackID != trackID {
				continue
			}
			full, err := frag.GetFullSamples(trex)
			if err != nil {
				return nil, err
			}
			for _, s := range full {
				samples = append(samples, sample{
					pts:  int64(s.DecodeTime) + int64(s.CompositionTimeOffset) - shift,
					sync: !mp4.DecodeSampleFlags(s.Flags).SampleIsNonSync,
				})
			}
		}
	}
	return timeline(samples), nil
}
