package pattern

import "github.com/sergev/slacksweep/sector"

// ScanSector sweeps one pattern sector against every disk sector currently
// held in disk (a buffer of some multiple of sector.Size bytes), updating
// *score to the maximum bucketed score observed. If *score is already
// sector.MaxScore, the sweep is skipped entirely; an exact match needs no
// further evidence.
func ScanSector(disk []byte, patternSector []byte, score *byte) {
	if *score == sector.MaxScore {
		return
	}
	best := int(*score)
	for d := 0; d+sector.Size <= len(disk); d += sector.Size {
		match := sector.Compare(disk[d:d+sector.Size], patternSector)
		bucket := sector.Score(match)
		if bucket > best {
			best = bucket
			if best == sector.MaxScore {
				break
			}
		}
	}
	*score = byte(best)
}
