package model

// ArrowHead is the glyph drawn at a line end.
type ArrowHead string

const (
	ArrowNone                   ArrowHead = "Line"
	Arrow                       ArrowHead = "Arrow"
	ArrowTBar                   ArrowHead = "TBar"
	ArrowReceptor               ArrowHead = "Receptor"
	ArrowNecessaryStimulation   ArrowHead = "mim-necessary-stimulation"
	ArrowBinding                ArrowHead = "mim-binding"
	ArrowConversion             ArrowHead = "mim-conversion"
	ArrowStimulation            ArrowHead = "mim-stimulation"
	ArrowModification           ArrowHead = "mim-modification"
	ArrowCatalysis              ArrowHead = "mim-catalysis"
	ArrowInhibition             ArrowHead = "mim-inhibition"
	ArrowCleavage               ArrowHead = "mim-cleavage"
	ArrowCovalentBond           ArrowHead = "mim-covalent-bond"
	ArrowBranchingLeft          ArrowHead = "mim-branching-left"
	ArrowBranchingRight         ArrowHead = "mim-branching-right"
	ArrowTranscriptionTranslate ArrowHead = "mim-transcription-translation"
	ArrowGap                    ArrowHead = "mim-gap"
)

// GapTable maps arrowheads to the length the stroke stops short of the
// endpoint. Missing kinds have no gap.
type GapTable map[ArrowHead]float64

// DefaultGaps returns a fresh copy of the built-in gap table.
func DefaultGaps() GapTable {
	return GapTable{
		ArrowNone:                   0,
		ArrowBranchingLeft:          0,
		ArrowBranchingRight:         0,
		ArrowCovalentBond:           0,
		ArrowTBar:                   6,
		ArrowInhibition:             6,
		Arrow:                       8,
		ArrowReceptor:               8,
		ArrowConversion:             8,
		ArrowStimulation:            8,
		ArrowModification:           8,
		ArrowBinding:                8,
		ArrowTranscriptionTranslate: 8,
		ArrowCatalysis:              10,
		ArrowGap:                    10,
		ArrowNecessaryStimulation:   12,
		ArrowCleavage:               12,
	}
}

// Gap returns the gap for a, or 0 when a is unknown or empty.
func (g GapTable) Gap(a ArrowHead) float64 {
	return g[a]
}

// With returns a copy of g with overrides applied.
func (g GapTable) With(overrides map[string]float64) GapTable {
	out := make(GapTable, len(g)+len(overrides))
	for k, v := range g {
		out[k] = v
	}
	for k, v := range overrides {
		out[ArrowHead(k)] = v
	}
	return out
}
