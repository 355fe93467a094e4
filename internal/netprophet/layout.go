package netprophet

import (
	"path/filepath"

	"github.com/ygidtu/NetProphet-2.0/internal/config"
)

// Layout names every file and directory a run produces under OUTPUT_DIR.
type Layout struct {
	root string
}

// NewLayout returns the layout rooted at cfg.OutputDir.
func NewLayout(cfg *config.Resolved) Layout {
	return Layout{root: cfg.OutputDir}
}

func (l Layout) Networks() string       { return filepath.Join(l.root, "networks") }
func (l Layout) MotifInference() string { return filepath.Join(l.root, "motif_inference") }
func (l Layout) NetworkScores() string  { return filepath.Join(l.MotifInference(), "network_scores") }
func (l Layout) NetworkBins() string    { return filepath.Join(l.MotifInference(), "network_bins") }
func (l Layout) MotifsPFM() string      { return filepath.Join(l.MotifInference(), "motifs_pfm") }
func (l Layout) MotifsScore() string    { return filepath.Join(l.MotifInference(), "motifs_score") }
func (l Layout) Tmp() string            { return filepath.Join(l.root, "tmp") }

// Dirs returns the directories created by the first stage.
func (l Layout) Dirs() []string {
	return []string{
		l.Networks(),
		l.NetworkScores(),
		l.NetworkBins(),
		l.MotifsPFM(),
		l.MotifsScore(),
		l.Tmp(),
	}
}

// Network returns the path of an intermediate network matrix, e.g.
// Network("npwa") is networks/npwa.adjmtr.
func (l Layout) Network(name string) string {
	return filepath.Join(l.Networks(), name+".adjmtr")
}

// Bins is the FIRE input for regulator reg.
func (l Layout) Bins(reg string) string {
	return filepath.Join(l.NetworkBins(), reg)
}

// FireMotifs is the significant-motif report FIRE writes for reg. FIRE
// places its output next to the expression file it was given.
func (l Layout) FireMotifs(reg string) string {
	return filepath.Join(l.NetworkBins(), reg+"_FIRE", "DNA", reg+".signif.motifs.rep")
}

// PFM is the motif matrix inferred for reg.
func (l Layout) PFM(reg string) string {
	return filepath.Join(l.MotifsPFM(), reg)
}

// Scan, Sites and Score are the outputs of the three motif scoring batches.
func (l Layout) Scan(reg string) string  { return filepath.Join(l.MotifsScore(), reg+".fimo") }
func (l Layout) Sites(reg string) string { return filepath.Join(l.MotifsScore(), reg+".sites") }
func (l Layout) Score(reg string) string { return filepath.Join(l.MotifsScore(), reg+".score") }
