// Package netprophet binds the NetProphet 2.0 workflow to the stage chain.
//
// [Build] returns the eleven stages of a run in order. Every command line is
// built from the resolved configuration alone; the scientific programs
// (NetProphet 1.0, BART, FIRE, FIMO and the NetProphet 2.0 scripts) are
// black boxes whose exit status is the only thing inspected.
//
// Output layout under OUTPUT_DIR:
//
//	networks/                      np, npwa, bart, bartwa, npwa_bartwa and mn matrices
//	motif_inference/network_scores per-regulator score tables
//	motif_inference/network_bins   per-regulator quantile bins (FIRE input)
//	motif_inference/motifs_pfm     per-regulator motif matrices
//	motif_inference/motifs_score   per-regulator scan, extract and score files
//	tmp/
//
// Per-regulator tasks write only to paths named after their regulator, so
// the tasks of one batch never share an output file.
package netprophet
