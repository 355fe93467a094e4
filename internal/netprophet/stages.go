package netprophet

import (
	"os"
	"strconv"

	"github.com/ygidtu/NetProphet-2.0/internal/command"
	"github.com/ygidtu/NetProphet-2.0/internal/config"
	"github.com/ygidtu/NetProphet-2.0/internal/logging"
	"github.com/ygidtu/NetProphet-2.0/internal/matrix"
	"github.com/ygidtu/NetProphet-2.0/internal/stage"
	"github.com/ygidtu/NetProphet-2.0/internal/taskpool"
)

// Stage numbers of the NetProphet 2.0 chain.
const (
	StageMakeDirectories = iota + 1
	StageMapNP
	StageWeightedAverageNP
	StageMapBART
	StageWeightedAverageBART
	StageCombineNPBART
	StagePrepareMotifInference
	StageInferMotifs
	StageScoreMotifs
	StageBuildMotifNetwork
	StageAssembleFinalNetwork

	// StageCount is the number of stages K.
	StageCount = StageAssembleFinalNetwork
)

// similarDBDs is the number of most similar DNA-binding domains averaged
// over by the weighted average stages.
const similarDBDs = "50"

// Names returns the stage names indexed by stage number minus one.
func Names() []string {
	return []string{
		"make_directories",
		"map_np_network",
		"weighted_average_np_network",
		"map_bart_network",
		"weighted_average_bart_network",
		"combine_npwa_bartwa",
		"prepare_motif_inference",
		"infer_motifs",
		"score_motifs",
		"build_motif_network",
		"assemble_final_network",
	}
}

// builder holds what every stage body closes over.
type builder struct {
	cfg    *config.Resolved
	out    Layout
	pool   *taskpool.Pool
	logger *logging.Logger
}

// Build returns the eleven stages bound to cfg. Single-call stages run
// through runner; fan-out stages run through pool. A nil logger discards
// batch logs.
func Build(cfg *config.Resolved, runner command.Runner, pool *taskpool.Pool, logger *logging.Logger) []stage.Stage {
	if logger == nil {
		logger = logging.NopLogger()
	}
	b := &builder{cfg: cfg, out: NewLayout(cfg), pool: pool, logger: logger}

	bodies := []stage.Body{
		stage.Setup(b.out.Dirs()...),
		stage.Single(runner, b.mapNP()),
		stage.Single(runner, b.weightedAverage("np", "npwa")),
		stage.Single(runner, b.mapBART(), b.stripBART),
		stage.Single(runner, b.weightedAverage("bart", "bartwa")),
		stage.Single(runner, b.combineNPBART()),
		stage.Composite(
			stage.Single(runner, b.parseNetworkScores()),
			stage.Single(runner, b.parseQuantizedBins()),
		),
		b.fanOut(StageInferMotifs, stage.NewBatch("fire", b.perRegulator(b.inferMotif))),
		b.fanOut(StageScoreMotifs,
			stage.NewBatch("scan", b.perMotif(b.scanMotif)),
			stage.NewBatch("extract", b.perMotif(b.extractSites)),
			stage.NewBatch("score", b.perMotif(b.scoreMotif)),
		),
		stage.Single(runner, b.buildMotifNetwork()),
		stage.Single(runner, b.assembleFinalNetwork()),
	}

	names := Names()
	stages := make([]stage.Stage, len(bodies))
	for i, body := range bodies {
		stages[i] = stage.Stage{ID: i + 1, Name: names[i], Run: body}
	}
	return stages
}

func (b *builder) fanOut(id int, batches ...stage.Batch) stage.Body {
	log := b.logger.WithStage(id, Names()[id-1])
	return stage.FanOut(b.pool, log, batches...)
}

func (b *builder) script(elem ...string) string {
	return b.cfg.Script(elem...)
}

func (b *builder) mapNP() string {
	return command.Line(b.cfg.Tools.Rscript, b.script("NetProphet1", "netprophet1.r"),
		b.cfg.ExpressionData,
		b.cfg.SampleConditions,
		b.cfg.DEAdjMatrix,
		b.cfg.Genes,
		b.cfg.Regulators,
		b.out.Network("np"),
	)
}

func (b *builder) weightedAverage(in, out string) string {
	return command.Line(b.cfg.Tools.Python, b.script("CODE", "weighted_avg_similar_dbds.py"),
		"-n", b.out.Network(in),
		"-r", b.cfg.Regulators,
		"-a", similarDBDs,
		"-d", b.cfg.DBDPIDDir,
		"-t", "single_dbds",
		"-o", b.out.Network(out),
	)
}

func (b *builder) mapBART() string {
	return command.Line(b.cfg.Tools.Rscript, b.script("CODE", "build_bart_network.r"),
		b.cfg.ExpressionData,
		b.cfg.SampleConditions,
		b.cfg.Regulators,
		b.cfg.Genes,
		b.cfg.DEAdjMatrix,
		b.out.Network("bart"),
	)
}

// stripBART drops the row and column labels BART writes around its matrix.
func (b *builder) stripBART() error {
	return matrix.StripHeaderAndFirstColumn(b.out.Network("bart"))
}

func (b *builder) combineNPBART() string {
	return command.Line(b.cfg.Tools.Rscript, b.script("CODE", "quantile_combine_networks.r"),
		b.out.Network("npwa"),
		b.out.Network("bartwa"),
		b.out.Network("npwa_bartwa"),
	)
}

func (b *builder) parseNetworkScores() string {
	return command.Line(b.cfg.Tools.Python, b.script("CODE", "parse_network_scores.py"),
		"-a", b.out.Network("npwa_bartwa"),
		"-r", b.cfg.Regulators,
		"-t", b.cfg.Genes,
		"-o", b.out.NetworkScores(),
	)
}

func (b *builder) parseQuantizedBins() string {
	return command.Line(b.cfg.Tools.Python, b.script("CODE", "parse_quantized_bins.py"),
		"-n", strconv.Itoa(b.cfg.Tools.MotifBins),
		"-i", b.out.NetworkScores(),
		"-o", b.out.NetworkBins(),
	)
}

// inferMotif runs FIRE on the bins of reg and converts the significant
// motifs it reports into a PFM file. A regulator without significant
// motifs leaves no PFM behind.
func (b *builder) inferMotif(reg string) string {
	fire := command.Line(b.cfg.Tools.Perl, b.script("FIRE-1.1a", "fire.pl"),
		"--expfiles="+b.out.Bins(reg),
		"--exptype=discrete",
		"--fastafile_dna="+b.cfg.Promoters,
		"--k="+strconv.Itoa(b.cfg.Tools.FireK),
		"--jn=20",
		"--jn_t=16",
		"--nodups=1",
		"--dorna=0",
		"--dodnarna=0",
	)
	convert := command.Line(b.cfg.Tools.Python, b.script("CODE", "prepare_for_motif_scanning.py"),
		"-i", b.out.FireMotifs(reg),
		"-o", b.out.PFM(reg),
	)
	return fire + " && " + convert
}

func (b *builder) scanMotif(reg string) string {
	return command.Line(b.cfg.Tools.Fimo,
		"--text",
		"--thresh", strconv.FormatFloat(b.cfg.MotifThreshold, 'g', -1, 64),
		b.out.PFM(reg),
		b.cfg.Promoters,
	) + " > " + command.Quote(b.out.Scan(reg))
}

func (b *builder) extractSites(reg string) string {
	return command.Line(b.cfg.Tools.Python, b.script("CODE", "extract_fimo_columns.py"),
		"-i", b.out.Scan(reg),
		"-o", b.out.Sites(reg),
	)
}

func (b *builder) scoreMotif(reg string) string {
	return command.Line(b.cfg.Tools.Python, b.script("CODE", "score_motifs.py"),
		"-i", b.out.Sites(reg),
		"-r", reg,
		"-g", b.cfg.Genes,
		"-o", b.out.Score(reg),
	)
}

func (b *builder) buildMotifNetwork() string {
	return command.Line(b.cfg.Tools.Python, b.script("CODE", "build_motif_network.py"),
		"-i", b.out.MotifsScore(),
		"-r", b.cfg.Regulators,
		"-g", b.cfg.Genes,
		"-o", b.out.Network("mn"),
	)
}

func (b *builder) assembleFinalNetwork() string {
	return command.Line(b.cfg.Tools.Rscript, b.script("CODE", "combine_networks.r"),
		b.out.Network("npwa_bartwa"),
		b.out.Network("mn"),
		b.cfg.NetworkFile,
	)
}

// perRegulator returns a task builder with one task per regulator, in
// regulator file order.
func (b *builder) perRegulator(task func(reg string) string) func() ([]string, error) {
	return func() ([]string, error) {
		regs, err := ReadRegulators(b.cfg.Regulators)
		if err != nil {
			return nil, err
		}
		tasks := make([]string, len(regs))
		for i, reg := range regs {
			tasks[i] = task(reg)
		}
		return tasks, nil
	}
}

// perMotif is like perRegulator but only covers regulators for which
// motif inference produced a PFM.
func (b *builder) perMotif(task func(reg string) string) func() ([]string, error) {
	return func() ([]string, error) {
		regs, err := b.regulatorsWithMotifs()
		if err != nil {
			return nil, err
		}
		tasks := make([]string, len(regs))
		for i, reg := range regs {
			tasks[i] = task(reg)
		}
		return tasks, nil
	}
}

func (b *builder) regulatorsWithMotifs() ([]string, error) {
	regs, err := ReadRegulators(b.cfg.Regulators)
	if err != nil {
		return nil, err
	}
	var withMotifs []string
	for _, reg := range regs {
		if _, err := os.Stat(b.out.PFM(reg)); err == nil {
			withMotifs = append(withMotifs, reg)
		}
	}
	if skipped := len(regs) - len(withMotifs); skipped > 0 {
		b.logger.WithStage(StageScoreMotifs, Names()[StageScoreMotifs-1]).
			Info("regulators without inferred motifs", "skipped", skipped, "total", len(regs))
	}
	return withMotifs, nil
}
