package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ygidtu/NetProphet-2.0/internal/errors"
)

// Required configuration keys. Viper keys are case-insensitive, so the
// upper-case spelling used by NetProphet config files is accepted as is.
const (
	KeyRootDir          = "NETPROPHET2_DIR"
	KeyResourcesDir     = "RESOURCES_DIR"
	KeyOutputDir        = "OUTPUT_DIR"
	KeyGenes            = "FILENAME_GENES"
	KeyRegulators       = "FILENAME_REGULATORS"
	KeyExpressionData   = "FILENAME_EXPRESSION_DATA"
	KeySampleConditions = "FILENAME_SAMPLE_CONDITIONS"
	KeyDEAdjMatrix      = "FILENAME_DE_ADJMTR"
	KeyPromoters        = "FILENAME_PROMOTERS"
	KeyDBDPIDDir        = "DBD_PID_DIR"
	KeyMotifThreshold   = "MOTIF_THRESHOLD"
	KeyNetworkFile      = "FILENAME_NETPROPHET2_NETWORK"
)

// RequiredKeys returns every key that must be present in a config file.
func RequiredKeys() []string {
	return []string{
		KeyRootDir, KeyResourcesDir, KeyOutputDir,
		KeyGenes, KeyRegulators, KeyExpressionData, KeySampleConditions,
		KeyDEAdjMatrix, KeyPromoters, KeyDBDPIDDir, KeyMotifThreshold,
		KeyNetworkFile,
	}
}

// EnvPrefix is the prefix for environment variable overrides,
// e.g. NETPROPHET_TOOLS_RSCRIPT for tools.rscript.
const EnvPrefix = "NETPROPHET"

// Config represents a NetProphet run configuration as written in the
// config file. Paths are kept as written; use Resolve to obtain absolute
// paths.
type Config struct {
	RootDir          string  `mapstructure:"netprophet2_dir"`
	ResourcesDir     string  `mapstructure:"resources_dir"`
	OutputDir        string  `mapstructure:"output_dir"`
	Genes            string  `mapstructure:"filename_genes"`
	Regulators       string  `mapstructure:"filename_regulators"`
	ExpressionData   string  `mapstructure:"filename_expression_data"`
	SampleConditions string  `mapstructure:"filename_sample_conditions"`
	DEAdjMatrix      string  `mapstructure:"filename_de_adjmtr"`
	Promoters        string  `mapstructure:"filename_promoters"`
	DBDPIDDir        string  `mapstructure:"dbd_pid_dir"`
	MotifThreshold   float64 `mapstructure:"motif_threshold"`
	NetworkFile      string  `mapstructure:"filename_netprophet2_network"`

	Tools   ToolsConfig   `mapstructure:"tools"`
	Logging LoggingConfig `mapstructure:"logging"`

	// baseDir is the directory of the config file; a relative
	// NETPROPHET2_DIR is resolved against it.
	baseDir string
}

// ToolsConfig controls how external programs are invoked
type ToolsConfig struct {
	// Rscript is the R script interpreter (default: "Rscript")
	Rscript string `mapstructure:"rscript"`
	// Python is the python interpreter (default: "python3")
	Python string `mapstructure:"python"`
	// Perl is the perl interpreter used for FIRE (default: "perl")
	Perl string `mapstructure:"perl"`
	// Fimo is the motif scanner binary (default: "fimo")
	Fimo string `mapstructure:"fimo"`
	// SrcDir is the directory holding the NetProphet scripts, relative to
	// NETPROPHET2_DIR unless absolute (default: "SRC")
	SrcDir string `mapstructure:"src_dir"`
	// MotifBins is the number of quantile bins built from network scores (default: 20)
	MotifBins int `mapstructure:"motif_bins"`
	// FireK is the k-mer length FIRE seeds motifs with (default: 7)
	FireK int `mapstructure:"fire_k"`
}

// LoggingConfig controls run logging
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is the directory for netprophet.log, relative to NETPROPHET2_DIR.
	// Empty logs to stderr.
	Dir string `mapstructure:"dir"`
}

// Default returns a Config with the optional sections set to their defaults.
func Default() *Config {
	return &Config{
		Tools: ToolsConfig{
			Rscript:   "Rscript",
			Python:    "python3",
			Perl:      "perl",
			Fimo:      "fimo",
			SrcDir:    "SRC",
			MotifBins: 20,
			FireK:     7,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("tools.rscript", defaults.Tools.Rscript)
	v.SetDefault("tools.python", defaults.Tools.Python)
	v.SetDefault("tools.perl", defaults.Tools.Perl)
	v.SetDefault("tools.fimo", defaults.Tools.Fimo)
	v.SetDefault("tools.src_dir", defaults.Tools.SrcDir)
	v.SetDefault("tools.motif_bins", defaults.Tools.MotifBins)
	v.SetDefault("tools.fire_k", defaults.Tools.FireK)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.dir", defaults.Logging.Dir)
}

// Load reads the config file at path, checks that every required key is
// present, applies defaults and environment overrides, and validates the
// result. All failures are returned as *errors.ConfigError.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewConfigError("cannot access config file", errors.Join(errors.ErrConfigUnreadable, err)).WithPath(path)
	}
	if info.IsDir() {
		return nil, errors.NewConfigError("config path is a directory", errors.ErrConfigUnreadable).WithPath(path)
	}

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	// Replace dots with underscores for nested keys in env vars
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.NewConfigError("cannot parse config file", errors.Join(errors.ErrConfigUnreadable, err)).WithPath(path)
	}

	return fromViper(v, filepath.Dir(path), path)
}

// LoadResolved loads the config at path and returns its resolved view.
func LoadResolved(path string) (*Resolved, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve()
}

// fromViper builds a Config from an already-populated viper instance.
func fromViper(v *viper.Viper, baseDir, path string) (*Config, error) {
	for _, key := range RequiredKeys() {
		if !v.IsSet(key) || strings.TrimSpace(v.GetString(key)) == "" {
			return nil, errors.NewConfigError("missing required key", errors.ErrConfigMissing).WithKey(key).WithPath(path)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.NewConfigError("cannot decode config", errors.Join(errors.ErrConfigInvalid, err)).WithPath(path)
	}
	cfg.baseDir = baseDir

	if verrs := cfg.Validate(); len(verrs) > 0 {
		return nil, errors.NewConfigError("invalid configuration", errors.Join(errors.ErrConfigInvalid, ValidationErrors(verrs))).WithPath(path)
	}

	return cfg, nil
}

// Resolved is the immutable, fully resolved view of a Config that is
// threaded read-only through every stage. All paths are absolute.
type Resolved struct {
	RootDir          string
	ResourcesDir     string
	OutputDir        string
	Genes            string
	Regulators       string
	ExpressionData   string
	SampleConditions string
	DEAdjMatrix      string
	Promoters        string
	DBDPIDDir        string
	MotifThreshold   float64
	NetworkFile      string

	Tools    ResolvedTools
	LogDir   string
	LogLevel string
}

// ResolvedTools holds the tool settings with SrcDir made absolute.
type ResolvedTools struct {
	Rscript   string
	Python    string
	Perl      string
	Fimo      string
	SrcDir    string
	MotifBins int
	FireK     int
}

// Resolve returns the resolved view of c.
//
// NETPROPHET2_DIR is resolved against the config file directory when
// relative. RESOURCES_DIR, OUTPUT_DIR, DBD_PID_DIR, tools.src_dir and
// logging.dir are resolved against NETPROPHET2_DIR. The input FILENAME_*
// keys are resolved against RESOURCES_DIR, and FILENAME_NETPROPHET2_NETWORK
// is placed inside OUTPUT_DIR. Absolute paths are kept unchanged.
func (c *Config) Resolve() (*Resolved, error) {
	root := expandHome(c.RootDir)
	if !filepath.IsAbs(root) {
		base := c.baseDir
		if base == "" {
			base = "."
		}
		root = filepath.Join(base, root)
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.NewConfigError("cannot resolve run directory", err).WithKey(KeyRootDir)
	}

	resources := resolveAgainst(root, c.ResourcesDir)
	output := resolveAgainst(root, c.OutputDir)

	r := &Resolved{
		RootDir:          root,
		ResourcesDir:     resources,
		OutputDir:        output,
		Genes:            resolveAgainst(resources, c.Genes),
		Regulators:       resolveAgainst(resources, c.Regulators),
		ExpressionData:   resolveAgainst(resources, c.ExpressionData),
		SampleConditions: resolveAgainst(resources, c.SampleConditions),
		DEAdjMatrix:      resolveAgainst(resources, c.DEAdjMatrix),
		Promoters:        resolveAgainst(resources, c.Promoters),
		DBDPIDDir:        resolveAgainst(root, c.DBDPIDDir),
		MotifThreshold:   c.MotifThreshold,
		NetworkFile:      resolveAgainst(output, c.NetworkFile),
		Tools: ResolvedTools{
			Rscript:   c.Tools.Rscript,
			Python:    c.Tools.Python,
			Perl:      c.Tools.Perl,
			Fimo:      c.Tools.Fimo,
			SrcDir:    resolveAgainst(root, c.Tools.SrcDir),
			MotifBins: c.Tools.MotifBins,
			FireK:     c.Tools.FireK,
		},
		LogLevel: c.Logging.Level,
	}
	if c.Logging.Dir != "" {
		r.LogDir = resolveAgainst(root, c.Logging.Dir)
	}
	return r, nil
}

// Script returns the absolute path of a NetProphet script under tools.src_dir.
func (r *Resolved) Script(elem ...string) string {
	return filepath.Join(append([]string{r.Tools.SrcDir}, elem...)...)
}

// Output returns an absolute path inside OUTPUT_DIR.
func (r *Resolved) Output(elem ...string) string {
	return filepath.Join(append([]string{r.OutputDir}, elem...)...)
}

// ProgressDir is the directory holding the progress record and run lock.
func (r *Resolved) ProgressDir() string {
	return r.RootDir
}

func resolveAgainst(base, path string) string {
	if path == "" {
		return ""
	}
	path = expandHome(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
