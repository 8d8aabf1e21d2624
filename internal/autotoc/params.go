package autotoc

// Params holds every tunable of the detector. Exponents of zero disable the
// corresponding penalty factor.
type Params struct {
	// MaxTokens caps the number of tokens kept per line.
	MaxTokens int `mapstructure:"max_tokens" yaml:"max_tokens"`
	// MaxMatchesPerLine caps numeral matches taken from a single line per parser.
	MaxMatchesPerLine int `mapstructure:"max_matches_per_line" yaml:"max_matches_per_line"`
	// MinContent is the smallest number of headings a candidate may describe.
	MinContent int `mapstructure:"min_content" yaml:"min_content"`
	// MaxSuffixDepth bounds suffix trie expansion in the numeral family.
	MaxSuffixDepth int `mapstructure:"max_suffix_depth" yaml:"max_suffix_depth"`
	// MaxPrefixDepth bounds prefix trie expansion in the prefix family.
	MaxPrefixDepth int `mapstructure:"max_prefix_depth" yaml:"max_prefix_depth"`
	// MaxMarkerOffset is how many tokens past the fixed prefix a keyword marker may sit.
	MaxMarkerOffset int `mapstructure:"max_marker_offset" yaml:"max_marker_offset"`
	// TopCandidates is how many candidates per family reach the selector.
	TopCandidates int `mapstructure:"top_candidates" yaml:"top_candidates"`

	// MinPrefixRatio is the share of an anchor's lines a prefix extension must keep.
	MinPrefixRatio float64 `mapstructure:"min_prefix_ratio" yaml:"min_prefix_ratio"`
	// MinMarkerSelectivity is the share of a marker's document-wide lines that
	// must fall inside the prefix group.
	MinMarkerSelectivity float64 `mapstructure:"min_marker_selectivity" yaml:"min_marker_selectivity"`

	// FirstStageMin gates candidates at generation time.
	FirstStageMin float64 `mapstructure:"first_stage_min" yaml:"first_stage_min"`
	// SecondStageMin gates the winner after re-application.
	SecondStageMin float64 `mapstructure:"second_stage_min" yaml:"second_stage_min"`
	// MismatchExp scales the near-miss penalty.
	MismatchExp float64 `mapstructure:"mismatch_exp" yaml:"mismatch_exp"`

	Size    SizeParams    `mapstructure:"size" yaml:"size"`
	Title   TitleParams   `mapstructure:"title" yaml:"title"`
	Numeral NumeralParams `mapstructure:"numeral" yaml:"numeral"`
	Prefix  PrefixParams  `mapstructure:"prefix" yaml:"prefix"`
}

// SizeParams tunes the span uniformity scorer.
type SizeParams struct {
	OutlierRatio    float64 `mapstructure:"outlier_ratio" yaml:"outlier_ratio"`
	FenceFactor     float64 `mapstructure:"fence_factor" yaml:"fence_factor"`
	MinSpread       float64 `mapstructure:"min_spread" yaml:"min_spread"`
	SplitIterations int     `mapstructure:"split_iterations" yaml:"split_iterations"`
	CountExp        float64 `mapstructure:"count_exp" yaml:"count_exp"`
	CoverageExp     float64 `mapstructure:"coverage_exp" yaml:"coverage_exp"`
	DeviationExp    float64 `mapstructure:"deviation_exp" yaml:"deviation_exp"`
}

// TitleParams tunes the title validity scorer.
type TitleParams struct {
	MaxLength     int     `mapstructure:"max_length" yaml:"max_length"`
	MaxDuplicates int     `mapstructure:"max_duplicates" yaml:"max_duplicates"`
	MaxMeanLength float64 `mapstructure:"max_mean_length" yaml:"max_mean_length"`
	ValidExp      float64 `mapstructure:"valid_exp" yaml:"valid_exp"`
	MeanLengthExp float64 `mapstructure:"mean_length_exp" yaml:"mean_length_exp"`
}

// NumeralParams tunes the numeral sequence scorer.
type NumeralParams struct {
	MaxValueExp     float64 `mapstructure:"max_value_exp" yaml:"max_value_exp"`
	BackboneExp     float64 `mapstructure:"backbone_exp" yaml:"backbone_exp"`
	DisplacementExp float64 `mapstructure:"displacement_exp" yaml:"displacement_exp"`
	HoleExp         float64 `mapstructure:"hole_exp" yaml:"hole_exp"`
}

// PrefixParams tunes the prefix selectivity scorer.
type PrefixParams struct {
	AnchorExp float64 `mapstructure:"anchor_exp" yaml:"anchor_exp"`
	ParentExp float64 `mapstructure:"parent_exp" yaml:"parent_exp"`
}

// DefaultParams returns the parameters the detector ships with.
func DefaultParams() Params {
	return Params{
		MaxTokens:            40,
		MaxMatchesPerLine:    3,
		MinContent:           3,
		MaxSuffixDepth:       4,
		MaxPrefixDepth:       8,
		MaxMarkerOffset:      8,
		TopCandidates:        8,
		MinPrefixRatio:       0.6,
		MinMarkerSelectivity: 0.5,
		FirstStageMin:        0.2,
		SecondStageMin:       0.4,
		MismatchExp:          3,
		Size: SizeParams{
			OutlierRatio:    4,
			FenceFactor:     1.5,
			MinSpread:       0.25,
			SplitIterations: 16,
			CountExp:        2,
			CoverageExp:     1,
			DeviationExp:    1,
		},
		Title: TitleParams{
			MaxLength:     60,
			MaxDuplicates: 2,
			MaxMeanLength: 40,
			ValidExp:      2,
			MeanLengthExp: 1,
		},
		Numeral: NumeralParams{
			MaxValueExp:     0.3,
			BackboneExp:     2,
			DisplacementExp: 2,
			HoleExp:         1,
		},
		Prefix: PrefixParams{
			AnchorExp: 0.5,
			ParentExp: 0.5,
		},
	}
}

// withDefaults fills zero-valued structural limits from DefaultParams.
// Exponents and thresholds keep their value; zero disables them.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.MaxTokens <= 0 {
		p.MaxTokens = d.MaxTokens
	}
	if p.MaxMatchesPerLine <= 0 {
		p.MaxMatchesPerLine = d.MaxMatchesPerLine
	}
	if p.MinContent <= 0 {
		p.MinContent = d.MinContent
	}
	if p.MaxSuffixDepth <= 0 {
		p.MaxSuffixDepth = d.MaxSuffixDepth
	}
	if p.MaxPrefixDepth <= 0 {
		p.MaxPrefixDepth = d.MaxPrefixDepth
	}
	if p.MaxMarkerOffset <= 0 {
		p.MaxMarkerOffset = d.MaxMarkerOffset
	}
	if p.TopCandidates <= 0 {
		p.TopCandidates = d.TopCandidates
	}
	if p.Size.SplitIterations <= 0 {
		p.Size.SplitIterations = d.Size.SplitIterations
	}
	if p.Size.OutlierRatio <= 0 {
		p.Size.OutlierRatio = d.Size.OutlierRatio
	}
	if p.Title.MaxLength <= 0 {
		p.Title.MaxLength = d.Title.MaxLength
	}
	if p.Title.MaxMeanLength <= 0 {
		p.Title.MaxMeanLength = d.Title.MaxMeanLength
	}
	return p
}
