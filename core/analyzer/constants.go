package analyzer

// Code quality thresholds.
const (
	LongMethodLines        = 50  // Methods longer than this are a smell and high debt
	LongMethodEffortDiv    = 20  // Effort hours = ceil(lines / 20)
	LargeFileDebtLines     = 100 // Files longer than this carry medium complexity debt
	LargeFileEffortDiv     = 50  // Effort hours = ceil(lines / 50)
	LargeFileSmellLines    = 500 // Files longer than this are a smell
	DuplicationDebtLines   = 20  // Duplicated lines beyond this carry medium debt
	DuplicationEffortDiv   = 10  // Effort hours = ceil(dup / 10)
	DuplicateMinLineLength = 10  // Trimmed lines must be longer than this to count as duplicates
	MagicNumberSmellCount  = 2   // Numeric literals of 2+ digits needed to report a smell
	LongParamListChars     = 50  // Parameter lists spanning this many characters are a smell
	CommentedCodeLines     = 5   // Comment lines with words beyond this are a smell
	FixmeEffortHours       = 2
	TodoEffortHours        = 1
)

// Maintainability index formula coefficients.
const (
	MIBase           = 171.0
	MIVolumeCoef     = 5.2
	MIComplexityCoef = 0.23
	MILinesCoef      = 16.2
)

// Overall quality penalties.
const (
	ComplexityPenaltyDiv = 10.0
	ComplexityPenaltyCap = 20.0
)

// Quality label thresholds.
const (
	ExcellentMaintainability = 80.0
	ExcellentComplexity      = 5.0
	ExcellentHighDebt        = 0
	GoodMaintainability      = 60.0
	GoodComplexity           = 10.0
	GoodHighDebt             = 2
	FairMaintainability      = 40.0
	FairComplexity           = 20.0
)

// Security scoring.
const (
	SecurityScoreMax         = 100
	SecurityWeightMultiplier = 2
)

// Structural pattern confidences.
const (
	MVCConfidence           = 0.8
	LayeredConfidence       = 0.8
	MicroservicesConfidence = 0.7
	ComponentConfidence     = 0.7
	PluginConfidence        = 0.6
	MicroserviceDirCount    = 3 // More "service" dirs than this suggests microservices
)

// Framework pattern confidences.
const (
	RESTConfidence    = 0.8
	SPAConfidence     = 0.85
	SSRConfidence     = 0.9
	GraphQLConfidence = 0.85
)

// Code idiom confidences: base + step per occurrence, capped.
const (
	SingletonBase     = 0.6
	SingletonStep     = 0.1
	SingletonCap      = 0.9
	FactoryBase       = 0.5
	FactoryStep       = 0.1
	FactoryCap        = 0.8
	ObserverBase      = 0.4
	ObserverStep      = 0.05
	ObserverCap       = 0.8
	ObserverMinTokens = 3 // Observer requires more than two occurrences
)

// Architecture maintainability scoring.
const (
	MaintainabilityBase          = 50
	GoodPatternBonus             = 10
	ConfidentPatternBonus        = 5
	ConfidentPatternThreshold    = 0.7
	SparsePatternPenalty         = 20
	SparsePatternFileCount       = 100
	SparsePatternMinPatterns     = 2
	ModernFrameworkBonus         = 10
	LargeRepoRecommendationFiles = 100
)

// Trend analysis.
const (
	DefaultTrendMonths  = 6
	TrendIncreaseRatio  = 1.2
	TrendDecreaseRatio  = 0.8
	MetricsCacheVersion = 1
)
