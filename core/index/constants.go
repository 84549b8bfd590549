package index

// Similarity weights. They sum to 1.
const (
	LanguageWeight  = 0.25
	FrameworkWeight = 0.20
	PatternWeight   = 0.15
	TechStackWeight = 0.15
	StructureWeight = 0.10
	SemanticWeight  = 0.15
)

// Relationship thresholds and strengths.
const (
	SimilarThreshold      = 0.5 // Similarity at or above this links two repositories
	ComplementaryStrength = 0.8
	ReasonAxisThreshold   = 0.3 // Axes scoring at least this are named in reasons
)

// Combination scoring.
const (
	DefaultCombinationSize = 2
	MaxCombinationSize     = 4
	ArchitectureAxisWeight = 0.30
	TechStackAxisWeight    = 0.25
	FunctionAxisWeight     = 0.25
	WorkflowAxisWeight     = 0.20
)

// Pairwise architecture compatibility by role pairing.
const (
	FrontendBackendFit = 1.0
	MobileBackendFit   = 0.9
	SupportingRoleFit  = 0.6 // A library or tool next to anything else
	DefaultRoleFit     = 0.5
	SameRoleFit        = 0.3
)

// Pairwise tech stack synergy.
const (
	SharedEcosystemBase = 0.5
	MixedEcosystemFit   = 0.4
	UnknownEcosystemFit = 0.2
)

// MinStemLength is the shortest ASCII word that gets stemmed.
const MinStemLength = 3
