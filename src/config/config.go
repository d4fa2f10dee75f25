package config

import "time"

// Config is the root configuration structure
type Config struct {
	Agent       AgentConfig       `yaml:"agent"`
	Ingestion   IngestionConfig   `yaml:"ingestion"`
	CodeAPI     CodeAPIConfig     `yaml:"codeapi"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Cache       CacheConfig       `yaml:"cache"`
	Thresholds  ThresholdConfig   `yaml:"thresholds"`
	Classifier  ClassifierConfig  `yaml:"classifier"`
	Consistency ConsistencyConfig `yaml:"consistency"`
	Exclusions  ExclusionsConfig  `yaml:"exclusions"`
	ModelStore  ModelStoreConfig  `yaml:"model_store"`
	Audit       AuditConfig       `yaml:"audit"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// AgentConfig contains agent metadata
type AgentConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

// IngestionConfig selects where source-unit metrics come from
type IngestionConfig struct {
	Source  string `yaml:"source"` // file, codeapi
	Path    string `yaml:"path"`
	Project string `yaml:"project"`
}

// CodeAPIConfig contains CodeAPI connection settings
type CodeAPIConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	Retry   RetryConfig   `yaml:"retry"`
}

// RetryConfig contains retry settings for API calls
type RetryConfig struct {
	MaxAttempts   int           `yaml:"max_attempts"`
	BackoffFactor float64       `yaml:"backoff_factor"`
	InitialDelay  time.Duration `yaml:"initial_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	RetryOnStatus []int         `yaml:"retry_on_status"`
}

// ConcurrencyConfig contains concurrency settings
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// CacheConfig contains caching settings for ingested metrics
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

// ClassifierConfig contains ensemble training settings
type ClassifierConfig struct {
	TestFraction float64         `yaml:"test_fraction"`
	Folds        int             `yaml:"folds"`
	Seed         uint64          `yaml:"seed"`
	GridSearch   bool            `yaml:"grid_search"`
	Weights      VotingWeights   `yaml:"weights"`
	Forest       ForestConfig    `yaml:"forest"`
	SVM          SVMConfig       `yaml:"svm"`
	Logistic     LogisticConfig  `yaml:"logistic"`
	Synthetic    SyntheticConfig `yaml:"synthetic"`
}

// VotingWeights are the soft-voting weights of the base classifiers
type VotingWeights struct {
	Forest   float64 `yaml:"forest"`
	SVM      float64 `yaml:"svm"`
	Logistic float64 `yaml:"logistic"`
}

// ForestConfig contains random forest hyperparameters
type ForestConfig struct {
	NEstimators     int `yaml:"n_estimators"`
	MaxDepth        int `yaml:"max_depth"` // 0 = unbounded
	MinSamplesSplit int `yaml:"min_samples_split"`
}

// SVMConfig contains RBF support vector machine hyperparameters
type SVMConfig struct {
	C         float64 `yaml:"c"`
	Gamma     float64 `yaml:"gamma"` // 0 = 1/n_features
	Tolerance float64 `yaml:"tolerance"`
	MaxPasses int     `yaml:"max_passes"`
}

// LogisticConfig contains logistic regression hyperparameters
type LogisticConfig struct {
	C            float64 `yaml:"c"`
	MaxIter      int     `yaml:"max_iter"`
	LearningRate float64 `yaml:"learning_rate"`
}

// SyntheticConfig contains synthetic training data settings
type SyntheticConfig struct {
	Samples int    `yaml:"samples"`
	Seed    uint64 `yaml:"seed"`
}

// ConsistencyConfig contains business consistency analyzer settings
type ConsistencyConfig struct {
	Enabled           bool              `yaml:"enabled"`
	VarianceThreshold float64           `yaml:"variance_threshold"`
	MaxDistinctParams int               `yaml:"max_distinct_params"`
	Patterns          []BusinessPattern `yaml:"patterns"`
}

// BusinessPattern is a named regular expression over Class.method names
type BusinessPattern struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Description string `yaml:"description"`
}

// ExclusionsConfig contains exclusion patterns
type ExclusionsConfig struct {
	FilePatterns     []string `yaml:"file_patterns"`
	Files            []string `yaml:"files"`
	ClassPatterns    []string `yaml:"class_patterns"`
	FunctionPatterns []string `yaml:"function_patterns"`
}

// ModelStoreConfig selects where trained models are persisted
type ModelStoreConfig struct {
	Backend string   `yaml:"backend"` // file, s3
	Dir     string   `yaml:"dir"`
	Handle  string   `yaml:"handle"`
	S3      S3Config `yaml:"s3"`
}

// S3Config contains S3-compatible object storage settings
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// AuditConfig contains training audit log settings
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// OutputConfig contains output settings
type OutputConfig struct {
	Formats            []string `yaml:"formats"`
	OutputDir          string   `yaml:"output_dir"`
	IncludeSuggestions bool     `yaml:"include_suggestions"`
	MaxSuggestions     int      `yaml:"max_suggestions"`
	TopN               int      `yaml:"top_n"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level            string `yaml:"level"`
	File             string `yaml:"file"`
	IncludeTimestamp bool   `yaml:"include_timestamp"`
}
