package config

import "time"

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Name:        "smell-bot",
			Version:     "1.0.0",
			Description: "Code smell classification agent",
		},
		Ingestion: IngestionConfig{
			Source: "file",
			Path:   "metrics.json",
		},
		CodeAPI: CodeAPIConfig{
			URL:     "http://localhost:8181",
			Timeout: 30 * time.Second,
			Retry: RetryConfig{
				MaxAttempts:   3,
				BackoffFactor: 1.5,
				InitialDelay:  100 * time.Millisecond,
				MaxDelay:      5 * time.Second,
				RetryOnStatus: []int{502, 503, 504},
			},
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        1 * time.Hour,
			MaxEntries: 64,
		},
		Thresholds: DefaultThresholds(),
		Classifier: ClassifierConfig{
			TestFraction: 0.2,
			Folds:        5,
			Seed:         42,
			GridSearch:   false,
			Weights:      VotingWeights{Forest: 1, SVM: 1, Logistic: 1},
			Forest: ForestConfig{
				NEstimators:     100,
				MaxDepth:        0,
				MinSamplesSplit: 2,
			},
			SVM: SVMConfig{
				C:         1.0,
				Gamma:     0,
				Tolerance: 1e-3,
				MaxPasses: 5,
			},
			Logistic: LogisticConfig{
				C:            1.0,
				MaxIter:      1000,
				LearningRate: 0.1,
			},
			Synthetic: SyntheticConfig{
				Samples: 500,
				Seed:    42,
			},
		},
		Consistency: ConsistencyConfig{
			Enabled:           true,
			VarianceThreshold: 5,
			MaxDistinctParams: 2,
			Patterns:          DefaultBusinessPatterns(),
		},
		Exclusions: ExclusionsConfig{
			FilePatterns: []string{
				"**/generated/**", "**/vendor/**", "**/node_modules/**",
			},
			ClassPatterns:    []string{"Mock$", "Stub$"},
			FunctionPatterns: []string{},
		},
		ModelStore: ModelStoreConfig{
			Backend: "file",
			Dir:     "models",
			Handle:  "smell-model",
		},
		Audit: AuditConfig{
			Enabled: false,
			Path:    "training-audit.db",
		},
		Output: OutputConfig{
			Formats:            []string{"json"},
			OutputDir:          ".",
			IncludeSuggestions: true,
			MaxSuggestions:     5,
			TopN:               10,
		},
		Logging: LoggingConfig{
			Level:            "info",
			IncludeTimestamp: true,
		},
	}
}

// DefaultBusinessPatterns returns the built-in business-pattern groups
func DefaultBusinessPatterns() []BusinessPattern {
	return []BusinessPattern{
		{Name: "price-calculation", Pattern: `(?i)(price|discount|cost|total|amount)`, Description: "Price and discount calculation"},
		{Name: "user-validation", Pattern: `(?i)(validate|verify|check).*(user|email|password|account)`, Description: "User input validation"},
		{Name: "order-processing", Pattern: `(?i)(order|checkout|cart)`, Description: "Order processing"},
		{Name: "payment-processing", Pattern: `(?i)(payment|charge|refund|invoice)`, Description: "Payment handling"},
		{Name: "inventory-management", Pattern: `(?i)(stock|inventory|warehouse)`, Description: "Inventory management"},
	}
}
