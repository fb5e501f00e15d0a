package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/emma-crm/warden/internal/relevance"
)

const (
	EnvValidationEnableLLM            = "WARDEN_VALIDATION_ENABLE_LLM"
	EnvValidationMinimumConfidence    = "WARDEN_VALIDATION_MINIMUM_CONFIDENCE"
	EnvValidationDefaultOnUncertainty = "WARDEN_VALIDATION_DEFAULT_ON_UNCERTAINTY"
	EnvValidationEnableAuditLog       = "WARDEN_VALIDATION_ENABLE_AUDIT_LOG"
	EnvValidationBatchConcurrency     = "WARDEN_VALIDATION_BATCH_CONCURRENCY"
	EnvValidationAuditCapacity        = "WARDEN_VALIDATION_AUDIT_CAPACITY"
)

// ValidationConfig holds the startup values for the validation policy and
// the audit trail capacity. EnableLLM and EnableAuditLog use pointers so an
// explicit false in a config file survives the defaulting pass.
type ValidationConfig struct {
	EnableLLM            *bool   `toml:"enable_llm"`
	MinimumConfidence    float64 `toml:"minimum_confidence"`
	DefaultOnUncertainty string  `toml:"default_on_uncertainty"`
	EnableAuditLog       *bool   `toml:"enable_audit_log"`
	BatchConcurrency     int     `toml:"batch_concurrency"`
	AuditCapacity        int     `toml:"audit_capacity"`
}

// Policy converts the finalized config into the runtime policy seed.
func (c *ValidationConfig) Policy() relevance.Policy {
	return relevance.Policy{
		EnableLLM:            c.EnableLLM == nil || *c.EnableLLM,
		MinimumConfidence:    c.MinimumConfidence,
		DefaultOnUncertainty: relevance.UncertaintyAction(c.DefaultOnUncertainty),
		EnableAuditLog:       c.EnableAuditLog == nil || *c.EnableAuditLog,
		BatchConcurrency:     c.BatchConcurrency,
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ValidationConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ValidationConfig) Merge(overlay *ValidationConfig) {
	if overlay.EnableLLM != nil {
		c.EnableLLM = overlay.EnableLLM
	}
	if overlay.MinimumConfidence != 0 {
		c.MinimumConfidence = overlay.MinimumConfidence
	}
	if overlay.DefaultOnUncertainty != "" {
		c.DefaultOnUncertainty = overlay.DefaultOnUncertainty
	}
	if overlay.EnableAuditLog != nil {
		c.EnableAuditLog = overlay.EnableAuditLog
	}
	if overlay.BatchConcurrency != 0 {
		c.BatchConcurrency = overlay.BatchConcurrency
	}
	if overlay.AuditCapacity != 0 {
		c.AuditCapacity = overlay.AuditCapacity
	}
}

func (c *ValidationConfig) loadDefaults() {
	if c.MinimumConfidence == 0 {
		c.MinimumConfidence = 0.7
	}
	if c.DefaultOnUncertainty == "" {
		c.DefaultOnUncertainty = string(relevance.UncertaintyProceed)
	}
	if c.BatchConcurrency == 0 {
		c.BatchConcurrency = 5
	}
	if c.AuditCapacity == 0 {
		c.AuditCapacity = relevance.DefaultTrailCapacity
	}
}

func (c *ValidationConfig) loadEnv() {
	if v := os.Getenv(EnvValidationEnableLLM); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.EnableLLM = &b
		}
	}
	if v := os.Getenv(EnvValidationMinimumConfidence); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.MinimumConfidence = f
		}
	}
	if v := os.Getenv(EnvValidationDefaultOnUncertainty); v != "" {
		c.DefaultOnUncertainty = v
	}
	if v := os.Getenv(EnvValidationEnableAuditLog); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.EnableAuditLog = &b
		}
	}
	if v := os.Getenv(EnvValidationBatchConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BatchConcurrency = n
		}
	}
	if v := os.Getenv(EnvValidationAuditCapacity); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.AuditCapacity = n
		}
	}
}

func (c *ValidationConfig) validate() error {
	if err := c.Policy().Validate(); err != nil {
		return err
	}
	if c.AuditCapacity < 1 {
		return fmt.Errorf("audit_capacity must be positive")
	}
	return nil
}
