package cfg

import (
	"errors"
	"flag"
	"fmt"

	"github.com/linnemanlabs/claimdesk/internal/triage"
)

// Config adds service-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	DatabaseURL           string
	AuthSecret            string
	PoolLimit             int
	PageSize              int
	SlackWebhookURL       string
	DigestIntervalSeconds int
	DigestTenantID        string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL (empty = in-memory store)")
	fs.StringVar(&c.AuthSecret, "auth-secret", "", "HMAC secret for staff token verification")
	fs.IntVar(&c.PoolLimit, "pool-limit", triage.DefaultPoolLimit, "max claims fetched per queue computation (1..10000)")
	fs.IntVar(&c.PageSize, "page-size", triage.DefaultPageSize, "queue display page size (1..200)")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for the queue digest (empty = disabled)")
	fs.IntVar(&c.DigestIntervalSeconds, "digest-interval-seconds", 900, "seconds between queue digests (60..86400)")
	fs.StringVar(&c.DigestTenantID, "digest-tenant-id", "", "tenant whose queue the digest summarizes (required when the webhook is set)")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// Staff tokens cannot be verified without a secret
	if c.AuthSecret == "" {
		errs = append(errs, errors.New("AUTH_SECRET is required"))
	}

	if c.PoolLimit <= 0 || c.PoolLimit > 10000 {
		errs = append(errs, fmt.Errorf("invalid POOL_LIMIT %d (must be 1..10000)", c.PoolLimit))
	}
	if c.PageSize <= 0 || c.PageSize > 200 {
		errs = append(errs, fmt.Errorf("invalid PAGE_SIZE %d (must be 1..200)", c.PageSize))
	}

	// Digest settings only matter when the webhook is configured
	if c.SlackWebhookURL != "" {
		if c.DigestIntervalSeconds < 60 || c.DigestIntervalSeconds > 86400 {
			errs = append(errs, fmt.Errorf("invalid DIGEST_INTERVAL_SECONDS %d (must be 60..86400)", c.DigestIntervalSeconds))
		}
		if c.DigestTenantID == "" {
			errs = append(errs, errors.New("DIGEST_TENANT_ID is required when SLACK_WEBHOOK_URL is set"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
