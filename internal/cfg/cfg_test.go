package cfg

import (
	"flag"
	"math"
	"strings"
	"testing"
)

// validBase returns a Config with all required fields set to valid values.
func validBase() Config {
	return Config{
		DrainSeconds:          60,
		ShutdownBudgetSeconds: 90,
		APIPort:               8080,
		AuthSecret:            "test-secret",
		PoolLimit:             500,
		PageSize:              25,
	}
}

func TestRegisterFlags_Defaults(t *testing.T) {
	t.Parallel()

	var c Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse empty args: %v", err)
	}

	if c.DrainSeconds != 60 {
		t.Errorf("DrainSeconds = %d, want 60", c.DrainSeconds)
	}
	if c.ShutdownBudgetSeconds != 90 {
		t.Errorf("ShutdownBudgetSeconds = %d, want 90", c.ShutdownBudgetSeconds)
	}
	if c.APIPort != 8080 {
		t.Errorf("APIPort = %d, want 8080", c.APIPort)
	}
	if c.PoolLimit != 500 {
		t.Errorf("PoolLimit = %d, want 500", c.PoolLimit)
	}
	if c.PageSize != 25 {
		t.Errorf("PageSize = %d, want 25", c.PageSize)
	}
	if c.DigestIntervalSeconds != 900 {
		t.Errorf("DigestIntervalSeconds = %d, want 900", c.DigestIntervalSeconds)
	}
}

func TestRegisterFlags_Override(t *testing.T) {
	t.Parallel()

	var c Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	args := []string{
		"-drain-seconds", "30",
		"-shutdown-budget-seconds", "120",
		"-http-port", "9090",
		"-database-url", "postgres://claims",
		"-auth-secret", "override-secret",
		"-pool-limit", "200",
		"-page-size", "50",
		"-slack-webhook-url", "https://hooks.slack.example/T1",
		"-digest-tenant-id", "t1",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse args: %v", err)
	}

	if c.DrainSeconds != 30 {
		t.Errorf("DrainSeconds = %d, want 30", c.DrainSeconds)
	}
	if c.ShutdownBudgetSeconds != 120 {
		t.Errorf("ShutdownBudgetSeconds = %d, want 120", c.ShutdownBudgetSeconds)
	}
	if c.APIPort != 9090 {
		t.Errorf("APIPort = %d, want 9090", c.APIPort)
	}
	if c.DatabaseURL != "postgres://claims" {
		t.Errorf("DatabaseURL = %q", c.DatabaseURL)
	}
	if c.AuthSecret != "override-secret" {
		t.Errorf("AuthSecret = %q", c.AuthSecret)
	}
	if c.PoolLimit != 200 || c.PageSize != 50 {
		t.Errorf("PoolLimit/PageSize = %d/%d, want 200/50", c.PoolLimit, c.PageSize)
	}
	if c.DigestTenantID != "t1" {
		t.Errorf("DigestTenantID = %q, want t1", c.DigestTenantID)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	withWebhook := validBase()
	withWebhook.SlackWebhookURL = "https://hooks.slack.example/T1"
	withWebhook.DigestIntervalSeconds = 900
	withWebhook.DigestTenantID = "t1"

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   bool
		errSubstr []string // substrings that must appear in error message
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name: "minimum valid values",
			mutate: func(c *Config) {
				c.DrainSeconds, c.ShutdownBudgetSeconds, c.APIPort = 1, 2, 1
				c.PoolLimit, c.PageSize = 1, 1
			},
			wantErr: false,
		},
		{
			name: "maximum valid values",
			mutate: func(c *Config) {
				c.DrainSeconds, c.ShutdownBudgetSeconds, c.APIPort = 299, 300, 65535
				c.PoolLimit, c.PageSize = 10000, 200
			},
			wantErr: false,
		},
		{
			name:      "drain zero",
			mutate:    func(c *Config) { c.DrainSeconds = 0 },
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS"},
		},
		{
			name: "drain above max",
			mutate: func(c *Config) {
				c.DrainSeconds, c.ShutdownBudgetSeconds = 301, 300
			},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS"},
		},
		{
			name:      "budget zero",
			mutate:    func(c *Config) { c.ShutdownBudgetSeconds = 0 },
			wantErr:   true,
			errSubstr: []string{"SHUTDOWN_BUDGET_SECONDS"},
		},
		{
			name:      "budget equals drain",
			mutate:    func(c *Config) { c.ShutdownBudgetSeconds = c.DrainSeconds },
			wantErr:   true,
			errSubstr: []string{"must be greater than"},
		},
		{
			name:      "port zero",
			mutate:    func(c *Config) { c.APIPort = 0 },
			wantErr:   true,
			errSubstr: []string{"HTTP_PORT"},
		},
		{
			name:      "port above max",
			mutate:    func(c *Config) { c.APIPort = 65536 },
			wantErr:   true,
			errSubstr: []string{"HTTP_PORT"},
		},
		{
			name:      "missing auth secret",
			mutate:    func(c *Config) { c.AuthSecret = "" },
			wantErr:   true,
			errSubstr: []string{"AUTH_SECRET"},
		},
		{
			name:      "pool limit zero",
			mutate:    func(c *Config) { c.PoolLimit = 0 },
			wantErr:   true,
			errSubstr: []string{"POOL_LIMIT"},
		},
		{
			name:      "pool limit above max",
			mutate:    func(c *Config) { c.PoolLimit = 10001 },
			wantErr:   true,
			errSubstr: []string{"POOL_LIMIT"},
		},
		{
			name:      "page size zero",
			mutate:    func(c *Config) { c.PageSize = 0 },
			wantErr:   true,
			errSubstr: []string{"PAGE_SIZE"},
		},
		{
			name: "webhook with valid digest settings",
			mutate: func(c *Config) {
				*c = withWebhook
			},
			wantErr: false,
		},
		{
			name: "webhook with interval too small",
			mutate: func(c *Config) {
				*c = withWebhook
				c.DigestIntervalSeconds = 10
			},
			wantErr:   true,
			errSubstr: []string{"DIGEST_INTERVAL_SECONDS"},
		},
		{
			name: "webhook without tenant",
			mutate: func(c *Config) {
				*c = withWebhook
				c.DigestTenantID = ""
			},
			wantErr:   true,
			errSubstr: []string{"DIGEST_TENANT_ID"},
		},
		{
			name: "digest settings ignored without webhook",
			mutate: func(c *Config) {
				c.DigestIntervalSeconds = 0
				c.DigestTenantID = ""
			},
			wantErr: false,
		},
		{
			name: "all fields invalid",
			mutate: func(c *Config) {
				*c = Config{}
			},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS", "SHUTDOWN_BUDGET_SECONDS", "HTTP_PORT", "AUTH_SECRET", "POOL_LIMIT", "PAGE_SIZE"},
		},
		{
			name: "extreme negative values",
			mutate: func(c *Config) {
				c.DrainSeconds, c.ShutdownBudgetSeconds, c.APIPort = math.MinInt32, math.MinInt32, math.MinInt32
			},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS", "SHUTDOWN_BUDGET_SECONDS", "HTTP_PORT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := validBase()
			tt.mutate(&c)

			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				errMsg := err.Error()
				for _, sub := range tt.errSubstr {
					if !strings.Contains(errMsg, sub) {
						t.Errorf("error %q does not contain %q", errMsg, sub)
					}
				}
			}
		})
	}
}

func FuzzValidate(f *testing.F) {
	seeds := []struct {
		drain, budget, port, pool, page int
		secret                          string
	}{
		{60, 90, 8080, 500, 25, "secret"},
		{1, 2, 1, 1, 1, "s"},
		{299, 300, 65535, 10000, 200, "s"},
		{0, 0, 0, 0, 0, ""},
		{-1, -1, -1, -1, -1, ""},
		{150, 100, 8080, 500, 25, "s"},
		{math.MinInt32, math.MinInt32, math.MinInt32, math.MinInt32, math.MinInt32, ""},
		{math.MaxInt32, math.MaxInt32, math.MaxInt32, math.MaxInt32, math.MaxInt32, "s"},
	}
	for _, s := range seeds {
		f.Add(s.drain, s.budget, s.port, s.pool, s.page, s.secret)
	}

	f.Fuzz(func(t *testing.T, drain, budget, port, pool, page int, secret string) {
		c := Config{
			DrainSeconds:          drain,
			ShutdownBudgetSeconds: budget,
			APIPort:               port,
			PoolLimit:             pool,
			PageSize:              page,
			AuthSecret:            secret,
		}
		err := c.Validate()

		drainOK := drain >= 1 && drain <= 300
		budgetOK := budget >= 1 && budget <= 300
		portOK := port >= 1 && port <= 65535
		crossOK := budget > drain
		secretOK := secret != ""
		poolOK := pool >= 1 && pool <= 10000
		pageOK := page >= 1 && page <= 200

		allValid := drainOK && budgetOK && portOK && crossOK && secretOK && poolOK && pageOK

		if allValid && err != nil {
			t.Errorf("expected no error for valid config %+v, got: %v", c, err)
		}
		if !allValid && err == nil {
			t.Errorf("expected error for invalid config %+v, got nil", c)
		}
	})
}
