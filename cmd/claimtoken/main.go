// Claimtoken mints staff bearer tokens for the claimdesk API. It is an ops
// convenience for curl sessions and local testing, not part of the service.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/linnemanlabs/claimdesk/internal/authmw"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal error:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		secret    = flag.String("auth-secret", os.Getenv("CLAIMDESK_AUTH_SECRET"), "HMAC secret the server verifies with (default $CLAIMDESK_AUTH_SECRET)")
		staffID   = flag.String("staff-id", "", "staff member id (required)")
		staffName = flag.String("staff-name", "", "staff member display name")
		tenantID  = flag.String("tenant-id", "", "tenant id (required)")
		role      = flag.String("role", string(authmw.RoleAdjuster), "staff role: admin or adjuster")
		branches  = flag.String("branch-ids", "", "comma-separated branch ids the adjuster may see (empty = all)")
		ttl       = flag.Duration("ttl", 8*time.Hour, "token lifetime")
	)
	flag.Parse()

	if *secret == "" {
		return fmt.Errorf("auth-secret is required (flag or CLAIMDESK_AUTH_SECRET)")
	}
	if *staffID == "" || *tenantID == "" {
		return fmt.Errorf("staff-id and tenant-id are required")
	}

	id := authmw.Identity{
		StaffID:   *staffID,
		StaffName: *staffName,
		TenantID:  *tenantID,
		Role:      authmw.Role(*role),
	}
	if *branches != "" {
		id.BranchIDs = strings.Split(*branches, ",")
	}

	token, err := authmw.SignToken(*secret, id, *ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	fmt.Println(token)
	return nil
}
