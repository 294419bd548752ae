// Command smoke exercises a running API end to end: it signs up an hr user
// and an intern, opens onboarding, and checks that access rules hold.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"hrms.org/internal/auth"
	"hrms.org/internal/client"
	"hrms.org/internal/ids"
	"hrms.org/internal/obs"
)

func main() {
	base := flag.String("base", envOr("HRMS_API_URL", "http://localhost:8000"), "API base URL")
	flag.Parse()

	log := obs.Logger()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, client.New(*base, client.WithTimeout(5*time.Second), client.WithRetries(2))); err != nil {
		log.Fatal("smoke test failed", "err", err)
	}
	fmt.Println("smoke test passed")
}

func run(ctx context.Context, anon *client.Client) error {
	suffix := ids.New()
	profile := func(email string, extra map[string]string) map[string]string {
		p := map[string]string{
			"full_name":     "Smoke " + suffix,
			"email":         email,
			"phone_number":  "+10000000000",
			"password":      "smoke-" + suffix,
			"date_of_birth": "1990-01-01",
			"address":       "Smoke Lane",
		}
		for k, v := range extra {
			p[k] = v
		}
		return p
	}
	internFields := map[string]string{
		"educational_institution": "Smoke University",
		"current_year_semester":   "1",
		"major_field_of_study":    "Testing",
		"internship_start_date":   "2024-01-01",
		"internship_end_date":     "2024-12-31",
		"area_of_interest":        "QA",
	}

	hr, _, err := anon.Signup(ctx, auth.RoleHR, profile("hr-"+suffix+"@smoke.test", map[string]string{
		"hr_access_level":      "admin",
		"departments_overseen": "All",
		"work_experience":      "1 year",
		"office_location":      "Remote",
	}))
	if err != nil {
		return fmt.Errorf("hr signup: %w", err)
	}
	internEmail := "intern-" + suffix + "@smoke.test"
	if _, _, err := anon.Signup(ctx, auth.RoleIntern, profile(internEmail, internFields)); err != nil {
		return fmt.Errorf("intern signup: %w", err)
	}
	_, other, err := anon.Signup(ctx, auth.RoleIntern, profile("other-"+suffix+"@smoke.test", internFields))
	if err != nil {
		return fmt.Errorf("second intern signup: %w", err)
	}

	intern, me, err := anon.Login(ctx, internEmail, "smoke-"+suffix)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if who, err := intern.Me(ctx); err != nil || who.ID != me.ID {
		return fmt.Errorf("me: %+v %v", who, err)
	}

	if _, err := hr.CreateOnboarding(ctx, me.ID); err != nil {
		return fmt.Errorf("create onboarding: %w", err)
	}
	if o, err := intern.Onboarding(ctx, me.ID); err != nil || o.UserID != me.ID {
		return fmt.Errorf("read own onboarding: %+v %v", o, err)
	}

	_, err = intern.Onboarding(ctx, other.ID)
	var apiErr *client.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
		return fmt.Errorf("cross-user read was not denied: %v", err)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
