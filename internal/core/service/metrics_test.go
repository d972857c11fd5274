package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/crmdesk/crm-system/internal/pkg/metrics"
)

func TestAuthService_CountsLoginAttempts(t *testing.T) {
	svc, _, _ := newTestAuthService(AuthOptions{})
	if _, err := svc.Register(context.Background(), validRegistration("mia")); err != nil {
		t.Fatalf("register: %v", err)
	}

	failures := metrics.LoginAttemptsTotal.WithLabelValues("password", "failure")
	successes := metrics.LoginAttemptsTotal.WithLabelValues("password", "success")
	beforeFail, beforeOK := testutil.ToFloat64(failures), testutil.ToFloat64(successes)

	_, _ = svc.Login(context.Background(), "mia", "nope")
	if _, err := svc.Login(context.Background(), "mia", "pass123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if got := testutil.ToFloat64(failures) - beforeFail; got != 1 {
		t.Errorf("failure count grew by %v, want 1", got)
	}
	if got := testutil.ToFloat64(successes) - beforeOK; got != 1 {
		t.Errorf("success count grew by %v, want 1", got)
	}
}

func TestCustomerService_CountsWrites(t *testing.T) {
	svc := NewCustomerService(newStubCustomerRepo(), discardLogger)
	creates := metrics.RecordsMutatedTotal.WithLabelValues("customer", "create")
	before := testutil.ToFloat64(creates)

	if _, err := svc.Create(context.Background(), johnInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := testutil.ToFloat64(creates) - before; got != 1 {
		t.Errorf("create count grew by %v, want 1", got)
	}
}
