package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(AttemptCounter.WithLabelValues("true"))
	ObserveAttempt(true)
	if got := testutil.ToFloat64(AttemptCounter.WithLabelValues("true")); got != before+1 {
		t.Fatalf("attempts{passed=true} = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(CertificateCounter.WithLabelValues("reconcile"))
	ObserveCertificate("reconcile")
	if got := testutil.ToFloat64(CertificateCounter.WithLabelValues("reconcile")); got != before+1 {
		t.Fatalf("certificates{source=reconcile} = %v", got)
	}

	before = testutil.ToFloat64(ScenarioOutcomeCounter.WithLabelValues("false"))
	ObserveScenarioOutcome(false)
	if got := testutil.ToFloat64(ScenarioOutcomeCounter.WithLabelValues("false")); got != before+1 {
		t.Fatalf("scenario outcomes{compliant=false} = %v", got)
	}
}
