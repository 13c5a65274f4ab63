package model

import "testing"

func TestJobStatus_Valid(t *testing.T) {
	for _, s := range []JobStatus{StatusScheduled, StatusEnRoute, StatusInProgress, StatusCompleted, StatusCancelled} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if JobStatus("paused").Valid() {
		t.Error("unknown status accepted")
	}
}

func TestJobStatus_Terminal(t *testing.T) {
	if !StatusCompleted.Terminal() || !StatusCancelled.Terminal() {
		t.Error("completed and cancelled must be terminal")
	}
	if StatusScheduled.Terminal() || StatusEnRoute.Terminal() || StatusInProgress.Terminal() {
		t.Error("non-terminal status reported terminal")
	}
}

func TestUrgency_Rank(t *testing.T) {
	if UrgencyHigh.Rank() >= UrgencyMedium.Rank() || UrgencyMedium.Rank() >= UrgencyLow.Rank() {
		t.Error("urgency rank ordering broken")
	}
	// Unknown urgency sorts with low.
	if Urgency("").Rank() != UrgencyLow.Rank() {
		t.Error("zero urgency should rank as low")
	}
}

func TestJob_Validate(t *testing.T) {
	j := Job{ID: "j1", Status: StatusScheduled}
	if err := j.Validate(); err != nil {
		t.Fatalf("valid job rejected: %v", err)
	}
	if err := (Job{Status: StatusScheduled}).Validate(); err == nil {
		t.Error("missing id accepted")
	}
	if err := (Job{ID: "j1", Status: "bogus"}).Validate(); err == nil {
		t.Error("bogus status accepted")
	}
}

func TestProvider_Validate(t *testing.T) {
	p := Provider{ID: "p1", IsAvailable: true}
	if err := p.Validate(); err != nil {
		t.Fatalf("valid provider rejected: %v", err)
	}
	p.CurrentJobID = "j1"
	if err := p.Validate(); err == nil {
		t.Error("available provider with bound job accepted")
	}
}

func TestProvider_DistanceKnown(t *testing.T) {
	if (Provider{DistanceKM: UnknownDistance}).DistanceKnown() {
		t.Error("unknown distance reported as known")
	}
	if !(Provider{DistanceKM: 2.5}).DistanceKnown() {
		t.Error("known distance reported as unknown")
	}
}
