package loadgen

import (
	"bytes"
	"io"
	"math/rand/v2"
	"strings"
	"testing"
	"time"
)

func TestProfilesCommandListsEveryProfile(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"profiles"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("profiles: %v", err)
	}
	for name := range profileSummaries {
		if !strings.Contains(out.String(), name) {
			t.Fatalf("expected %q in output:\n%s", name, out.String())
		}
		if pickerForProfile(name, 5, rand.New(rand.NewPCG(1, 2))) == nil {
			t.Fatalf("listed profile %q has no picker", name)
		}
	}
}

func TestRunCommandRejectsUnknownProfile(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"run", "--ci", "--profile", "writes"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown profile") {
		t.Fatalf("expected unknown profile error, got %v", err)
	}
}

func TestSummarizeReportsAchievedRate(t *testing.T) {
	lines := summarize(Result{TotalRequests: 40, Status2xx: 38, Status4xx: 2}, 2*time.Second)
	joined := strings.Join(lines, " ")
	for _, want := range []string{"total_requests=40", "status_4xx=2", "achieved_rps=20.0"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in %q", want, joined)
		}
	}
	if got := summarize(Result{}, 0); len(got) != 5 {
		t.Fatalf("zero elapsed should omit rate, got %v", got)
	}
}
