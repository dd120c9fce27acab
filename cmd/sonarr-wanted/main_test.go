package main

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/arrfetch/sonarr-wanted/internal/testutil"
	"github.com/arrfetch/sonarr-wanted/pkg/wanted"
)

// execute runs the CLI with the given args against the mock server and
// returns its stdout.
func execute(t *testing.T, mock *testutil.MockSonarr, args ...string) (string, error) {
	t.Helper()

	t.Setenv("SONARR_BASE_URL", "http://"+mock.Host())
	t.Setenv("SONARR_PORT", strconv.Itoa(mock.Port()))
	t.Setenv("SONARR_API_KEY", testutil.TestAPIKey)

	if args == nil {
		// SetArgs(nil) would fall back to os.Args.
		args = []string{}
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	mock := testutil.NewMockSonarr()
	defer mock.Close()

	out, err := execute(t, mock, "check")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out, "OK:") {
		t.Errorf("output = %q, want OK line", out)
	}
}

func TestListCommand(t *testing.T) {
	mock := testutil.NewMockSonarr()
	defer mock.Close()

	mock.SetEpisodes([]wanted.Episode{
		testutil.Episode(1, "Series A", 1, 1),
		testutil.Episode(1, "Series A", 1, 2),
		testutil.Episode(2, "Series B", 2, 3),
	})

	out, err := execute(t, mock)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{"Series A S01E01", "Series B S02E03"}
	if len(lines) != len(want) {
		t.Fatalf("output lines = %v, want %v", lines, want)
	}
	for i, line := range want {
		if lines[i] != line {
			t.Errorf("line %d = %q, want %q", i, lines[i], line)
		}
	}
}

func TestListCommand_ExcludesEndedSeries(t *testing.T) {
	mock := testutil.NewMockSonarr()
	defer mock.Close()

	mock.SetEpisodes([]wanted.Episode{
		testutil.Episode(1, "Series A", 1, 1),
		testutil.EndedEpisode(2, "Series B", 2, 3),
	})

	t.Setenv("SONARR_INCLUDE_ENDED", "false")

	out, err := execute(t, mock)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if strings.Contains(out, "Series B") {
		t.Errorf("output contains ended series: %q", out)
	}
	if !strings.Contains(out, "Series A S01E01") {
		t.Errorf("output missing continuing series: %q", out)
	}
}

func TestListCommand_Head(t *testing.T) {
	mock := testutil.NewMockSonarr()
	defer mock.Close()

	var episodes []wanted.Episode
	for i := 0; i < 30; i++ {
		episodes = append(episodes, testutil.Episode(int64(i+1), "Series "+strconv.Itoa(i+1), 1, 1))
	}
	mock.SetEpisodes(episodes)

	t.Setenv("SONARR_PAGE_SIZE", "10")

	out, err := execute(t, mock, "--head", "3")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Errorf("got %d lines, want 3", len(lines))
	}
	// Early stop on the first page must not fetch the remaining pages.
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("server saw %d requests, want 1", got)
	}
}
