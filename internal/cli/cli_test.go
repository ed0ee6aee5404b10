package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pfrederiksen/acta-lineup/internal/export"
	"github.com/pfrederiksen/acta-lineup/internal/lineup"
	"github.com/pfrederiksen/acta-lineup/internal/logger"
	"github.com/pfrederiksen/acta-lineup/internal/match"
	"github.com/pfrederiksen/acta-lineup/internal/scraper"
	"github.com/pfrederiksen/acta-lineup/internal/storage"
)

const fixture = "../scraper/testdata/acta.html"

// runCLI executes the root command with isolated config and returns stdout and stderr
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	base := []string{"--env-file", filepath.Join(t.TempDir(), "none.env")}

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(base, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestScrape_FileJSON(t *testing.T) {
	out, _, err := runCLI(t, "scrape", "--file", fixture, "--format", "json")
	if err != nil {
		t.Fatalf("scrape error = %v", err)
	}

	var roster lineup.Roster
	if err := json.Unmarshal([]byte(out), &roster); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if roster.HomeTeam.Name != `CE MANRESA "A"` {
		t.Errorf("home team = %q", roster.HomeTeam.Name)
	}
	if len(roster.HomeTeam.Players) != 4 || len(roster.AwayTeam.Players) != 3 {
		t.Errorf("got %d/%d players, want 4/3", len(roster.HomeTeam.Players), len(roster.AwayTeam.Players))
	}
}

func TestScrape_FileText(t *testing.T) {
	out, _, err := runCLI(t, "scrape", "--file", fixture, "--sort", "name", "--verbose")
	if err != nil {
		t.Fatalf("scrape error = %v", err)
	}

	for _, want := range []string{
		`CE MANRESA "A" (4 players)`,
		"UE SANT JOAN (3 players)",
		"  Titulars:",
		"  Suplents:",
		"     13  FERRER, Oriol",
		"ID: 0-1-",
		"Total: 7 players",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// GARCIA sorts before PUIG by name
	if strings.Index(out, "GARCIA, Pau") > strings.Index(out, "PUIG, Marc") {
		t.Errorf("players not sorted by name:\n%s", out)
	}
}

func TestScrape_Stdin(t *testing.T) {
	data, err := os.ReadFile(fixture)
	if err != nil {
		t.Fatal(err)
	}

	cmd := NewRootCmd()
	var stdout bytes.Buffer
	cmd.SetIn(bytes.NewReader(data))
	cmd.SetOut(&stdout)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "none.env"), "scrape", "--file", "-"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("scrape error = %v", err)
	}
	if !strings.Contains(stdout.String(), "Total: 7 players") {
		t.Errorf("unexpected output:\n%s", stdout.String())
	}
}

func TestScrape_Save(t *testing.T) {
	dir := t.TempDir()
	_, stderr, err := runCLI(t, "--data-dir", dir, "scrape", "--file", fixture, "--save")
	if err != nil {
		t.Fatalf("scrape error = %v", err)
	}
	if !strings.Contains(stderr, "Saved roster to") {
		t.Errorf("stderr = %q", stderr)
	}

	store, err := storage.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	roster, err := store.LoadRoster(`CE MANRESA _A_-vs-UE SANT JOAN.roster.json`)
	if err != nil {
		t.Fatalf("LoadRoster() error = %v", err)
	}
	if roster.AwayTeam.Name != "UE SANT JOAN" {
		t.Errorf("away team = %q", roster.AwayTeam.Name)
	}
}

func TestScrape_ArgumentErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"nothing to scrape", []string{"scrape"}, "URL or --file is required"},
		{"both sources", []string{"scrape", "https://fcf.cat/acta/1", "--file", fixture}, "not both"},
		{"bad format", []string{"scrape", "--file", fixture, "--format", "yaml"}, "invalid format"},
		{"bad sort", []string{"scrape", "--file", fixture, "--sort", "age"}, "invalid sort order"},
		{"bad url", []string{"scrape", "https://example.com/x"}, "Must be from fcf.cat/acta"},
		{"bad log level", []string{"--log-level", "loud", "scrape", "--file", fixture}, "unknown log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestScrape_URL(t *testing.T) {
	page, err := os.ReadFile(fixture)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(page)
	}))
	defer srv.Close()

	out, _, err := runCLI(t, "scrape", srv.URL+"/fcf.cat/acta/2526/1", "--format", "json", "--timeout", "5s")
	if err != nil {
		t.Fatalf("scrape error = %v", err)
	}
	if !strings.Contains(out, `"homeTeam"`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestScrape_UnrecognizedPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>Manteniment</p></body></html>"))
	}))
	defer srv.Close()

	_, _, err := runCLI(t, "scrape", srv.URL+"/fcf.cat/acta/1")
	if !errors.Is(err, scraper.ErrUnrecognizedDocument) {
		t.Errorf("error = %v, want ErrUnrecognizedDocument", err)
	}
}

func fastRetry(retries uint64) retryConfig {
	return retryConfig{MaxRetries: retries, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}
}

func TestFetchWithRetry(t *testing.T) {
	page, err := os.ReadFile(fixture)
	if err != nil {
		t.Fatal(err)
	}
	quiet := logger.New(logger.LevelError, io.Discard)

	tests := []struct {
		name         string
		failures     int32
		failStatus   int
		retries      uint64
		wantAttempts int32
		wantStatus   int
	}{
		{"success first try", 0, 0, 3, 1, 0},
		{"recovers from 503", 2, http.StatusServiceUnavailable, 3, 3, 0},
		{"gives up after retries", 10, http.StatusBadGateway, 2, 3, http.StatusBadGateway},
		{"404 is permanent", 10, http.StatusNotFound, 3, 1, http.StatusNotFound},
		{"no retries by default", 10, http.StatusServiceUnavailable, 0, 1, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if atomic.AddInt32(&attempts, 1) <= tt.failures {
					w.WriteHeader(tt.failStatus)
					return
				}
				w.Write(page)
			}))
			defer srv.Close()

			sc := scraper.New(scraper.WithLogger(quiet))
			roster, err := fetchWithRetry(context.Background(), sc, srv.URL+"/fcf.cat/acta/1", fastRetry(tt.retries), quiet)

			if got := atomic.LoadInt32(&attempts); got != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", got, tt.wantAttempts)
			}
			if tt.wantStatus == 0 {
				if err != nil || roster == nil {
					t.Fatalf("fetchWithRetry() = %v, %v", roster, err)
				}
				return
			}

			var fe *scraper.FetchError
			if !errors.As(err, &fe) || fe.StatusCode != tt.wantStatus {
				t.Errorf("error = %v, want FetchError with status %d", err, tt.wantStatus)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transport", &scraper.FetchError{Err: errors.New("connection refused")}, true},
		{"server error", &scraper.FetchError{StatusCode: 500, Status: "500"}, true},
		{"rate limited", &scraper.FetchError{StatusCode: 429, Status: "429"}, true},
		{"not found", &scraper.FetchError{StatusCode: 404, Status: "404"}, false},
		{"cancelled", &scraper.FetchError{Err: context.Canceled}, false},
		{"invalid input", &scraper.InputError{Msg: "URL is required"}, false},
		{"structure", &scraper.StructureError{Found: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryable(tt.err); got != tt.want {
				t.Errorf("retryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.New(dir)
	if err != nil {
		t.Fatal(err)
	}

	doc := export.Document{
		HomeTeam: &lineup.Team{ID: match.HomeTeamID, Name: "Home", Players: []lineup.Player{
			{ID: "h9", Name: "Nine", Number: 9, IsStarter: true},
		}},
		AwayTeam: &lineup.Team{ID: match.AwayTeamID, Name: "Away", Players: []lineup.Player{
			{ID: "a1", Name: "One", Number: 1, IsStarter: true},
		}},
		Events: []match.Event{
			{ID: "e1", Type: match.EventRedCard, Timestamp: 125000, PlayerID: "a1", TeamID: match.AwayTeamID},
		},
		CurrentHalf: 1,
	}
	if _, err := store.SaveExport(doc, export.FormatJSON); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, "--data-dir", dir, "export", "Home-vs-Away.json")
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	want := export.CSVHeader + "\n" + `"2'","Tarjeta roja","One","1","Away","",""`
	if out != want {
		t.Errorf("output =\n%s\nwant\n%s", out, want)
	}

	target := filepath.Join(t.TempDir(), "copy.json")
	if _, _, err := runCLI(t, "--data-dir", dir, "export", "Home-vs-Away.json", "--format", "json", "-o", target); err != nil {
		t.Fatalf("export error = %v", err)
	}
	reloaded, err := store.LoadExport(target)
	if err != nil {
		t.Fatalf("LoadExport() error = %v", err)
	}
	if len(reloaded.Events) != 1 || reloaded.Events[0].Type != match.EventRedCard {
		t.Errorf("unexpected events %+v", reloaded.Events)
	}

	out, _, err = runCLI(t, "--data-dir", dir, "export", "Home-vs-Away.json", "--team", "home")
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if out != export.CSVHeader {
		t.Errorf("filtered output = %q, want header only", out)
	}

	if _, _, err := runCLI(t, "--data-dir", dir, "export", "Home-vs-Away.json", "--type", "offside"); err == nil {
		t.Error("export with unknown event type should fail")
	}
	if _, _, err := runCLI(t, "--data-dir", dir, "export", "Home-vs-Away.json", "--format", "pdf"); err == nil {
		t.Error("export with unknown format should fail")
	}
	if _, _, err := runCLI(t, "--data-dir", dir, "export", "missing.json"); err == nil {
		t.Error("export of a missing file should fail")
	}
}

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    SortOrder
		wantErr bool
	}{
		{"", SortBySource, false},
		{"Number", SortByNumber, false},
		{" name ", SortByName, false},
		{"source", SortBySource, false},
		{"age", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSortOrder(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseSortOrder(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestSortPlayers(t *testing.T) {
	players := func() []lineup.Player {
		return []lineup.Player{
			{Name: "ROS, Joan", Number: 10},
			{Name: "puig, marc", Number: 1},
			{Name: "GARCIA, Pau", Number: 4},
		}
	}
	names := func(ps []lineup.Player) string {
		var out []string
		for _, p := range ps {
			out = append(out, p.Name)
		}
		return strings.Join(out, "|")
	}

	tests := []struct {
		order SortOrder
		want  string
	}{
		{SortBySource, "ROS, Joan|puig, marc|GARCIA, Pau"},
		{SortByNumber, "puig, marc|GARCIA, Pau|ROS, Joan"},
		{SortByName, "GARCIA, Pau|puig, marc|ROS, Joan"},
	}

	for _, tt := range tests {
		ps := players()
		sortPlayers(ps, tt.order)
		if got := names(ps); got != tt.want {
			t.Errorf("sortPlayers(%s) = %s, want %s", tt.order, got, tt.want)
		}
	}
}
