package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Sternrassler/tba-client/internal/testutil"
	"github.com/Sternrassler/tba-client/pkg/fanout"
	"github.com/alicebob/miniredis/v2"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const testAPIKey = "test-key-123"

// newTestClient creates a client against the mock server. mutate may adjust
// the configuration before New.
func newTestClient(t *testing.T, mock *testutil.MockTBA, mutate func(*Config)) *Client {
	t.Helper()

	logger := zerolog.Nop()
	cfg := DefaultConfig()
	cfg.APIKey = testAPIKey
	cfg.BaseURL = mock.BaseURL()
	cfg.Timeout = 5 * time.Second
	cfg.PageCeiling = 3
	cfg.Logger = &logger
	if mutate != nil {
		mutate(&cfg)
	}

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func newMock(t *testing.T) *testutil.MockTBA {
	t.Helper()
	mock := testutil.NewMockTBA()
	t.Cleanup(mock.Close)
	return mock
}

func (c *Client) sessionOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess != nil
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		mutate    func(*Config)
		wantErr   error
		wantKey   string
		expectErr bool
	}{
		{
			name:    "explicit key",
			mutate:  func(c *Config) { c.APIKey = "explicit" },
			wantKey: "explicit",
		},
		{
			name:    "TBA_API_KEY from env",
			env:     map[string]string{EnvAPIKey: "primary", EnvAPIKeyFallback: "fallback"},
			wantKey: "primary",
		},
		{
			name:    "API_KEY fallback",
			env:     map[string]string{EnvAPIKeyFallback: "fallback"},
			wantKey: "fallback",
		},
		{
			name:      "no key anywhere",
			wantErr:   ErrMissingAPIKey,
			expectErr: true,
		},
		{
			name: "invalid base url",
			mutate: func(c *Config) {
				c.APIKey = "k"
				c.BaseURL = "not a url"
			},
			wantErr:   ErrInvalidArgument,
			expectErr: true,
		},
		{
			name: "zero concurrency",
			mutate: func(c *Config) {
				c.APIKey = "k"
				c.MaxConcurrency = 0
			},
			wantErr:   ErrInvalidArgument,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvAPIKey, "")
			t.Setenv(EnvAPIKeyFallback, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := DefaultConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}

			c, err := New(cfg)
			if tt.expectErr {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() unexpected error: %v", err)
			}
			if c.apiKey != tt.wantKey {
				t.Errorf("apiKey = %q, want %q", c.apiKey, tt.wantKey)
			}
		})
	}
}

func TestNew_ErrorDoesNotLeakKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKey = "super-secret"
	cfg.BaseURL = "::bad"
	_, err := New(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "super-secret") {
		t.Errorf("error leaks API key: %v", err)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		name    string
		simple  bool
		keys    bool
		want    Mode
		wantErr bool
	}{
		{name: "full", want: ModeFull},
		{name: "simple", simple: true, want: ModeSimple},
		{name: "keys", keys: true, want: ModeKeys},
		{name: "both", simple: true, keys: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMode(tt.simple, tt.keys)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("ParseMode() error = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseMode() = %v, %v; want %v", got, err, tt.want)
			}
		})
	}
}

func TestInvalidArgumentsRejectedBeforeNetwork(t *testing.T) {
	mock := newMock(t)
	c := newTestClient(t, mock, nil)
	ctx := context.Background()

	calls := map[string]func() error{
		"team keys mode": func() error { _, err := c.Team(ctx, "frc4099", ModeKeys); return err },
		"teams keys mode": func() error {
			_, err := c.Teams(ctx, TeamsQuery{Mode: ModeKeys})
			return err
		},
		"teams reversed range": func() error {
			_, err := c.Teams(ctx, TeamsQuery{Years: fanout.YearRange(2023, 2020)})
			return err
		},
		"events without year":   func() error { _, err := c.Events(ctx, fanout.Years{}, ModeFull); return err },
		"event keys mode":       func() error { _, err := c.Event(ctx, "2023mdbet", ModeKeys); return err },
		"event empty key":       func() error { _, err := c.EventRankings(ctx, ""); return err },
		"match keys mode":       func() error { _, err := c.Match(ctx, "2023mdbet_qm1", ModeKeys); return err },
		"team matches no year":  func() error { _, err := c.TeamMatches(ctx, "frc4099", fanout.Years{}, ModeFull); return err },
		"team media no year":    func() error { _, err := c.TeamMedia(ctx, "frc4099", fanout.Years{}, ""); return err },
		"statuses without year": func() error { _, err := c.TeamEventStatuses(ctx, "frc4099", 0); return err },
		"key with slash":        func() error { _, err := c.Team(ctx, "frc1/simple", ModeFull); return err },
		"districts no year":     func() error { _, err := c.Districts(ctx, fanout.Years{}); return err },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			if err := call(); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("error = %v, want ErrInvalidArgument", err)
			}
		})
	}

	if got := mock.GetRequestCount(); got != 0 {
		t.Errorf("RequestCount = %d, want 0", got)
	}
}

func TestTeam_SimpleVsFull(t *testing.T) {
	mock := newMock(t)
	mock.SetJSON("team/frc4099", `{"key":"frc4099","team_number":4099,"nickname":"The Falcons","name":"Poolesville HS",
		"city":"Poolesville","state_prov":"Maryland","country":"USA","rookie_year":2012,"motto":null,
		"website":"https://falcons.example","school_name":"Poolesville High School"}`)
	mock.SetJSON("team/frc4099/simple", `{"key":"frc4099","team_number":4099,"nickname":"The Falcons","name":"Poolesville HS",
		"city":"Poolesville","state_prov":"Maryland","country":"USA"}`)

	c := newTestClient(t, mock, nil)
	ctx := context.Background()

	full, err := c.Team(ctx, "frc4099", ModeFull)
	if err != nil {
		t.Fatalf("Team(full) error = %v", err)
	}
	simple, err := c.Team(ctx, "frc4099", ModeSimple)
	if err != nil {
		t.Fatalf("Team(simple) error = %v", err)
	}

	if full.TeamNumber != 4099 || simple.TeamNumber != 4099 {
		t.Errorf("team numbers = %d/%d, want 4099", full.TeamNumber, simple.TeamNumber)
	}
	if full.RookieYear == nil || simple.RookieYear != nil {
		t.Error("full record should carry rookie_year, simple should not")
	}
	if full.Website == nil || simple.Website != nil {
		t.Error("full record should carry website, simple should not")
	}

	header := mock.GetLastRequestHeader()
	if got := header.Get(AuthHeader); got != testAPIKey {
		t.Errorf("%s = %q, want %q", AuthHeader, got, testAPIKey)
	}
}

func TestTeam_InvalidKeyUpstreamError(t *testing.T) {
	mock := newMock(t)
	mock.SetResponse("team/frc0", testutil.NewErrorResponse(http.StatusNotFound, "frc0 is not a valid team key"))

	c := newTestClient(t, mock, nil)
	_, err := c.Team(context.Background(), "frc0", ModeFull)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if !strings.Contains(apiErr.Message, "is not a valid team key") {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Class != ErrorClassClient {
		t.Errorf("StatusCode/Class = %d/%s", apiErr.StatusCode, apiErr.Class)
	}
}

func TestUpstreamErrorObjectInSuccessResponse(t *testing.T) {
	mock := newMock(t)
	mock.SetJSON("event/2023bogus", `{"Error": "2023bogus is not a valid event key"}`)

	c := newTestClient(t, mock, nil)
	_, err := c.Event(context.Background(), "2023bogus", ModeFull)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Class != ErrorClassUpstream || apiErr.StatusCode != http.StatusOK {
		t.Errorf("Class/StatusCode = %s/%d", apiErr.Class, apiErr.StatusCode)
	}
}

func TestErrorClasses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   ErrorClass
		msg    string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"Error":"X-TBA-Auth-Key is invalid"}`, want: ErrorClassClient, msg: "X-TBA-Auth-Key is invalid"},
		{name: "rate limited", status: http.StatusTooManyRequests, want: ErrorClassRateLimit, msg: "Too Many Requests"},
		{name: "server error", status: http.StatusBadGateway, body: "<html>bad gateway</html>", want: ErrorClassServer, msg: "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			mock.SetResponse("status", testutil.MockResponse{StatusCode: tt.status, Body: tt.body})
			c := newTestClient(t, mock, nil)

			_, err := c.Status(context.Background())
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.Class != tt.want || apiErr.Message != tt.msg {
				t.Errorf("Class/Message = %s/%q, want %s/%q", apiErr.Class, apiErr.Message, tt.want, tt.msg)
			}
		})
	}
}

func TestDecodeError(t *testing.T) {
	mock := newMock(t)
	mock.SetJSON("status", `{"current_season": "not a number"`)
	c := newTestClient(t, mock, nil)

	_, err := c.Status(context.Background())
	if !errors.Is(err, ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
}

func TestTeams_AllPagesConcatenated(t *testing.T) {
	mock := newMock(t)
	mock.SetJSON("teams/0/simple", `[{"key":"frc1","team_number":1},{"key":"frc2","team_number":2}]`)
	mock.SetJSON("teams/1/simple", `[{"key":"frc600","team_number":600}]`)
	mock.SetJSON("teams/2/simple", `[]`)

	c := newTestClient(t, mock, nil)
	teams, err := c.Teams(context.Background(), TeamsQuery{Mode: ModeSimple})
	if err != nil {
		t.Fatalf("Teams() error = %v", err)
	}

	var numbers []int
	for _, team := range teams {
		numbers = append(numbers, team.TeamNumber)
	}
	if fmt.Sprint(numbers) != "[1 2 600]" {
		t.Errorf("team numbers = %v, want [1 2 600]", numbers)
	}
	if got := mock.GetRequestCount(); got != 3 {
		t.Errorf("RequestCount = %d, want 3 (page ceiling)", got)
	}
}

func TestTeams_SinglePage(t *testing.T) {
	mock := newMock(t)
	mock.SetJSON("teams/2023/1", `[{"key":"frc501","team_number":501}]`)

	c := newTestClient(t, mock, nil)
	page := 1
	teams, err := c.Teams(context.Background(), TeamsQuery{Page: &page, Years: fanout.Year(2023)})
	if err != nil {
		t.Fatalf("Teams() error = %v", err)
	}
	if len(teams) != 1 || teams[0].Key != "frc501" {
		t.Errorf("teams = %+v", teams)
	}
	if paths := mock.Paths(); len(paths) != 1 || paths[0] != "teams/2023/1" {
		t.Errorf("paths = %v", paths)
	}
}

func TestTeams_YearRangeDeduplicatedAndSorted(t *testing.T) {
	mock := newMock(t)
	mock.SetJSON("teams/2022/0", `[{"key":"frc4099","team_number":4099},{"key":"frc254","team_number":254}]`)
	mock.SetJSON("teams/2023/0", `[{"key":"frc254","team_number":254},{"key":"frc1","team_number":1}]`)

	c := newTestClient(t, mock, nil)
	page := 0
	teams, err := c.Teams(context.Background(), TeamsQuery{Page: &page, Years: fanout.YearRange(2022, 2024)})
	if err != nil {
		t.Fatalf("Teams() error = %v", err)
	}

	var numbers []int
	for _, team := range teams {
		numbers = append(numbers, team.TeamNumber)
	}
	if fmt.Sprint(numbers) != "[1 254 4099]" {
		t.Errorf("team numbers = %v, want [1 254 4099]", numbers)
	}
}

func TestTeamKeys_YearRangeDeduplicatedAndSorted(t *testing.T) {
	mock := newMock(t)
	for _, year := range []int{2022, 2023} {
		for page := 0; page < 3; page++ {
			mock.SetJSON(fmt.Sprintf("teams/%d/%d/keys", year, page), `[]`)
		}
	}
	mock.SetJSON("teams/2022/0/keys", `["frc4099","frc254"]`)
	mock.SetJSON("teams/2023/0/keys", `["frc254","frc1"]`)
	mock.SetJSON("teams/2023/1/keys", `["frc600"]`)

	c := newTestClient(t, mock, nil)
	keys, err := c.TeamKeys(context.Background(), TeamsQuery{Years: fanout.YearRange(2022, 2024)})
	if err != nil {
		t.Fatalf("TeamKeys() error = %v", err)
	}
	if got := strings.Join(keys, ","); got != "frc1,frc254,frc600,frc4099" {
		t.Errorf("keys = %s", got)
	}
	if got := mock.GetRequestCount(); got != 6 {
		t.Errorf("RequestCount = %d, want 6", got)
	}
}

func TestEvents_YearRangeLengthIsSumOfYears(t *testing.T) {
	mock := newMock(t)
	perYear := map[int]int{2020: 3, 2021: 1, 2022: 4, 2023: 2}
	for year, n := range perYear {
		var items []string
		for i := 0; i < n; i++ {
			items = append(items, fmt.Sprintf(`{"key":"%d%c","name":"E","event_code":"e","event_type":0,"year":%d}`, year, 'a'+i, year))
		}
		mock.SetJSON(fmt.Sprintf("events/%d/simple", year), "["+strings.Join(items, ",")+"]")
	}

	c := newTestClient(t, mock, nil)
	ctx := context.Background()

	events, err := c.Events(ctx, fanout.YearRange(2020, 2024), ModeSimple)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}

	sum := 0
	for year := 2020; year < 2024; year++ {
		single, err := c.Events(ctx, fanout.Year(year), ModeSimple)
		if err != nil {
			t.Fatalf("Events(%d) error = %v", year, err)
		}
		sum += len(single)
	}
	if len(events) != sum || sum != 10 {
		t.Errorf("len(range) = %d, sum of years = %d, want 10", len(events), sum)
	}

	for i := 1; i < len(events); i++ {
		if events[i].Year < events[i-1].Year {
			t.Fatalf("events not in year order at %d: %d after %d", i, events[i].Year, events[i-1].Year)
		}
	}
}

func TestEvents_PartialFailureFailsAggregate(t *testing.T) {
	mock := newMock(t)
	mock.SetJSON("events/2020/keys", `["2020a"]`)
	mock.SetResponse("events/2021/keys", testutil.NewErrorResponse(http.StatusInternalServerError, "boom"))
	mock.SetJSON("events/2022/keys", `["2022a"]`)

	c := newTestClient(t, mock, nil)
	keys, err := c.EventKeys(context.Background(), fanout.YearRange(2020, 2023))
	if keys != nil {
		t.Errorf("keys = %v, want nil", keys)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Class != ErrorClassServer {
		t.Errorf("Class = %s, want server", apiErr.Class)
	}
}

func TestEventRankings_DynamicMetricNames(t *testing.T) {
	mock := newMock(t)
	mock.SetJSON("event/2023mdbet/rankings", `{
		"rankings": [{"rank": 1, "team_key": "frc4099", "matches_played": 12, "dq": 0,
		              "record": {"wins": 10, "losses": 2, "ties": 0}, "sort_orders": [3.25, 48]}],
		"sort_order_info": [{"name": "Ranking Score", "precision": 2}, {"name": "Auto+Climb", "precision": 0}],
		"extra_stats_info": []}`)

	c := newTestClient(t, mock, nil)
	rankings, err := c.EventRankings(context.Background(), "2023mdbet")
	if err != nil {
		t.Fatalf("EventRankings() error = %v", err)
	}
	if rankings == nil || len(rankings.Rankings) != 1 {
		t.Fatalf("rankings = %+v", rankings)
	}

	orders := rankings.Rankings[0].SortOrders
	for _, name := range []string{"ranking_score", "auto_plusclimb"} {
		if !orders.Has(name) {
			t.Errorf("sort orders %v missing %q", orders.Names(), name)
		}
	}
}

func TestEventNullPayloads(t *testing.T) {
	mock := newMock(t)
	mock.SetJSON("event/2023mdbet/insights", `null`)
	mock.SetJSON("event/2023mdbet/rankings", `null`)
	mock.SetJSON("event/2023mdbet/district_points", `null`)
	mock.SetJSON("event/2023mdbet/oprs", `null`)
	mock.SetJSON("event/2023mdbet/alliances", `null`)

	c := newTestClient(t, mock, nil)
	ctx := context.Background()

	if insights, err := c.EventInsights(ctx, "2023mdbet"); err != nil || insights != nil {
		t.Errorf("EventInsights() = %v, %v; want nil, nil", insights, err)
	}
	if rankings, err := c.EventRankings(ctx, "2023mdbet"); err != nil || rankings != nil {
		t.Errorf("EventRankings() = %v, %v; want nil, nil", rankings, err)
	}
	if points, err := c.EventDistrictPoints(ctx, "2023mdbet"); err != nil || points != nil {
		t.Errorf("EventDistrictPoints() = %v, %v; want nil, nil", points, err)
	}
	if alliances, err := c.EventAlliances(ctx, "2023mdbet"); err != nil || alliances == nil || len(alliances) != 0 {
		t.Errorf("EventAlliances() = %v, %v; want empty, nil", alliances, err)
	}

	oprs, err := c.EventOPRs(ctx, "2023mdbet")
	if err != nil {
		t.Fatalf("EventOPRs() error = %v", err)
	}
	if oprs.OPRs == nil || oprs.DPRs == nil || oprs.CCWMs == nil {
		t.Errorf("EventOPRs() maps must be non-nil: %+v", oprs)
	}
}

func TestEventOPRs_Average(t *testing.T) {
	mock := newMock(t)
	mock.SetJSON("event/2023mdbet/oprs", `{"oprs":{"frc1":10,"frc2":30},"dprs":{"frc1":5,"frc2":5},"ccwms":{"frc1":5,"frc2":25}}`)

	c := newTestClient(t, mock, nil)
	oprs, err := c.EventOPRs(context.Background(), "2023mdbet")
	if err != nil {
		t.Fatalf("EventOPRs() error = %v", err)
	}
	if avg, err := oprs.Average("opr"); err != nil || avg != 20 {
		t.Errorf("Average(opr) = %v, %v; want 20", avg, err)
	}
}

func TestTeamAwards_RangeFilteredLocally(t *testing.T) {
	mock := newMock(t)
	mock.SetJSON("team/frc4099/awards", `[
		{"name":"Chairman's","award_type":0,"event_key":"2019mdbet","recipient_list":[],"year":2019},
		{"name":"Engineering Inspiration","award_type":9,"event_key":"2022mdbet","recipient_list":[],"year":2022},
		{"name":"Gracious Professionalism","award_type":11,"event_key":"2023mdbet","recipient_list":[],"year":2023}]`)
	mock.SetJSON("team/frc4099/awards/2023", `[
		{"name":"Gracious Professionalism","award_type":11,"event_key":"2023mdbet","recipient_list":[],"year":2023}]`)

	c := newTestClient(t, mock, nil)
	ctx := context.Background()

	awards, err := c.TeamAwards(ctx, "frc4099", fanout.YearRange(2020, 2024))
	if err != nil {
		t.Fatalf("TeamAwards(range) error = %v", err)
	}
	if len(awards) != 2 {
		t.Errorf("len(awards) = %d, want 2", len(awards))
	}
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("RequestCount = %d, want 1", got)
	}

	awards, err = c.TeamAwards(ctx, "frc4099", fanout.Year(2023))
	if err != nil || len(awards) != 1 {
		t.Errorf("TeamAwards(2023) = %d awards, %v", len(awards), err)
	}

	awards, err = c.TeamAwards(ctx, "frc4099", fanout.Years{})
	if err != nil || len(awards) != 3 {
		t.Errorf("TeamAwards(all) = %d awards, %v", len(awards), err)
	}
}

func TestTeamEventStatuses(t *testing.T) {
	mock := newMock(t)
	mock.SetJSON("team/frc4099/events/2023/statuses", `{
		"2023mdbet": {"qual": {"num_teams": 40, "status": "completed",
		  "ranking": {"rank": 5, "team_key": "frc4099", "sort_orders": [2.1]},
		  "sort_order_info": [{"name": "Ranking Score", "precision": 2}]},
		  "alliance": null, "playoff": null, "overall_status_str": "Rank 5"},
		"2023chcmp": null,
		"2023abca": {"qual": null, "alliance": null, "playoff": null}}`)

	c := newTestClient(t, mock, nil)
	statuses, err := c.TeamEventStatuses(context.Background(), "frc4099", 2023)
	if err != nil {
		t.Fatalf("TeamEventStatuses() error = %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("len(statuses) = %d, want 2", len(statuses))
	}
	if statuses[0].EventKey != "2023abca" || statuses[1].EventKey != "2023mdbet" {
		t.Errorf("event keys = %s, %s", statuses[0].EventKey, statuses[1].EventKey)
	}
	if v, ok := statuses[1].Qual.Ranking.SortOrders.Get("ranking_score"); !ok || v != 2.1 {
		t.Errorf("ranking_score = %v, %v", v, ok)
	}
}

func TestTeamEventStatus_SetsEventKey(t *testing.T) {
	mock := newMock(t)
	mock.SetJSON("team/frc4099/event/2023mdbet/status", `{"qual": null, "overall_status_str": "done"}`)
	mock.SetJSON("team/frc4099/event/2023none/status", `null`)

	c := newTestClient(t, mock, nil)
	status, err := c.TeamEventStatus(context.Background(), "frc4099", "2023mdbet")
	if err != nil {
		t.Fatalf("TeamEventStatus() error = %v", err)
	}
	if status.EventKey != "2023mdbet" || status.OverallStatusStr != "done" {
		t.Errorf("status = %+v", status)
	}

	status, err = c.TeamEventStatus(context.Background(), "frc4099", "2023none")
	if err != nil || status != nil {
		t.Errorf("TeamEventStatus(null) = %v, %v; want nil, nil", status, err)
	}
}

func TestTeamEndpointsPaths(t *testing.T) {
	mock := newMock(t)
	c := newTestClient(t, mock, nil)
	ctx := context.Background()

	mock.SetJSON("team/frc4099/media/tag/avatar/2023", `[{"type":"avatar","foreign_key":"avatar_2023_frc4099","preferred":false}]`)
	mock.SetJSON("team/frc4099/matches/2022/keys", `["2022mdbet_qm1"]`)
	mock.SetJSON("team/frc4099/matches/2023/keys", `["2023mdbet_qm1","2023mdbet_qm7"]`)
	mock.SetJSON("team/frc4099/events/keys", `["2019mdbet","2023mdbet"]`)
	mock.SetJSON("team/frc4099/event/2023mdbet/matches/keys", `["2023mdbet_qm1"]`)
	mock.SetJSON("team/frc4099/robots", `[{"year":2019,"robot_name":"Talon","key":"frc4099_2019","team_key":"frc4099"},
		{"year":2023,"robot_name":"Kestrel","key":"frc4099_2023","team_key":"frc4099"}]`)
	mock.SetJSON("team/frc4099/years_participated", `[2012,2013,2014]`)

	media, err := c.TeamMedia(ctx, "frc4099", fanout.Year(2023), "avatar")
	if err != nil || len(media) != 1 {
		t.Errorf("TeamMedia() = %v, %v", media, err)
	}

	matchKeys, err := c.TeamMatchKeys(ctx, "frc4099", fanout.YearRange(2022, 2024))
	if err != nil || strings.Join(matchKeys, ",") != "2022mdbet_qm1,2023mdbet_qm1,2023mdbet_qm7" {
		t.Errorf("TeamMatchKeys() = %v, %v", matchKeys, err)
	}

	eventKeys, err := c.TeamEventKeys(ctx, "frc4099", fanout.Years{})
	if err != nil || len(eventKeys) != 2 {
		t.Errorf("TeamEventKeys() = %v, %v", eventKeys, err)
	}

	keys, err := c.TeamEventMatchKeys(ctx, "frc4099", "2023mdbet")
	if err != nil || len(keys) != 1 {
		t.Errorf("TeamEventMatchKeys() = %v, %v", keys, err)
	}

	robots, err := c.TeamRobots(ctx, "frc4099", fanout.Year(2023))
	if err != nil || len(robots) != 1 || robots[0].RobotName != "Kestrel" {
		t.Errorf("TeamRobots() = %v, %v", robots, err)
	}

	years, err := c.TeamYearsParticipated(ctx, "frc4099")
	if err != nil || len(years) != 3 {
		t.Errorf("TeamYearsParticipated() = %v, %v", years, err)
	}
}

func TestMatchOperations(t *testing.T) {
	mock := newMock(t)
	mock.SetJSON("match/2023mdbet_qm1/simple", `{"key":"2023mdbet_qm1","comp_level":"qm","set_number":1,"match_number":1,
		"alliances":{"red":{"score":10,"team_keys":["frc1"]},"blue":{"score":5,"team_keys":["frc2"]}},
		"winning_alliance":"red","event_key":"2023mdbet","time":1679058000}`)
	mock.SetJSON("match/2023mdbet_qm1/zebra_motionworks", `{"key":"2023mdbet_qm1","times":[0,0.1],
		"alliances":{"red":[{"team_key":"frc1","xs":[1.5,null],"ys":[2.5,null]}]}}`)
	mock.SetJSON("match/2023mdbet_qm1/timeseries", `[{"mode":"auto"},{"mode":"teleop"}]`)

	c := newTestClient(t, mock, nil)
	ctx := context.Background()

	match, err := c.Match(ctx, "2023mdbet_qm1", ModeSimple)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if match.WinningAlliance == nil || *match.WinningAlliance != "red" {
		t.Errorf("WinningAlliance = %v", match.WinningAlliance)
	}

	zebra, err := c.MatchZebra(ctx, "2023mdbet_qm1")
	if err != nil {
		t.Fatalf("MatchZebra() error = %v", err)
	}
	if tracks := zebra.Alliances["red"]; len(tracks) != 1 || tracks[0].Xs[1] != nil {
		t.Errorf("zebra red tracks = %+v", tracks)
	}

	series, err := c.MatchTimeseries(ctx, "2023mdbet_qm1")
	if err != nil || len(series) != 2 {
		t.Errorf("MatchTimeseries() = %d frames, %v", len(series), err)
	}
}

func TestDistrictOperations(t *testing.T) {
	mock := newMock(t)
	mock.SetJSON("districts/2022", `[{"abbreviation":"chs","display_name":"FIRST Chesapeake","key":"2022chs","year":2022}]`)
	mock.SetJSON("districts/2023", `[{"abbreviation":"chs","display_name":"FIRST Chesapeake","key":"2023chs","year":2023},
		{"abbreviation":"ne","display_name":"New England","key":"2023ne","year":2023}]`)
	mock.SetJSON("district/2023chs/teams/keys", `["frc4099"]`)
	mock.SetJSON("district/2023chs/rankings", `[{"team_key":"frc4099","rank":3,"rookie_bonus":0,"point_total":140,
		"event_points":[{"event_key":"2023mdbet","district_cmp":false,"total":70,"alliance_points":10,"elim_points":20,"award_points":5,"qual_points":35}]}]`)

	c := newTestClient(t, mock, nil)
	ctx := context.Background()

	districts, err := c.Districts(ctx, fanout.YearRange(2022, 2024))
	if err != nil || len(districts) != 3 || districts[0].Year != 2022 {
		t.Errorf("Districts() = %+v, %v", districts, err)
	}

	keys, err := c.DistrictTeamKeys(ctx, "2023chs")
	if err != nil || len(keys) != 1 {
		t.Errorf("DistrictTeamKeys() = %v, %v", keys, err)
	}

	rankings, err := c.DistrictRankings(ctx, "2023chs")
	if err != nil || len(rankings) != 1 || rankings[0].EventPoints[0].QualPoints != 35 {
		t.Errorf("DistrictRankings() = %+v, %v", rankings, err)
	}
}

func TestSession_NonPersistentTornDownAfterCall(t *testing.T) {
	mock := newMock(t)
	mock.SetJSON("status", `{"current_season":2024,"max_season":2024,"is_datafeed_down":false,"down_events":[]}`)
	c := newTestClient(t, mock, nil)

	status, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.CurrentSeason != 2024 {
		t.Errorf("CurrentSeason = %d", status.CurrentSeason)
	}
	if c.sessionOpen() {
		t.Error("session should be torn down after the last in-flight call")
	}

	// Lazily recreated.
	if _, err := c.Status(context.Background()); err != nil {
		t.Fatalf("second Status() error = %v", err)
	}
}

func TestSession_ReleasedOnError(t *testing.T) {
	mock := newMock(t)
	c := newTestClient(t, mock, nil)

	if _, err := c.Status(context.Background()); err == nil {
		t.Fatal("expected 404 error from default handler")
	}
	if c.sessionOpen() {
		t.Error("session should be released on error paths")
	}
	c.mu.Lock()
	refs := c.refs
	c.mu.Unlock()
	if refs != 0 {
		t.Errorf("refs = %d, want 0", refs)
	}
}

func TestSession_PersistentSurvivesUntilClose(t *testing.T) {
	mock := newMock(t)
	mock.SetJSON("status", `{"current_season":2024}`)
	c := newTestClient(t, mock, func(cfg *Config) { cfg.PersistentSession = true })

	if _, err := c.Status(context.Background()); err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !c.sessionOpen() {
		t.Error("persistent session should survive the call")
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if c.sessionOpen() {
		t.Error("Close should tear the session down")
	}
	if err := c.Close(); !errors.Is(err, ErrClientClosed) {
		t.Errorf("second Close() error = %v, want ErrClientClosed", err)
	}
	if _, err := c.Status(context.Background()); !errors.Is(err, ErrClientClosed) {
		t.Errorf("Status() after Close error = %v, want ErrClientClosed", err)
	}
}

func TestSession_SharedAcrossConcurrentCalls(t *testing.T) {
	c := newTestClient(t, newMock(t), nil)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		sessions = map[*session]struct{}{}
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := c.acquire()
			if err != nil {
				t.Errorf("acquire() error = %v", err)
				return
			}
			defer c.release()
			mu.Lock()
			sessions[s] = struct{}{}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
		}()
	}
	wg.Wait()

	if c.sessionOpen() {
		t.Error("session should be torn down once all calls released it")
	}
	if len(sessions) == 0 || len(sessions) > 5 {
		t.Errorf("unexpected session count %d", len(sessions))
	}
}

func TestCache_FreshHitSkipsNetwork(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	mock := newMock(t)
	mock.SetJSON("team/frc4099/simple", `{"key":"frc4099","team_number":4099}`)
	c := newTestClient(t, mock, func(cfg *Config) { cfg.Redis = redisClient })
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		team, err := c.Team(ctx, "frc4099", ModeSimple)
		if err != nil {
			t.Fatalf("Team() #%d error = %v", i, err)
		}
		if team.TeamNumber != 4099 {
			t.Errorf("TeamNumber = %d", team.TeamNumber)
		}
	}
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("RequestCount = %d, want 1", got)
	}
	if !mr.Exists("tba:team/frc4099/simple") {
		t.Error("response should be cached under tba:team/frc4099/simple")
	}
}

func TestCache_StaleEntryRevalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	mock := newMock(t)
	mock.SetHandler("status", testutil.NewConditionalHandler(`"v1"`, `{"current_season":2024}`, 0))
	c := newTestClient(t, mock, func(cfg *Config) { cfg.Redis = redisClient })
	ctx := context.Background()

	if _, err := c.Status(ctx); err != nil {
		t.Fatalf("first Status() error = %v", err)
	}
	status, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("second Status() error = %v", err)
	}
	if status.CurrentSeason != 2024 {
		t.Errorf("CurrentSeason = %d, want 2024 from cached body", status.CurrentSeason)
	}
	if got := mock.GetConditionalCount(); got != 1 {
		t.Errorf("ConditionalCount = %d, want 1", got)
	}
	if got := mock.GetRequestCount(); got != 2 {
		t.Errorf("RequestCount = %d, want 2", got)
	}
}

func TestCache_RedisFailureDoesNotFailCall(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { redisClient.Close() })
	mr.Close()

	mock := newMock(t)
	mock.SetJSON("status", `{"current_season":2024}`)
	c := newTestClient(t, mock, func(cfg *Config) { cfg.Redis = redisClient })

	if _, err := c.Status(context.Background()); err != nil {
		t.Errorf("Status() error = %v, want success without cache", err)
	}
}
