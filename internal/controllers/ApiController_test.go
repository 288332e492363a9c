package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"streakd/internal/models"
	"streakd/internal/testutil"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ac       *ApiController
	streaks  *testutil.MockStreakService
	tracking *testutil.MockTrackingService
	cache    *testutil.MockCache
	logger   *testutil.MockLogger
}

func newFixture() *fixture {
	f := &fixture{
		streaks:  &testutil.MockStreakService{},
		tracking: testutil.NewMockTrackingService(),
		cache:    testutil.NewMockCache(),
		logger:   &testutil.MockLogger{},
	}
	f.ac = NewApiController(f.logger, f.streaks, f.tracking, f.cache)
	return f
}

func post(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func get(handler http.HandlerFunc, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

// --- Record ---

func TestRecord_RejectsNULInIDs(t *testing.T) {
	f := newFixture()
	for _, body := range []string{
		`{"channel":"C1\u0000X","user":"U1"}`,
		`{"channel":"C1","user":"U\u0000x"}`,
	} {
		rr := post(f.ac.Record, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
	assert.Empty(t, f.streaks.RecordCalls)
}

func TestRecord_ValidPayload(t *testing.T) {
	f := newFixture()
	f.cache.Set("leaderboard:C1:10", []byte("stale"))

	rr := post(f.ac.Record, `{"channel":"C1","user":"U1","ts":"1704067200.000100"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, f.streaks.RecordCalls, 1)
	call := f.streaks.RecordCalls[0]
	assert.Equal(t, "C1", call.Channel)
	assert.Equal(t, "U1", call.User)
	require.NotNil(t, call.Ts)
	assert.InDelta(t, 1704067200.0001, *call.Ts, 1e-6)

	resp := decodeMap(t, rr)
	assert.Equal(t, true, resp["tracked"])
	assert.Equal(t, float64(1), resp["streak_length"])
	assert.Equal(t, true, resp["is_new_day"])
	assert.NotContains(t, resp, "milestone_message")
	assert.Equal(t, 1, f.cache.Clears)
}

func TestRecord_NumericAndMissingTimestamp(t *testing.T) {
	f := newFixture()
	post(f.ac.Record, `{"channel":"C1","user":"U1","ts":1704067200}`)
	post(f.ac.Record, `{"channel":"C1","user":"U1"}`)

	require.Len(t, f.streaks.RecordCalls, 2)
	require.NotNil(t, f.streaks.RecordCalls[0].Ts)
	assert.Equal(t, 1704067200.0, *f.streaks.RecordCalls[0].Ts)
	assert.Nil(t, f.streaks.RecordCalls[1].Ts)
}

func TestRecord_Milestone(t *testing.T) {
	f := newFixture()
	msg := ":tada: <@U1> just hit a 1 week streak!"
	f.streaks.RecordResult = &models.RecordResult{ChannelID: "C1", UserID: "U1", StreakLength: 7, MilestoneMessage: &msg, IsNewDay: true, CountedTowardStreak: true}

	rr := post(f.ac.Record, `{"channel":"C1","user":"U1"}`)
	assert.Equal(t, msg, decodeMap(t, rr)["milestone_message"])
}

func TestRecord_DuplicateKeepsCache(t *testing.T) {
	f := newFixture()
	f.streaks.RecordResult = &models.RecordResult{ChannelID: "C1", UserID: "U1", StreakLength: 3}

	post(f.ac.Record, `{"channel":"C1","user":"U1"}`)
	assert.Equal(t, 0, f.cache.Clears)
}

func TestRecord_UntrackedChannel(t *testing.T) {
	f := newFixture()
	_, err := f.tracking.EnableChannel("C1")
	require.NoError(t, err)

	rr := post(f.ac.Record, `{"channel":"C2","user":"U1"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, f.streaks.RecordCalls)
	assert.Equal(t, map[string]interface{}{"tracked": false}, decodeMap(t, rr))
}

func TestRecord_BadRequests(t *testing.T) {
	bodies := []string{
		`not json`,
		`{"user":"U1"}`,
		`{"channel":"C1"}`,
		`{"channel":"C1","user":"U1","ts":"yesterday"}`,
		`{"channel":"C1","user":"U1","ts":1e20}`,
	}
	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			f := newFixture()
			rr := post(f.ac.Record, body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Empty(t, f.streaks.RecordCalls)
		})
	}
}

func TestRecord_StoreUnavailable(t *testing.T) {
	f := newFixture()
	f.streaks.RecordErr = fmt.Errorf("%w: disk gone", models.ErrStoreUnavailable)

	rr := post(f.ac.Record, `{"channel":"C1","user":"U1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, 1, f.logger.Count("error"))
}

func TestRecord_TrackingLookupFails(t *testing.T) {
	f := newFixture()
	f.tracking.Err = fmt.Errorf("%w: closed", models.ErrStoreUnavailable)

	rr := post(f.ac.Record, `{"channel":"C1","user":"U1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Empty(t, f.streaks.RecordCalls)
}

func TestRecord_UnexpectedError(t *testing.T) {
	f := newFixture()
	f.streaks.RecordErr = errors.New("boom")

	rr := post(f.ac.Record, `{"channel":"C1","user":"U1"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

// --- GetStreak ---

func TestGetStreak_Found(t *testing.T) {
	f := newFixture()
	start := models.NewDate(2024, time.January, 1)
	f.streaks.Streaks = map[string]*models.UserStreak{
		"C1:U1": {CurrentStreak: 4, LongestStreak: 4, StreakStartDate: &start},
	}

	rr := get(f.ac.GetStreak, "/streak?ch=C1&u=U1")

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeMap(t, rr)
	assert.Equal(t, float64(4), resp["current_streak"])
	assert.Equal(t, "2024-01-01", resp["streak_start_date"])
	assert.Equal(t, "<@U1> is on a 4-day streak! That's their personal best!", resp["message"])
}

func TestGetStreak_NotFound(t *testing.T) {
	f := newFixture()
	rr := get(f.ac.GetStreak, "/streak?ch=C1&u=U1")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "<@U1> does not have an active streak yet.", decodeMap(t, rr)["message"])
}

func TestGetStreak_MissingParams(t *testing.T) {
	f := newFixture()
	assert.Equal(t, http.StatusBadRequest, get(f.ac.GetStreak, "/streak?ch=C1").Code)
	assert.Equal(t, http.StatusBadRequest, get(f.ac.GetStreak, "/streak?u=U1").Code)
}

// --- Leaderboard ---

func TestLeaderboard_ReturnsEntries(t *testing.T) {
	f := newFixture()
	f.streaks.Entries = map[string][]models.LeaderboardEntry{
		"C1": {{UserID: "U1", CurrentStreak: 5}, {UserID: "U2", CurrentStreak: 5}},
	}

	rr := get(f.ac.Leaderboard, "/leaderboard?ch=C1")

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp leaderboardResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "C1", resp.ChannelID)
	assert.Len(t, resp.Entries, 2)
	assert.True(t, strings.HasPrefix(resp.Message, ":trophy:"))
}

func TestLeaderboard_CachesResponse(t *testing.T) {
	f := newFixture()
	calls := 0
	f.streaks.LeaderboardFn = func(ch string, limit int) ([]models.LeaderboardEntry, error) {
		calls++
		assert.Equal(t, 3, limit)
		return []models.LeaderboardEntry{{UserID: "U1", CurrentStreak: 1}}, nil
	}

	first := get(f.ac.Leaderboard, "/leaderboard?ch=C1&limit=3")
	second := get(f.ac.Leaderboard, "/leaderboard?ch=C1&limit=3")

	assert.Equal(t, 1, calls)
	assert.Equal(t, first.Body.String(), second.Body.String())
	_, ok := f.cache.Get("leaderboard:C1:3")
	assert.True(t, ok)
}

func TestLeaderboard_RecordDuringComputeIsNotCachedStale(t *testing.T) {
	f := newFixture()
	calls := 0
	f.streaks.LeaderboardFn = func(ch string, limit int) ([]models.LeaderboardEntry, error) {
		calls++
		if calls == 1 {
			// A new-day record commits while this read is in flight.
			rr := post(f.ac.Record, `{"channel":"C1","user":"U2"}`)
			require.Equal(t, http.StatusOK, rr.Code)
			return []models.LeaderboardEntry{{UserID: "U1", CurrentStreak: 1}}, nil
		}
		return []models.LeaderboardEntry{{UserID: "U1", CurrentStreak: 1}, {UserID: "U2", CurrentStreak: 1}}, nil
	}

	stale := get(f.ac.Leaderboard, "/leaderboard?ch=C1")
	assert.Equal(t, http.StatusOK, stale.Code)
	_, cached := f.cache.Get("leaderboard:C1:10")
	assert.False(t, cached)
	assert.Equal(t, 1, f.cache.Clears)

	fresh := get(f.ac.Leaderboard, "/leaderboard?ch=C1")
	var resp leaderboardResponse
	require.NoError(t, json.Unmarshal(fresh.Body.Bytes(), &resp))
	assert.Len(t, resp.Entries, 2)
	assert.Equal(t, 2, calls)
	_, cached = f.cache.Get("leaderboard:C1:10")
	assert.True(t, cached)
}

func TestLeaderboard_DefaultLimit(t *testing.T) {
	f := newFixture()
	var got int
	f.streaks.LeaderboardFn = func(_ string, limit int) ([]models.LeaderboardEntry, error) {
		got = limit
		return nil, nil
	}
	rr := get(f.ac.Leaderboard, "/leaderboard?ch=C1&limit=0")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 10, got)
	assert.Equal(t, "No streaks recorded yet.", decodeMap(t, rr)["message"])
}

func TestLeaderboard_BadLimit(t *testing.T) {
	f := newFixture()
	rr := get(f.ac.Leaderboard, "/leaderboard?ch=C1&limit=lots")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLeaderboard_ErrorNotCached(t *testing.T) {
	f := newFixture()
	f.streaks.QueryErr = fmt.Errorf("%w: closed", models.ErrStoreUnavailable)

	rr := get(f.ac.Leaderboard, "/leaderboard?ch=C1")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Empty(t, f.cache.Data)
}

// --- Tracking ---

func TestGetTracking_DefaultAll(t *testing.T) {
	f := newFixture()
	rr := get(f.ac.GetTracking, "/tracking")

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeMap(t, rr)
	assert.Equal(t, false, resp["restricted"])
	assert.Equal(t, "all", resp["mode"])
	assert.Equal(t, []interface{}{}, resp["channels"])
}

func TestUpdateTracking_EnableDisableReset(t *testing.T) {
	f := newFixture()

	rr := post(f.ac.UpdateTracking, `{"action":"on","channel":"C1"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeMap(t, rr)
	assert.Equal(t, "enable", resp["action"])
	assert.Equal(t, true, resp["changed"])
	assert.Equal(t, true, resp["restricted"])
	assert.Equal(t, []interface{}{"C1"}, resp["channels"])

	rr = post(f.ac.UpdateTracking, `{"action":"enable","channel":"C1"}`)
	assert.Equal(t, false, decodeMap(t, rr)["changed"])

	rr = post(f.ac.UpdateTracking, `{"action":"stop","channel":"C1"}`)
	resp = decodeMap(t, rr)
	assert.Equal(t, "disable", resp["action"])
	assert.Equal(t, true, resp["changed"])

	rr = post(f.ac.UpdateTracking, `{"action":"reset"}`)
	resp = decodeMap(t, rr)
	assert.Equal(t, false, resp["restricted"])
	assert.Equal(t, "all", resp["mode"])
}

func TestUpdateTracking_Status(t *testing.T) {
	f := newFixture()
	_, _ = f.tracking.EnableChannel("C2")
	_, _ = f.tracking.EnableChannel("C1")

	rr := post(f.ac.UpdateTracking, `{"action":"list"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Streaks are tracked only in these channels: `C1`, `C2`.", decodeMap(t, rr)["message"])
}

func TestUpdateTracking_SetMode(t *testing.T) {
	f := newFixture()
	rr := post(f.ac.UpdateTracking, `{"mode":"limited"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "limited", decodeMap(t, rr)["mode"])

	rr = post(f.ac.UpdateTracking, `{"mode":"sometimes"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateTracking_BadRequests(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"action":"dance"}`,
		`{"action":"enable"}`,
		`{"action":"disable"}`,
		`[`,
	}
	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			f := newFixture()
			assert.Equal(t, http.StatusBadRequest, post(f.ac.UpdateTracking, body).Code)
		})
	}
}
