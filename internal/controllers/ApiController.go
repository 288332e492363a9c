package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
	"go.uber.org/atomic"

	"streakd/internal/models"
	"streakd/internal/providers"
	"streakd/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger   providers.Logger
	streaks  services.StreakServiceInterface
	tracking services.TrackingServiceInterface
	cache    providers.CacheProviderInterface

	// cacheGen moves on every invalidation. A response computed under an
	// older generation is served but never cached.
	cacheMu  sync.Mutex
	cacheGen atomic.Uint64
}

func NewApiController(logger providers.Logger, streaks services.StreakServiceInterface, tracking services.TrackingServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:   logger,
		streaks:  streaks,
		tracking: tracking,
		cache:    cache,
	}
}

type recordRequest struct {
	Channel string `json:"channel"`
	User    string `json:"user"`
	Ts      any    `json:"ts"`
}

type recordResponse struct {
	Tracked bool `json:"tracked"`
	*models.RecordResult
}

type streakResponse struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	*models.UserStreak
	Message string `json:"message"`
}

type leaderboardResponse struct {
	ChannelID string                    `json:"channel_id"`
	Entries   []models.LeaderboardEntry `json:"entries"`
	Message   string                    `json:"message"`
}

type trackingRequest struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
	Mode    string `json:"mode"`
}

type trackingResponse struct {
	Action     string              `json:"action,omitempty"`
	Changed    bool                `json:"changed"`
	Restricted bool                `json:"restricted"`
	Mode       models.TrackingMode `json:"mode"`
	Channels   []string            `json:"channels"`
	Message    string              `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	gson, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

// writeError maps error kinds onto status codes.
func (ac *ApiController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logType := providers.GetLogTypeByRequestType(r.Method)
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		ac.logger.Debugf(logType, "%s %s rejected: %v", r.Method, r.URL.Path, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrStoreUnavailable):
		ac.logger.Errorf(logType, "%s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
	default:
		ac.logger.Errorf(logType, "%s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (ac *ApiController) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed body: %v", models.ErrInvalidInput, err)
	}
	return nil
}

func (ac *ApiController) invalidateCache() {
	ac.cacheMu.Lock()
	defer ac.cacheMu.Unlock()
	ac.cacheGen.Inc()
	ac.cache.Clear()
}

func (ac *ApiController) cacheIfCurrent(gen uint64, key string, value []byte) {
	ac.cacheMu.Lock()
	defer ac.cacheMu.Unlock()
	if ac.cacheGen.Load() == gen {
		ac.cache.Set(key, value)
	}
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, cacheKey string, compute func() (any, error)) {
	gen := ac.cacheGen.Load()
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.writeError(w, r, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cacheIfCurrent(gen, cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// Record counts a message for its author unless the channel is not tracked.
func (ac *ApiController) Record(w http.ResponseWriter, r *http.Request) {
	var payload recordRequest
	if err := ac.decode(w, r, &payload); err != nil {
		ac.writeError(w, r, err)
		return
	}
	if err := models.ValidateID("channel", payload.Channel); err != nil {
		ac.writeError(w, r, err)
		return
	}
	if err := models.ValidateID("user", payload.User); err != nil {
		ac.writeError(w, r, err)
		return
	}
	ts, err := models.ParseTimestamp(payload.Ts)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}

	tracked, err := ac.tracking.IsChannelTracked(payload.Channel)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	if !tracked {
		writeJSON(w, http.StatusOK, recordResponse{Tracked: false})
		return
	}

	result, err := ac.streaks.Record(payload.Channel, payload.User, ts)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	if result.IsNewDay {
		ac.invalidateCache()
	}
	writeJSON(w, http.StatusOK, recordResponse{Tracked: true, RecordResult: result})
}

func (ac *ApiController) GetStreak(w http.ResponseWriter, r *http.Request) {
	ch := r.URL.Query().Get("ch")
	user := r.URL.Query().Get("u")
	if ch == "" || user == "" {
		ac.writeError(w, r, fmt.Errorf("%w: ch and u are required", models.ErrInvalidInput))
		return
	}

	streak, err := ac.streaks.GetUserStreak(ch, user)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}

	resp := streakResponse{
		ChannelID:  ch,
		UserID:     user,
		UserStreak: streak,
		Message:    services.FormatUserStreak(user, streak),
	}
	if streak == nil {
		writeJSON(w, http.StatusNotFound, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (ac *ApiController) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ch := r.URL.Query().Get("ch")
	if ch == "" {
		ac.writeError(w, r, fmt.Errorf("%w: ch is required", models.ErrInvalidInput))
		return
	}
	limit := services.DefaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := cast.ToIntE(raw)
		if err != nil {
			ac.writeError(w, r, fmt.Errorf("%w: limit %q is not a number", models.ErrInvalidInput, raw))
			return
		}
		if n > 0 {
			limit = n
		}
	}

	ac.serveFromCacheOrCompute(w, r, fmt.Sprintf("leaderboard:%s:%d", ch, limit), func() (any, error) {
		entries, err := ac.streaks.Leaderboard(ch, limit)
		if err != nil {
			return nil, err
		}
		return leaderboardResponse{
			ChannelID: ch,
			Entries:   entries,
			Message:   services.FormatLeaderboard(entries),
		}, nil
	})
}

func (ac *ApiController) trackingState() (*trackingResponse, error) {
	mode, err := ac.tracking.TrackingMode()
	if err != nil {
		return nil, err
	}
	channels, err := ac.tracking.TrackedChannels()
	if err != nil {
		return nil, err
	}
	restricted := mode == models.TrackingModeLimited
	return &trackingResponse{
		Restricted: restricted,
		Mode:       mode,
		Channels:   channels,
		Message:    services.FormatTrackingStatus(restricted, channels),
	}, nil
}

func (ac *ApiController) GetTracking(w http.ResponseWriter, r *http.Request) {
	state, err := ac.trackingState()
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// UpdateTracking applies one tracking action, or a raw mode switch when only
// "mode" is given.
func (ac *ApiController) UpdateTracking(w http.ResponseWriter, r *http.Request) {
	var payload trackingRequest
	if err := ac.decode(w, r, &payload); err != nil {
		ac.writeError(w, r, err)
		return
	}

	if payload.Action == "" && payload.Mode != "" {
		if err := ac.tracking.SetTrackingMode(payload.Mode); err != nil {
			ac.writeError(w, r, err)
			return
		}
		ac.respondTracking(w, r, "", true, "")
		return
	}

	action, err := services.ParseTrackingAction(payload.Action)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}

	var changed bool
	switch action {
	case services.TrackingActionEnable, services.TrackingActionDisable:
		if payload.Channel == "" {
			ac.writeError(w, r, fmt.Errorf("%w: channel is required for %s", models.ErrInvalidInput, action))
			return
		}
		if action == services.TrackingActionEnable {
			changed, err = ac.tracking.EnableChannel(payload.Channel)
		} else {
			changed, err = ac.tracking.DisableChannel(payload.Channel)
		}
	case services.TrackingActionReset:
		err = ac.tracking.ResetChannelTracking()
		changed = true
	}
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.respondTracking(w, r, action, changed, services.FormatTrackingChange(action, changed))
}

func (ac *ApiController) respondTracking(w http.ResponseWriter, r *http.Request, action string, changed bool, message string) {
	state, err := ac.trackingState()
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	state.Action = action
	state.Changed = changed
	if message != "" {
		state.Message = message
	}
	writeJSON(w, http.StatusOK, state)
}
