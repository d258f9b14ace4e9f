// Package api exposes the JSON surface for keyword management, video
// submission, and prediction queries.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/markusc/posescout/internal/database"
	"github.com/markusc/posescout/internal/metrics"
	"github.com/markusc/posescout/internal/models"
)

const maxBodyBytes = 1 << 20

type App struct {
	Keywords   *database.KeywordRepo
	Videos     *database.VideoRepo
	Scenes     *database.SceneRepo
	Aggregator *metrics.Aggregator
	APIToken   string
	Logger     *slog.Logger
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

type keywordResponse struct {
	Keyword       string    `json:"keyword"`
	LastProcessed time.Time `json:"last_processed"`
	UseCounter    int       `json:"use_counter"`
	QualityMetric float64   `json:"quality_metric"`
}

func toKeywordResponse(kw models.Keyword) keywordResponse {
	return keywordResponse{
		Keyword:       kw.Text,
		LastProcessed: kw.LastProcessed,
		UseCounter:    kw.UseCounter,
		QualityMetric: kw.QualityMetric,
	}
}

func (app *App) ListKeywordsHandler(w http.ResponseWriter, r *http.Request) {
	keywords, err := app.Keywords.List(r.Context())
	if err != nil {
		app.serverError(w, "failed to list keywords", err)
		return
	}

	resp := make([]keywordResponse, 0, len(keywords))
	for _, kw := range keywords {
		resp = append(resp, toKeywordResponse(kw))
	}
	app.writeJSON(w, http.StatusOK, resp)
}

func (app *App) GetKeywordHandler(w http.ResponseWriter, r *http.Request) {
	kw, err := app.Keywords.GetByText(r.Context(), chi.URLParam(r, "keyword"))
	if errors.Is(err, database.ErrNotFound) {
		app.writeError(w, http.StatusNotFound, "keyword not found")
		return
	}
	if err != nil {
		app.serverError(w, "failed to get keyword", err)
		return
	}
	app.writeJSON(w, http.StatusOK, toKeywordResponse(*kw))
}

// AddKeywordsHandler accepts either a JSON array of keywords or a plain
// comma-separated text body. Duplicates and empties are silently
// skipped.
func (app *App) AddKeywordsHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		app.writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	var keywords []string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(body, &keywords); err != nil {
			app.writeError(w, http.StatusBadRequest, "expected a JSON array of keywords")
			return
		}
	} else {
		keywords = strings.Split(string(body), ",")
	}

	added := 0
	for _, kw := range keywords {
		if models.NormalizeKeyword(kw) == "" {
			continue
		}
		if err := app.Keywords.Upsert(r.Context(), kw); err != nil {
			app.serverError(w, "failed to add keyword", err)
			return
		}
		added++
	}

	app.writeJSON(w, http.StatusCreated, map[string]int{"accepted": added})
}

type videoResponse struct {
	ID            string  `json:"id"`
	URL           string  `json:"url"`
	OriginKeyword string  `json:"origin_keyword,omitempty"`
	IsProcessed   bool    `json:"is_processed"`
	Duration      float64 `json:"duration,omitempty"`
}

func (app *App) ListVideosHandler(w http.ResponseWriter, r *http.Request) {
	var processed *bool
	if v := r.URL.Query().Get("processed"); v != "" {
		b := v == "true" || v == "1"
		processed = &b
	}

	videos, err := app.Videos.List(r.Context(), processed)
	if err != nil {
		app.serverError(w, "failed to list videos", err)
		return
	}

	resp := make([]videoResponse, 0, len(videos))
	for _, v := range videos {
		resp = append(resp, videoResponse{
			ID:            v.ID,
			URL:           v.URL,
			OriginKeyword: v.OriginKeyword,
			IsProcessed:   v.IsProcessed,
			Duration:      v.Duration,
		})
	}
	app.writeJSON(w, http.StatusOK, resp)
}

type submitVideoRequest struct {
	URL      string `json:"url"`
	Keyword  string `json:"keyword"`
	Password string `json:"password"`
}

// SubmitVideoHandler registers a video URL by hand, outside keyword
// search. Writes require the shared password; an empty configured
// token disables the endpoint entirely.
func (app *App) SubmitVideoHandler(w http.ResponseWriter, r *http.Request) {
	var req submitVideoRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		app.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if app.APIToken == "" || req.Password != app.APIToken {
		app.writeError(w, http.StatusForbidden, "invalid password")
		return
	}
	if req.URL == "" {
		app.writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	if req.Keyword != "" {
		if err := app.Keywords.Upsert(r.Context(), req.Keyword); err != nil {
			app.serverError(w, "failed to record keyword", err)
			return
		}
	}

	added, err := app.Videos.InsertURLs(r.Context(), []string{req.URL}, req.Keyword)
	if err != nil {
		app.serverError(w, "failed to record video", err)
		return
	}

	app.writeJSON(w, http.StatusCreated, map[string]any{"url": req.URL, "new": added > 0})
}

type predictionResponse struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Label     string  `json:"label"`
}

func (app *App) VideoPredictionsHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := app.Videos.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			app.writeError(w, http.StatusNotFound, "video not found")
			return
		}
		app.serverError(w, "failed to get video", err)
		return
	}

	scenes, err := app.Scenes.ListByVideo(r.Context(), id)
	if err != nil {
		app.serverError(w, "failed to list predictions", err)
		return
	}

	resp := make([]predictionResponse, 0, len(scenes))
	for _, sc := range scenes {
		resp = append(resp, predictionResponse{
			StartTime: sc.StartTime,
			EndTime:   sc.EndTime,
			Label:     string(sc.Label),
		})
	}
	app.writeJSON(w, http.StatusOK, resp)
}

type aggregateRequest struct {
	Keyword string `json:"keyword"`
}

// AggregateHandler triggers a quality-metric recompute, for one keyword
// when the body names one, otherwise for every used keyword.
func (app *App) AggregateHandler(w http.ResponseWriter, r *http.Request) {
	var req aggregateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
			app.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	if req.Keyword != "" {
		metric, err := app.Aggregator.ScoreKeyword(r.Context(), req.Keyword)
		if errors.Is(err, database.ErrNotFound) {
			app.writeError(w, http.StatusNotFound, "keyword not found")
			return
		}
		if errors.Is(err, metrics.ErrUnusedKeyword) {
			app.writeError(w, http.StatusConflict, "keyword has not been used yet")
			return
		}
		if err != nil {
			app.serverError(w, "failed to score keyword", err)
			return
		}
		app.writeJSON(w, http.StatusOK, map[string]any{"keyword": models.NormalizeKeyword(req.Keyword), "quality_metric": metric})
		return
	}

	if err := app.Aggregator.ScoreAll(r.Context()); err != nil {
		app.serverError(w, "failed to score keywords", err)
		return
	}
	app.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (app *App) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.Logger.Error("failed to encode response", "error", err)
	}
}

func (app *App) writeError(w http.ResponseWriter, status int, message string) {
	app.writeJSON(w, status, map[string]string{"error": message})
}

func (app *App) serverError(w http.ResponseWriter, message string, err error) {
	app.Logger.Error(message, "error", err)
	app.writeError(w, http.StatusInternalServerError, message)
}
