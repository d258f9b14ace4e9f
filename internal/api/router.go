package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", PingHandler)

	r.Get("/keywords", app.ListKeywordsHandler)
	r.Post("/keywords", app.AddKeywordsHandler)
	r.Get("/keywords/{keyword}", app.GetKeywordHandler)

	r.Get("/videos", app.ListVideosHandler)
	r.Post("/videos", app.SubmitVideoHandler)
	r.Get("/videos/{id}/predictions", app.VideoPredictionsHandler)

	r.Post("/aggregate", app.AggregateHandler)

	return r
}
