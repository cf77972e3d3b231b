package main

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"

	"swiggytracker/dashboard"
	"swiggytracker/metrics"
	"swiggytracker/orders"
	"swiggytracker/ordersync"
	"swiggytracker/render"
)

type Deps struct {
	DB       *sqlx.DB
	Sync     *ordersync.Service
	Metrics  *metrics.Registry
	Charts   *render.Sessions
	StaticFS fs.FS
}

func SetupRoutes(r chi.Router, d Deps) {
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/orders/sync", ordersync.FetchDataHandler(d.Sync))
		r.Get("/orders", orders.ListHandler(d.DB))
		r.Get("/orders/export", orders.ExportHandler(d.DB))
		r.Get("/dashboard", dashboard.DashboardHandler(d.DB, d.Charts))
		r.Post("/dashboard/close", dashboard.CloseSessionHandler(d.Charts))
		r.Get("/presets/{name}", dashboard.PresetHandler())
		r.Get("/config", GetConfigHandler())
		r.Post("/config", SaveConfigHandler())
	})
	r.Handle("/metrics", d.Metrics.Handler())

	if d.StaticFS != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(d.StaticFS)))
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.ServeFileFS(w, req, d.StaticFS, "index.html")
		})
	}
}
