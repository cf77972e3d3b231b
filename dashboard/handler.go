package dashboard

import (
	"net/http"
	"time"

	"swiggytracker/config"
	"swiggytracker/render"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Now is the clock presets are computed against.
var Now = time.Now

// chartSession picks the caller's chart session from the client query
// parameter. Requests without a valid client id draw on a throwaway one.
func chartSession(r *http.Request, sessions *render.Sessions) *render.Session {
	id, err := uuid.Parse(r.URL.Query().Get("client"))
	if err != nil {
		return render.NewSession()
	}
	return sessions.Get(id.String())
}

// DashboardHandler returns cards, charts and the recent-orders table for
// the stored orders, narrowed by the optional q parameter.
func DashboardHandler(db *sqlx.DB, sessions *render.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := Load(db)
		if err != nil {
			log.Error().Err(err).Msg("loading dashboard")
			render.WriteJSONError(w, "Failed to load orders.", http.StatusInternalServerError)
			return
		}
		state = state.Search(r.URL.Query().Get("q"))

		view := render.BuildView(chartSession(r, sessions), render.ViewInput{
			Orders:   state.Active(),
			SyncedAt: state.SyncedAt,
			Term:     state.Term,
			Location: config.GetConfig().Location(),
		})
		render.WriteJSON(w, http.StatusOK, view)
	}
}

// CloseSessionHandler drops the chart session of a dashboard page that
// is going away.
func CloseSessionHandler(sessions *render.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.URL.Query().Get("client"))
		if err != nil {
			render.WriteJSONError(w, "client must be a UUID.", http.StatusBadRequest)
			return
		}
		sessions.Close(id.String())
		w.WriteHeader(http.StatusNoContent)
	}
}

func PresetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rng, err := Preset(chi.URLParam(r, "name"), Now().In(config.GetConfig().Location()))
		if err != nil {
			render.WriteJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		render.WriteJSON(w, http.StatusOK, rng)
	}
}
