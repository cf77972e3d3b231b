package orders

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"swiggytracker/database"
	"swiggytracker/model"
	"swiggytracker/render"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Now dates export file names.
var Now = time.Now

type listResponse struct {
	Orders       []model.OrderRecord `json:"orders"`
	LastSyncedAt *time.Time          `json:"lastSyncedAt"`
}

// ListHandler returns the stored orders, filtered by q when present.
func ListHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := database.LoadSyncResult(db)
		if err != nil {
			log.Error().Err(err).Msg("loading orders")
			render.WriteJSONError(w, "Failed to load orders.", http.StatusInternalServerError)
			return
		}
		render.WriteJSON(w, http.StatusOK, listResponse{
			Orders:       Filter(res.Orders, r.URL.Query().Get("q")),
			LastSyncedAt: res.SyncedAt,
		})
	}
}

// ExportHandler downloads the stored orders matching q as CSV.
func ExportHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := database.LoadSyncResult(db)
		if err != nil {
			log.Error().Err(err).Msg("loading orders for export")
			render.WriteJSONError(w, "Failed to load orders.", http.StatusInternalServerError)
			return
		}

		body, err := ExportCSV(Filter(res.Orders, r.URL.Query().Get("q")))
		if errors.Is(err, ErrEmptyExport) {
			render.WriteJSONError(w, "No orders to export.", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("building export")
			render.WriteJSONError(w, "Failed to build export.", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, ExportFileName(Now())))
		w.Write(body)
	}
}
