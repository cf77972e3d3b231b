package ordersync

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"swiggytracker/automation"
	"swiggytracker/render"

	"github.com/rs/zerolog/log"
)

// FetchDataHandler runs a sync for the JSON body {startDate?, endDate?}.
func FetchDataHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FetchDataRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			render.WriteJSON(w, http.StatusBadRequest, FetchDataResponse{Error: "request body is not valid JSON"})
			return
		}

		res, err := svc.Run(r.Context(), req)
		if err != nil {
			log.Warn().Err(err).Msg("sync failed")
		}
		render.WriteJSON(w, statusFor(err), ToResponse(res, err))
	}
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrSyncInProgress):
		return http.StatusConflict
	case errors.Is(err, automation.ErrNoActiveSource):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
