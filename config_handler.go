package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"swiggytracker/config"
	"swiggytracker/render"
)

// GetConfigHandler returns the current settings.
func GetConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.WriteJSON(w, http.StatusOK, config.GetConfig())
	}
}

// SaveConfigHandler validates and persists the posted settings.
func SaveConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var newCfg config.Config
		if err := json.NewDecoder(r.Body).Decode(&newCfg); err != nil {
			render.WriteJSONError(w, "Request body is not valid JSON.", http.StatusBadRequest)
			return
		}

		if err := config.SaveConfig(newCfg); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				render.WriteJSONError(w, describeInvalid(verrs), http.StatusBadRequest)
				return
			}
			log.Error().Err(err).Msg("saving config")
			render.WriteJSONError(w, "Failed to save settings.", http.StatusInternalServerError)
			return
		}

		render.WriteJSON(w, http.StatusOK, map[string]string{"message": "Settings saved."})
	}
}

func describeInvalid(verrs validator.ValidationErrors) string {
	fe := verrs[0]
	return "Invalid setting " + fe.Field() + " (" + fe.Tag() + ")."
}
