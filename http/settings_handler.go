package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/photofeed/internal/feed"
	"github.com/yourorg/photofeed/internal/store"
	"github.com/yourorg/photofeed/unsplash"
)

type SettingsDeps struct {
	Client *unsplash.Client
	Store  *store.Store // nil when DATABASE_URL is unset
	Feed   *feed.Service
}

type settingsRequest struct {
	AccessKey   string `json:"access_key"`
	PerPage     *int   `json:"per_page,omitempty"`
	ColumnCount *int   `json:"column_count,omitempty"`
}

func RegisterSettings(r chi.Router, d SettingsDeps) {
	// Fire-and-forget validation of a caller-supplied key; the feed's own
	// credential and state are untouched.
	r.Post("/settings/access-key/test", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			AccessKey string `json:"access_key"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "invalid_json", "detail": err.Error()})
			return
		}
		if body.AccessKey == "" {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "access_key_required"})
			return
		}
		if err := d.Client.TestAccess(req.Context(), body.AccessKey); err != nil {
			render.JSON(w, req, map[string]any{"ok": true, "valid": false, "detail": err.Error()})
			return
		}
		render.JSON(w, req, map[string]any{"ok": true, "valid": true})
	})

	r.Get("/settings", func(w http.ResponseWriter, req *http.Request) {
		if d.Store == nil {
			render.Status(req, http.StatusNotFound)
			render.JSON(w, req, map[string]any{"error": "store_disabled"})
			return
		}
		s, err := d.Store.LoadSettings(req.Context())
		if errors.Is(err, store.ErrNoSettings) {
			render.Status(req, http.StatusNotFound)
			render.JSON(w, req, map[string]any{"error": "no_settings"})
			return
		}
		if err != nil {
			render.Status(req, http.StatusInternalServerError)
			render.JSON(w, req, map[string]any{"error": "settings_error", "detail": err.Error()})
			return
		}
		render.JSON(w, req, map[string]any{
			"ok":           true,
			"access_key":   maskKey(s.AccessKey),
			"per_page":     s.PerPage,
			"column_count": s.ColumnCount,
			"updated_at":   s.UpdatedAt,
		})
	})

	// Keys are validated upstream before they are saved.
	r.Put("/settings", func(w http.ResponseWriter, req *http.Request) {
		if d.Store == nil {
			render.Status(req, http.StatusNotFound)
			render.JSON(w, req, map[string]any{"error": "store_disabled"})
			return
		}
		var body settingsRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "invalid_json", "detail": err.Error()})
			return
		}
		if body.AccessKey == "" {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "access_key_required"})
			return
		}
		if err := d.Client.TestAccess(req.Context(), body.AccessKey); err != nil {
			render.Status(req, http.StatusUnprocessableEntity)
			render.JSON(w, req, map[string]any{"error": "invalid_access_key", "detail": err.Error()})
			return
		}

		in := store.Settings{AccessKey: body.AccessKey}
		if body.PerPage != nil {
			in.PerPage = *body.PerPage
		}
		if body.ColumnCount != nil {
			in.ColumnCount = *body.ColumnCount
		}
		if err := d.Store.SaveSettings(req.Context(), in); err != nil {
			render.Status(req, http.StatusInternalServerError)
			render.JSON(w, req, map[string]any{"error": "settings_error", "detail": err.Error()})
			return
		}
		// Saved settings take effect immediately, not on next restart.
		d.Client.SetAccessKey(body.AccessKey)
		if body.PerPage != nil {
			d.Client.SetPerPage(*body.PerPage)
		}
		if body.ColumnCount != nil && d.Feed != nil {
			d.Feed.ChangeColumnCount(*body.ColumnCount)
		}
		log.Printf("[INFO] settings saved (key %s)", maskKey(body.AccessKey))
		render.JSON(w, req, map[string]any{"ok": true})
	})
}

// maskKey keeps only the last four characters of a credential for display.
func maskKey(k string) string {
	if len(k) <= 4 {
		return strings.Repeat("*", len(k))
	}
	return strings.Repeat("*", len(k)-4) + k[len(k)-4:]
}
