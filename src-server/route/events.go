package route

import (
	"encoding/json"
	"errors"
	"joincal/src-server/model"
	"joincal/src-server/natural"
	"joincal/src-server/utils"
	"log/slog"
	"net/http"
	"time"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Can't marshal response body"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("Invalid request body"))
		return false
	}
	return true
}

func Events(muxer *http.ServeMux, as *utils.AppState) {
	// all events, insertion order
	muxer.HandleFunc("GET /api/events", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, as.Events.Events())
	})

	muxer.HandleFunc("GET /api/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		event, ok := as.Events.Get(r.PathValue("id"))
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Event not found"))
			return
		}
		writeJSON(w, http.StatusOK, event)
	})

	// create an event, an id in the body is ignored
	muxer.HandleFunc("POST /api/events", func(w http.ResponseWriter, r *http.Request) {
		var reqBody model.EventDraft
		if !decodeBody(w, r, &reqBody) {
			return
		}

		event, err := as.Events.Add(r.Context(), reqBody)
		if err != nil {
			slog.Error("can't add event", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't save event"))
			return
		}
		writeJSON(w, http.StatusCreated, event)
	})

	type QuickAddReqBody struct {
		Text  string `json:"text"`
		Color string `json:"color"`
	}

	// create an event from text like "Standup tomorrow at 9am"
	muxer.HandleFunc("POST /api/events/quick", func(w http.ResponseWriter, r *http.Request) {
		var reqBody QuickAddReqBody
		if !decodeBody(w, r, &reqBody) {
			return
		}

		draft, err := as.Natural.Parse(reqBody.Text, time.Now(), as.Config.GetLocation())
		switch {
		case errors.Is(err, natural.ErrNoDate):
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Can't find a date in the text"))
			return
		case errors.Is(err, natural.ErrNoTitle):
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Please provide a title"))
			return
		case err != nil:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Can't parse the text"))
			return
		}
		draft.Color = reqBody.Color

		event, err := as.Events.Add(r.Context(), draft)
		if err != nil {
			slog.Error("can't add event", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't save event"))
			return
		}
		writeJSON(w, http.StatusCreated, event)
	})

	// partial update, unknown ids are a no-op
	muxer.HandleFunc("PATCH /api/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		var reqBody model.EventPatch
		if !decodeBody(w, r, &reqBody) {
			return
		}

		if err := as.Events.Update(r.Context(), r.PathValue("id"), reqBody); err != nil {
			slog.Error("can't update event", "id", r.PathValue("id"), "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't save event"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	// unknown ids are a no-op
	muxer.HandleFunc("DELETE /api/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := as.Events.Delete(r.Context(), r.PathValue("id")); err != nil {
			slog.Error("can't delete event", "id", r.PathValue("id"), "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't delete event"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// NewMuxer registers every route of the service.
func NewMuxer(as *utils.AppState, extra func(*http.ServeMux)) http.Handler {
	muxer := http.NewServeMux()
	if extra != nil {
		extra(muxer)
	}
	Events(muxer, as)
	Ical(muxer, as)
	SPA(muxer, as)
	return LogMiddleware(as, muxer)
}
