package route

import (
	"io"
	"joincal/src-server/ical"
	"joincal/src-server/utils"
	"log/slog"
	"net/http"
)

func Ical(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /ical/events.ics", func(w http.ResponseWriter, r *http.Request) {
		feed := ical.Render(as.Events.Events(), ical.DefaultProdID, as.Config.GetLocation())

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := io.WriteString(w, feed); err != nil {
			slog.Warn("can't write to response", "where", "route/ical.go", "err", err)
		}
	})
}
