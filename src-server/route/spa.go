package route

import (
	"joincal/src-server/utils"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

// SPA serves the browser calendar client. Unknown paths get index.html so
// client-side routes survive a reload.
func SPA(muxer *http.ServeMux, as *utils.AppState) {
	dir := as.Config.GetStaticWebClientDir()
	if dir == "" {
		slog.Info("no web client directory, skipping SPA routes")
		return
	}
	files := http.FS(os.DirFS(dir))
	indexFile, err := files.Open("index.html")
	if err != nil {
		slog.Error("Can't open index.html", "err", err)
		return
	}
	indexFile.Close()

	serveIndex := func(w http.ResponseWriter, r *http.Request) {
		indexFile, err := files.Open("index.html")
		if err != nil {
			http.Error(w, "Can't open index.html", http.StatusInternalServerError)
			return
		}
		defer indexFile.Close()
		indexFileStat, err := indexFile.Stat()
		if err != nil {
			http.Error(w, "Can't get index.html stat", http.StatusInternalServerError)
			return
		}
		http.ServeContent(w, r, indexFileStat.Name(), indexFileStat.ModTime(), indexFile)
	}

	muxer.HandleFunc("GET /{filepath...}", func(w http.ResponseWriter, r *http.Request) {
		filepath := filepath.Clean(r.PathValue("filepath"))
		if filepath == "." {
			serveIndex(w, r)
			return
		}

		file, err := files.Open(filepath)
		if err != nil {
			serveIndex(w, r)
			return
		}
		defer file.Close()

		stat, err := file.Stat()
		if err != nil || stat.IsDir() {
			serveIndex(w, r)
			return
		}

		http.ServeContent(w, r, stat.Name(), stat.ModTime(), file)
	})
}
