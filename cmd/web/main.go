package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nexus2fasta/internal/convert"
	"nexus2fasta/internal/fasta"
)

// maxUploadBytes bounds how much NEXUS content a single request may carry.
const maxUploadBytes = 16 << 20

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>nexus2fasta</title>
<style>
body { font-family: sans-serif; max-width: 56rem; margin: 2rem auto; padding: 0 1rem; color: #1f2937; }
h1 { color: #7c3aed; }
textarea { width: 100%; font-family: monospace; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #d1d5db; padding: 0.3rem 0.6rem; text-align: left; }
th { background: #f3f4f6; }
button { background: #7c3aed; color: white; border: none; padding: 0.5rem 1.2rem; cursor: pointer; }
</style>
</head>
<body>
<h1>NEXUS to FASTA</h1>
<p>Upload a NEXUS file exported from TreeBASE, or paste its content, and get
the alignment back as FASTA.</p>
<form action="/convert" method="post" enctype="multipart/form-data">
  <p><input type="file" name="nexus"></p>
  <p><textarea name="text" rows="12" placeholder="...or paste NEXUS content here"></textarea></p>
  <p><button type="submit">Convert</button></p>
</form>
<h2>Recent conversions</h2>
{{if .Recent}}
<table>
<tr><th>When</th><th>Source</th><th>Sequences</th><th>Warnings</th></tr>
{{range .Recent}}
<tr><td>{{.CreatedAt.Format "2006-01-02 15:04:05"}}</td><td>{{.Source}}</td><td>{{.Sequences}}</td><td>{{len .Warnings}}</td></tr>
{{end}}
</table>
{{else}}
<p>No conversions yet.</p>
{{end}}
</body>
</html>
`

var templates = template.Must(template.New("index").Parse(indexHTML))

// statusResponseWriter captures status and bytes written for logging
type statusResponseWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// loggingMiddleware logs each request with method, path, status, size and duration
func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w}
		next.ServeHTTP(srw, r)
		if srw.status == 0 {
			srw.status = http.StatusOK
		}
		duration := time.Since(start)
		logger.Printf("%s - %s %s %d %dB %s %q",
			r.RemoteAddr, r.Method, r.URL.RequestURI(), srw.status, srw.written, duration, r.UserAgent())
	})
}

type indexPage struct {
	Recent []Conversion
}

func indexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		historyMu.Lock()
		recent, err := loadHistory(historyPath)
		historyMu.Unlock()
		if err != nil {
			log.Printf("warning: failed to read history for index: %v", err)
			recent = nil
		}
		if len(recent) > 10 {
			recent = recent[:10]
		}
		if err := templates.ExecuteTemplate(w, "index", indexPage{Recent: recent}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

// convertHandler accepts a NEXUS document as an uploaded "nexus" file or a
// pasted "text" form field and responds with the converted FASTA as an
// attachment. Structurally unusable documents get a 422 with the reason.
func convertHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		data, source, err := readUpload(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, err := convert.Parse(data)
		if err != nil {
			if errors.Is(err, convert.ErrNoMatrix) || errors.Is(err, convert.ErrNoSequences) {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		for _, warning := range res.Warnings {
			log.Printf("convert %s: %s", source, warning)
		}
		_ = addConversion(source, len(res.Records), res.Warnings)

		w.Header().Set("Content-Type", "text/x-fasta; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachmentName(source)))
		fw := fasta.NewWriter(w)
		if err := fw.WriteAll(res.Records); err != nil {
			log.Printf("warning: writing fasta response: %v", err)
		}
	}
}

// readUpload pulls the NEXUS document out of the request, preferring an
// uploaded file over pasted text, and reports where it came from.
func readUpload(r *http.Request) ([]byte, string, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, "", fmt.Errorf("parsing upload: %w", err)
		}
		if f, hdr, ferr := r.FormFile("nexus"); ferr == nil {
			defer f.Close()
			data, rerr := io.ReadAll(io.LimitReader(f, maxUploadBytes))
			if rerr != nil {
				return nil, "", fmt.Errorf("reading upload: %w", rerr)
			}
			if len(data) > 0 {
				return data, hdr.Filename, nil
			}
		}
		if text := r.FormValue("text"); strings.TrimSpace(text) != "" {
			return []byte(text), "pasted text", nil
		}
		return nil, "", fmt.Errorf("no NEXUS file or text provided")
	}
	if err := r.ParseForm(); err != nil {
		return nil, "", fmt.Errorf("parsing form: %w", err)
	}
	if text := r.FormValue("text"); strings.TrimSpace(text) != "" {
		return []byte(text), "pasted text", nil
	}
	return nil, "", fmt.Errorf("no NEXUS file or text provided")
}

// attachmentName derives the download filename from the upload source.
func attachmentName(source string) string {
	base := filepath.Base(source)
	if base == "" || base == "." || base == "/" || base == "pasted text" {
		return "converted.fasta"
	}
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base + ".fasta"
}

// apiHistoryHandler returns the conversion history as JSON.
func apiHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		historyMu.Lock()
		recent, err := loadHistory(historyPath)
		historyMu.Unlock()
		if err != nil {
			http.Error(w, "failed to read history", http.StatusInternalServerError)
			return
		}
		if recent == nil {
			recent = []Conversion{}
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(recent)
	}
}

func main() {
	addr := flag.String("addr", ":8080", "HTTP address to serve on")
	histPath := flag.String("history", "history.json", "path to the conversion history store")
	histStore := flag.String("history-store", "json", "history backend: json or sqlite")
	logFile := flag.String("log", "", "path to write access logs (optional). If empty, logs go to stdout only")
	flag.Parse()

	historyPath = *histPath
	historyStore = *histStore
	if historyStore == "sqlite" {
		if err := ensureHistoryDB(historyPath); err != nil {
			log.Fatalf("failed to open history database: %v", err)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", indexHandler())
	mux.HandleFunc("/convert", convertHandler())
	mux.HandleFunc("/api/history", apiHistoryHandler())

	// configure logger
	var out io.Writer = os.Stdout
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalf("failed to open log file: %v", err)
		}
		out = io.MultiWriter(os.Stdout, f)
	}
	logger := log.New(out, "nexus2fasta: ", log.LstdFlags)

	// wrap mux with logging middleware
	handler := loggingMiddleware(logger, mux)

	srv := &http.Server{Addr: *addr, Handler: handler, ReadTimeout: 5 * time.Second, WriteTimeout: 10 * time.Second}
	fmt.Printf("serving conversion UI at http://%s/ (history=%s, store=%s)\n", *addr, historyPath, historyStore)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
