package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ashishkumar256/sunspot/observe"
	"github.com/ashishkumar256/sunspot/sunspot"
)

// errorResponse is the body of every non-2xx answer from this package.
type errorResponse struct {
	Error string `json:"error"`
}

// handleSunspot answers a lookup. A non-empty city wins over lat/lon.
func (s *Server) handleSunspot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	city := strings.TrimSpace(q.Get("city"))
	lat := strings.TrimSpace(q.Get("lat"))
	lon := strings.TrimSpace(q.Get("lon"))
	date := q.Get("date")

	var (
		res *sunspot.Result
		err error
	)
	switch {
	case city != "":
		res, err = s.resolver.LookupByCity(r.Context(), city, date)
	case lat != "" && lon != "":
		res, err = s.resolver.LookupByCoordinates(r.Context(), lat, lon, date)
	default:
		writeError(w, http.StatusBadRequest, "Missing city or lat/lon")
		return
	}

	if err != nil {
		status := statusFor(err)
		fields := []observe.Field{
			{Key: "http.status_code", Value: status},
			{Key: "error", Value: err.Error()},
		}
		if status >= http.StatusInternalServerError {
			s.logger.Error(r.Context(), "lookup failed", fields...)
		} else {
			s.logger.Info(r.Context(), "lookup rejected", fields...)
		}
		writeError(w, status, messageFor(err, city))
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func handleHello(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Hello, world!"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
