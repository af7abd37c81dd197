package server

import (
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

// Diagnostic endpoint limits.
const (
	maxFactorial   = 5000
	maxDelay       = 300 * time.Second
	defaultTimeout = 30 * time.Second
)

type factorialResponse struct {
	N      int    `json:"n"`
	Digits int    `json:"digits"`
	Result string `json:"result"`
}

type sleepResponse struct {
	Slept     string `json:"slept"`
	Cancelled bool   `json:"cancelled"`
}

// handleCrash panics on purpose so recovery and error reporting can be
// exercised end to end.
func handleCrash(http.ResponseWriter, *http.Request) {
	panic("deliberate crash from /api/crash")
}

// handleFactorial burns CPU computing n!.
func handleFactorial(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil || n < 0 || n > maxFactorial {
		writeError(w, http.StatusBadRequest, "n must be an integer between 0 and "+strconv.Itoa(maxFactorial))
		return
	}
	result := new(big.Int).MulRange(1, int64(n))
	text := result.String()
	writeJSON(w, http.StatusOK, factorialResponse{N: n, Digits: len(text), Result: text})
}

// handleTimeout holds the request for ?delay= seconds (default 30) to
// exercise upstream and proxy timeouts.
func handleTimeout(w http.ResponseWriter, r *http.Request) {
	delay := defaultTimeout
	if raw := r.URL.Query().Get("delay"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 0 {
			writeError(w, http.StatusBadRequest, "delay must be a non-negative integer")
			return
		}
		delay = time.Duration(secs) * time.Second
	}
	sleep(w, r, delay)
}

// handleExhaust holds a worker for {delay} seconds to exhaust the pool.
func handleExhaust(w http.ResponseWriter, r *http.Request) {
	secs, err := strconv.Atoi(mux.Vars(r)["delay"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "delay must be a non-negative integer")
		return
	}
	sleep(w, r, time.Duration(secs)*time.Second)
}

func sleep(w http.ResponseWriter, r *http.Request, d time.Duration) {
	d = min(d, maxDelay)
	start := time.Now()
	timer := time.NewTimer(d)
	defer timer.Stop()

	cancelled := false
	select {
	case <-timer.C:
	case <-r.Context().Done():
		cancelled = true
	}
	writeJSON(w, http.StatusOK, sleepResponse{
		Slept:     time.Since(start).Round(time.Millisecond).String(),
		Cancelled: cancelled,
	})
}
