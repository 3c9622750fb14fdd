// Package logger provides the request logging middleware of the service.
package logger

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/searchops/indexmigrate/util"
)

const logTag = "[logger]"

// Log wraps the given handler to log every request with a generated
// request id and the time it took.
func Log(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := util.RandStr()
		start := time.Now()
		log.Infoln(logTag, ":", requestID, "started", r.Method, r.URL.Path)
		h.ServeHTTP(w, r)
		log.Infoln(logTag, ":", requestID, "finished", r.Method, r.URL.Path, "in", time.Since(start))
	})
}
