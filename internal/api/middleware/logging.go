package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

var mutatingMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// sensitiveFields are masked before a request body reaches the log.
var sensitiveFields = map[string]bool{
	"password":      true,
	"password_hash": true,
	"refresh_token": true,
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogging emits one JSON log line per request and propagates a
// request id via the X-Request-Id response header.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		start := time.Now()

		var requestBody any
		if mutatingMethods[r.Method] && r.Body != nil {
			bodyBytes, err := io.ReadAll(r.Body)
			if err == nil {
				r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
				requestBody = maskedBody(bodyBytes)
			}
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		rec.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(rec, r)

		entry := map[string]any{
			"request_id":  requestID,
			"method":      r.Method,
			"endpoint":    r.URL.Path,
			"status_code": rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		}
		if requestBody != nil {
			entry["request_body"] = requestBody
		}

		line, err := json.Marshal(entry)
		if err != nil {
			log.Printf("[api] %s %s %d", r.Method, r.URL.Path, rec.status)
			return
		}
		log.Print(string(line))
	})
}

func maskedBody(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return "<non-json body>"
	}
	for field := range body {
		if sensitiveFields[field] {
			body[field] = "***"
		}
	}
	return body
}
