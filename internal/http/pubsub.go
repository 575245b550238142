package http

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-rotation/internal/pubsub"
)

// decodePush unwraps a Pub/Sub push request into v. It writes the error
// response itself and reports whether the handler should continue.
func (s *Server) decodePush(w http.ResponseWriter, r *http.Request, v any) bool {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("Failed to read request body", "error", err)
		http.Error(w, "Failed to read request body", http.StatusInternalServerError)
		return false
	}
	log.Debug("Received push message", "path", r.URL.Path, "body", string(bodyBytes))

	var msg pushMessage
	if err := json.Unmarshal(bodyBytes, &msg); err != nil {
		log.Error("Failed to unmarshal wrapper JSON", "error", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	// Decode base64 to raw MessagePack bytes
	rawData, err := base64.StdEncoding.DecodeString(msg.Message.Data)
	if err != nil {
		log.Error("Failed to decode base64 data", "error", err)
		http.Error(w, "Invalid base64 data", http.StatusBadRequest)
		return false
	}
	if err := s.pubsub.ProcessMessage(rawData, v); err != nil {
		log.Error("Failed to decode message payload", "messageID", msg.Message.MessageID, "error", err)
		http.Error(w, "Invalid message payload", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) NotifyScheduleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var event pubsub.ScheduleGenerated
		if !s.decodePush(w, r, &event) {
			return
		}
		if err := s.Processor.NotifySchedule(event, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to notify schedule", "error", err)
			http.Error(w, "Failed to notify schedule", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) NotifyResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var event pubsub.ResultRecorded
		if !s.decodePush(w, r, &event) {
			return
		}
		if err := s.Processor.NotifyResult(event, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to notify result", "error", err)
			http.Error(w, "Failed to notify result", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
