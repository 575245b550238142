package http

import (
	"encoding/json"
	"net/http"
	"strconv"
)

func (s *Server) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		sess, err := s.Sessions.CreateSession(req.Name, req.Courts, req.Rounds)
		if err != nil {
			writeError(w, err, "Failed to create session")
			return
		}
		writeJSON(w, http.StatusCreated, sess)
	}
}

func (s *Server) ListSessionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := s.Sessions.ListSessions()
		if err != nil {
			writeError(w, err, "Failed to list sessions")
			return
		}
		writeJSON(w, http.StatusOK, sessions)
	}
}

func (s *Server) GetSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.PathValue("id")
		sess, err := s.Sessions.GetSession(sessionID)
		if err != nil {
			writeError(w, err, "Failed to get session")
			return
		}
		attendees, err := s.Sessions.GetAttendees(sessionID)
		if err != nil {
			writeError(w, err, "Failed to get attendees")
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Session: *sess, Attendees: attendees})
	}
}

func (s *Server) AddAttendeesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.PathValue("id")
		var req attendeesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if len(req.PlayerIDs) == 0 {
			http.Error(w, "player_ids is required", http.StatusBadRequest)
			return
		}
		for _, playerID := range req.PlayerIDs {
			if err := s.Sessions.AddAttendee(sessionID, playerID); err != nil {
				writeError(w, err, "Failed to add attendee")
				return
			}
		}
		attendees, err := s.Sessions.GetAttendees(sessionID)
		if err != nil {
			writeError(w, err, "Failed to get attendees")
			return
		}
		writeJSON(w, http.StatusOK, attendees)
	}
}

func (s *Server) RemoveAttendeeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Sessions.RemoveAttendee(r.PathValue("id"), r.PathValue("playerID")); err != nil {
			writeError(w, err, "Failed to remove attendee")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// PauseHandler toggles a player's paused flag and answers with the regenerated schedule.
func (s *Server) PauseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paused, err := strconv.ParseBool(r.URL.Query().Get("value"))
		if err != nil {
			http.Error(w, "value must be true or false", http.StatusBadRequest)
			return
		}
		schedule, err := s.Processor.SetPaused(r.PathValue("id"), r.PathValue("playerID"), paused, isDryRunFromContext(r))
		if err != nil {
			writeError(w, err, "Failed to update pause flag")
			return
		}
		writeJSON(w, http.StatusOK, schedule)
	}
}

func (s *Server) GenerateScheduleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schedule, err := s.Processor.GenerateSchedule(r.PathValue("id"), isDryRunFromContext(r))
		if err != nil {
			writeError(w, err, "Failed to generate schedule")
			return
		}
		writeJSON(w, http.StatusOK, schedule)
	}
}

func (s *Server) GetScheduleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schedule, err := s.Sessions.GetSchedule(r.PathValue("id"))
		if err != nil {
			writeError(w, err, "Failed to get schedule")
			return
		}
		writeJSON(w, http.StatusOK, schedule)
	}
}

func (s *Server) RecordResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.PathValue("id")
		var req resultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.Team1Score == nil || req.Team2Score == nil {
			http.Error(w, "team1_score and team2_score are required", http.StatusBadRequest)
			return
		}

		summary, err := s.Processor.RecordResult(matchID, *req.Team1Score, *req.Team2Score, isDryRunFromContext(r))
		if err != nil {
			writeError(w, err, "Failed to record result")
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}
