package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-rotation/internal/club"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would clear entire store")
			fmt.Fprint(w, "Dry run, store untouched.")
			return
		}
		log.Info("Received request to clear entire store")
		s.Store.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			writeError(w, err, "Failed to get players")
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func (s *Server) CreatePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPlayerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		req.ID = strings.TrimSpace(req.ID)
		req.Name = strings.TrimSpace(req.Name)
		if req.ID == "" || req.Name == "" {
			http.Error(w, "id and name are required", http.StatusBadRequest)
			return
		}
		if req.Rating <= 0 {
			req.Rating = s.Cfg.Tuning.Rating.DefaultRating
		}

		player := club.PlayerInfo{ID: req.ID, Name: req.Name, Rating: req.Rating, Active: true}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would add player", "playerID", req.ID, "name", req.Name)
			writeJSON(w, http.StatusOK, player)
			return
		}
		s.Store.AddPlayer(req.ID, req.Name, req.Rating)

		players, err := s.Store.GetPlayers([]string{req.ID})
		if err != nil {
			writeError(w, err, "Failed to read back player")
			return
		}
		if len(players) == 0 {
			http.Error(w, "Failed to add player", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, players[0])
	}
}

func (s *Server) SetActiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.PathValue("id")
		active, err := strconv.ParseBool(r.URL.Query().Get("value"))
		if err != nil {
			http.Error(w, "value must be true or false", http.StatusBadRequest)
			return
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would set player active flag", "playerID", playerID, "active", active)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := s.Store.SetActive(playerID, active); err != nil {
			writeError(w, err, "Failed to update player")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) RatingHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.PathValue("id")
		if !s.Store.IsKnownPlayer(playerID) {
			writeError(w, fmt.Errorf("%w: player %s", club.ErrNotFound, playerID), "Unknown player")
			return
		}
		history, err := s.Store.GetRatingHistory(playerID)
		if err != nil {
			writeError(w, err, "Failed to get rating history")
			return
		}
		writeJSON(w, http.StatusOK, history)
	}
}

// LeaderboardHandler returns a handler that serves the player statistics leaderboard.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.Store.GetPlayerStats()
		if err != nil {
			writeError(w, err, "Failed to get player stats")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg any) {
	slackMsg, ok := msg.(slack.Message)
	if !ok {
		http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
		log.Error("Failed to cast message to slack.Message")
		return
	}
	writeJSON(w, http.StatusOK, slackMsg)
}

// LeaderboardCommandHandler returns a handler for the /leaderboard Slack command.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.Store.GetPlayerStats()
		if err != nil {
			writeError(w, err, "Failed to get player stats")
			return
		}

		msg, err := s.Notifier.FormatLeaderboardResponse(stats)
		if err != nil {
			writeError(w, err, "Failed to format leaderboard")
			return
		}
		respondWithSlackMsg(w, msg)
	}
}

// RatingLeaderboardCommandHandler returns a handler for the /rating-leaderboard Slack command.
func (s *Server) RatingLeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetPlayersSortedByRating()
		if err != nil {
			writeError(w, err, "Failed to get players")
			return
		}

		msg, err := s.Notifier.FormatRatingLeaderboardResponse(players)
		if err != nil {
			writeError(w, err, "Failed to format rating leaderboard")
			return
		}
		respondWithSlackMsg(w, msg)
	}
}

// PlayerStatsCommandHandler returns a handler for the /player-stats Slack command.
// Unknown names are answered with the closest matching players.
func (s *Server) PlayerStatsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		playerName := strings.TrimSpace(r.FormValue("text"))
		if playerName == "" {
			http.Error(w, "Player name is required.", http.StatusBadRequest)
			return
		}

		log.Info("Received player stats command", "player", playerName)

		var msg any
		stats, err := s.Store.GetPlayerStatsByName(playerName)
		switch {
		case errors.Is(err, club.ErrNotFound):
			log.Warn("Could not find player stats", "player", playerName)
			suggestions, serr := s.Mapper.Suggest(playerName, 3)
			if serr != nil {
				log.Warn("Failed to suggest players", "player", playerName, "error", serr)
			}
			msg, err = s.Notifier.FormatPlayerNotFoundResponse(playerName, suggestions)
		case err != nil:
			writeError(w, err, "Failed to get player stats")
			return
		default:
			msg, err = s.Notifier.FormatPlayerStatsResponse(stats)
		}
		if err != nil {
			writeError(w, err, "Failed to format player stats")
			return
		}
		respondWithSlackMsg(w, msg)
	}
}
