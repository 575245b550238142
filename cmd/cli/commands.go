package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resultCmd)
	rootCmd.AddCommand(metricsCmd)

	pauseCmd.Flags().Bool("resume", false, "Resume the player instead of pausing")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil)
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the players in the club store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/players", nil)
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show players ordered by rating",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/leaderboard", nil)
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/sessions", nil)
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule <session-id>",
	Short: "Show the current schedule of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/sessions/"+url.PathEscape(args[0])+"/schedule", nil)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate <session-id>",
	Short: "Generate (or regenerate) the schedule of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/sessions/"+url.PathEscape(args[0])+"/schedule", nil)
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause <session-id> <player-id>",
	Short: "Pause a player and regenerate the remaining rounds",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resume, err := cmd.Flags().GetBool("resume")
		if err != nil {
			return err
		}
		endpoint := fmt.Sprintf("/sessions/%s/attendees/%s/pause?value=%t",
			url.PathEscape(args[0]), url.PathEscape(args[1]), !resume)
		return performRequest(http.MethodPost, endpoint, nil)
	},
}

var resultCmd = &cobra.Command{
	Use:   "result <match-id> <team1-score> <team2-score>",
	Short: "Record the result of a match",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		t1, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid team1 score %q: %w", args[1], err)
		}
		t2, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid team2 score %q: %w", args[2], err)
		}
		body := map[string]int{"team1_score": t1, "team2_score": t2}
		return performRequest(http.MethodPost, "/matches/"+url.PathEscape(args[0])+"/result", body)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil)
	},
}

func performRequest(method, endpoint string, payload any) error {
	target := host + endpoint
	if dryRun {
		target = withDryRun(target)
	}
	fmt.Printf("Making %s request to %s\n", method, target)

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}

func withDryRun(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set("dry_run", "true")
	u.RawQuery = q.Encode()
	return u.String()
}
