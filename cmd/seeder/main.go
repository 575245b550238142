package main

import (
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mauv0809/padel-rotation/internal/club"
	"github.com/mauv0809/padel-rotation/internal/database"
	"github.com/mauv0809/padel-rotation/internal/session"
)

const (
	numPlayers   = 14
	demoCourts   = 3
	demoRounds   = 6
	ratingSpread = 250.0
	baseRating   = 1500.0
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"MIGRATIONS_DIR": "./migrations",
	}
	for _, key := range []string{"DB_NAME", "TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN", "MIGRATIONS_DIR"} {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	if config["DB_NAME"] == "" {
		log.Fatalf("Error: Required environment variable %s is not set.", "DB_NAME")
	}
	return config
}

// fakePlayers builds players with ratings spread around the base rating.
func fakePlayers(faker *gofakeit.Faker, n int) []club.PlayerInfo {
	players := make([]club.PlayerInfo, n)
	for i := range players {
		players[i] = club.PlayerInfo{
			ID:     uuid.NewString(),
			Name:   faker.Name(),
			Rating: float64(int(faker.Float64Range(baseRating-ratingSpread, baseRating+ratingSpread))),
			Active: true,
		}
	}
	return players
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"], cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	startTime := time.Now()
	faker := gofakeit.New(uint64(startTime.UnixNano()))

	clubStore := club.New(db)
	players := fakePlayers(faker, numPlayers)
	if err := clubStore.UpsertPlayers(players); err != nil {
		log.Fatalf("Failed to insert players: %s", err)
	}
	log.Info("Inserted players", "count", len(players))

	sessions := session.NewStore(db)
	name := fmt.Sprintf("%s padel night", faker.City())
	s, err := sessions.CreateSession(name, demoCourts, demoRounds)
	if err != nil {
		log.Fatalf("Failed to create session: %s", err)
	}
	for _, p := range players {
		if err := sessions.AddAttendee(s.ID, p.ID); err != nil {
			log.Fatalf("Failed to add attendee %s: %s", p.Name, err)
		}
	}

	log.Info("Seeded demo session", "session_id", s.ID, "name", name, "attendees", len(players), "duration", time.Since(startTime))
}
