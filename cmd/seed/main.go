// Command main runs the database seeder for the bot review coordinator.
package main

import (
	"flag"
	"log"

	"brc/internal/config"
	"brc/internal/database"
	"brc/internal/seed"
)

func main() {
	numLists := flag.Int("lists", 5, "Number of lists to create")
	numBots := flag.Int("bots", 100, "Number of bot submissions to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d lists, %d submissions, clean=%v\n", *numLists, *numBots, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err = database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(database.DB)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	lists, err := s.SeedLists(*numLists)
	if err != nil {
		log.Fatalf("List seeding failed: %v", err)
	}
	if err := s.SeedSubmissions(lists, *numBots); err != nil {
		log.Fatalf("Submission seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
