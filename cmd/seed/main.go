// Command main seeds the vehicle catalog and demo content.
package main

import (
	"context"
	"flag"
	"log"

	"crewz/internal/config"
	"crewz/internal/database"
	"crewz/internal/repository"
	"crewz/internal/seed"
	"crewz/internal/service"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	postsPerUser := flag.Int("posts", 5, "Posts per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	catalogOnly := flag.Bool("catalog-only", false, "Only load the vehicle catalog")
	fakerSeed := flag.Int64("seed", 0, "Faker seed (0 picks a random one)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	added, err := seed.Catalog(ctx, service.NewCatalogService(repository.NewCatalogRepository(db)))
	if err != nil {
		log.Fatalf("Catalog seeding failed: %v", err)
	}
	log.Printf("Catalog: %d new rows", added)
	if *catalogOnly {
		return
	}

	log.Printf("Target: %d users, %d posts each, clean=%v", *numUsers, *postsPerUser, *shouldClean)
	summary, err := seed.NewSeeder(db, *fakerSeed).Demo(ctx, seed.Options{
		NumUsers:     *numUsers,
		PostsPerUser: *postsPerUser,
		ShouldClean:  *shouldClean,
	})
	if err != nil {
		log.Fatalf("Demo seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d vehicles, %d posts, %d likes, %d comments, %d follows, %d messages, %d events",
		summary.Users, summary.Vehicles, summary.Posts, summary.Likes, summary.Comments,
		summary.Follows, summary.Messages, summary.Events)
	log.Printf("All demo users have the password: %s", seed.DemoPassword)
}
