package main

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

type seed struct {
	kind         string
	title        string
	description  string
	category     string
	difficulty   int
	points       int
	minUserLevel int
	// title of the challenge this one is chained behind, empty for none
	prerequisite string
}

var catalog = []seed{
	{kind: "global", title: "Morning stretch", description: "10 minutes of stretching before breakfast", category: "fitness", difficulty: 1, points: 50},
	{kind: "global", title: "Read 20 pages", description: "Any book counts", category: "learning", difficulty: 2, points: 80},
	{kind: "global", title: "Inbox zero", description: "Clear every unread message", category: "productivity", difficulty: 2, points: 70},
	{kind: "global", title: "5k run", description: "Run five kilometers at any pace", category: "fitness", difficulty: 3, points: 120},
	{kind: "global", title: "Cook a new recipe", description: "Something you have never made before", category: "lifestyle", difficulty: 3, points: 100},
	{kind: "global", title: "Deep work hour", description: "One uninterrupted hour on your hardest task", category: "productivity", difficulty: 4, points: 150, minUserLevel: 3},
	{kind: "global", title: "10k run", description: "Double distance for those who finished the 5k", category: "fitness", difficulty: 4, points: 200, minUserLevel: 5, prerequisite: "5k run"},
	{kind: "global", title: "Teach someone", description: "Explain something you learned this week to another person", category: "learning", difficulty: 3, points: 110, prerequisite: "Read 20 pages"},
	// personal templates, assignable to slots 4-5 by anyone
	{kind: "personal", title: "Practice an instrument", description: "30 minutes of focused practice", category: "lifestyle", difficulty: 2, points: 60},
	{kind: "personal", title: "Journal", description: "Write at least half a page", category: "lifestyle", difficulty: 1, points: 40},
}

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	ids := make(map[string]int64)

	for _, s := range catalog {
		var prereq *int64
		if s.prerequisite != "" {
			id, ok := ids[s.prerequisite]
			if !ok {
				log.Fatalf("%q: prerequisite %q must be seeded first", s.title, s.prerequisite)
			}
			prereq = &id
		}

		var id int64
		err := db.QueryRow(ctx,
			`INSERT INTO challenges (kind, title, description, category, difficulty, points, min_user_level, prerequisite_id)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			 RETURNING id`,
			s.kind, s.title, s.description, s.category, s.difficulty, s.points, s.minUserLevel, prereq,
		).Scan(&id)
		if err != nil {
			log.Fatalf("seed %q: %v", s.title, err)
		}
		ids[s.title] = id
		log.Printf("seeded %q (id=%d)", s.title, id)
	}

	log.Printf("done: %d challenges", len(catalog))
}
