package main

import (
	"context"
	"database/sql"
	"log"
	"math/rand"

	"github.com/jaswdr/faker"

	"feedback/pkg/comment"
	"feedback/pkg/sessions"
)

// Generates fake feedback so a fresh dev environment has something to
// list. Enabled with SEED_FAKE_DATA=true.
func seed(ctx context.Context, sm *sessions.SessionManager, repo *comment.Repo) {
	f := faker.New()
	n := rand.Intn(5) + 5
	for i := 0; i < n; i++ {
		text := f.Lorem().Sentence(rand.Intn(8) + 3)
		err := sm.WithSession(ctx, func(tx *sql.Tx) error {
			_, addErr := repo.Add(ctx, tx, text)
			return addErr
		})
		if err != nil {
			log.Fatalln("seed: can't add comment:", err)
		}
	}
	log.Printf("seed: added %d comments\n", n)
}
