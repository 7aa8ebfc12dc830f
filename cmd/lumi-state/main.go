// Command lumi-state inspects the on-disk asset cache.
//
// Usage:
//
//	lumi-state [summary]       show cache size and age
//	lumi-state prune <days>    drop assets older than N days
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/lumikids/lumi/internal/store"
)

func main() {
	_ = godotenv.Load()

	statePath := os.Getenv("LUMI_STATE_PATH")
	if statePath == "" {
		statePath = "state"
	}

	db, err := store.Open(statePath)
	if err != nil {
		log.Fatalf("open asset cache: %v", err)
	}
	defer db.Close()

	cmd := "summary"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "summary":
		count, err := db.Count()
		if err != nil {
			log.Fatalf("count: %v", err)
		}
		oldest, err := db.Oldest()
		if err != nil {
			log.Fatalf("oldest: %v", err)
		}
		fmt.Printf("assets cached: %d\n", count)
		if !oldest.IsZero() {
			fmt.Printf("oldest entry:  %s (%s ago)\n",
				oldest.Format(time.RFC3339), time.Since(oldest).Round(time.Minute))
		}

	case "prune":
		if len(os.Args) < 3 {
			log.Fatal("usage: lumi-state prune <days>")
		}
		days, err := strconv.Atoi(os.Args[2])
		if err != nil || days < 0 {
			log.Fatalf("invalid day count %q", os.Args[2])
		}
		removed, err := db.Prune(time.Now().AddDate(0, 0, -days))
		if err != nil {
			log.Fatalf("prune: %v", err)
		}
		fmt.Printf("pruned %d assets older than %d days\n", removed, days)

	default:
		log.Fatalf("unknown command %q", cmd)
	}
}
