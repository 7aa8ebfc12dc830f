// Command lumi runs a scripted demo session against the behavioral engine:
// it scrolls through a generated content track the way a restless child
// might, and prints the metrics and recommendations that fall out.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/lumikids/lumi/internal/budget"
	"github.com/lumikids/lumi/internal/config"
	"github.com/lumikids/lumi/internal/gen"
	"github.com/lumikids/lumi/internal/session"
	"github.com/lumikids/lumi/internal/store"
)

func main() {
	log.Println("lumi - adaptive content engine")

	// .env is optional
	if err := godotenv.Load(); err == nil {
		log.Println("[config] loaded .env file")
	}

	configPath := os.Getenv("LUMI_CONFIG")
	if configPath == "" {
		configPath = "lumi.yaml"
	}
	settings, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("load settings: %v", err)
	}

	// Persistent asset cache is best-effort: the engine runs without it
	var assetStore gen.AssetStore
	db, err := store.Open(settings.StatePath)
	if err != nil {
		log.Printf("[main] asset cache unavailable: %v", err)
	} else {
		assetStore = db
		defer db.Close()
	}

	var provider gen.Service
	if settings.ProviderURL != "" {
		provider = gen.NewClient(settings.ProviderURL)
		log.Printf("[main] using generation provider at %s", settings.ProviderURL)
	} else {
		provider = gen.NewStatic(time.Now().UnixNano())
		log.Println("[main] no provider configured, using built-in library")
	}
	provider = gen.NewCached(provider, assetStore)

	gate, err := budget.NewGate()
	if err != nil {
		log.Printf("[main] cpu gate unavailable: %v", err)
		gate = nil
	}

	sess := session.New(session.Config{
		Gen:      provider,
		Settings: settings,
		Gate:     gate,
	})
	defer sess.Close()

	if err := sess.Open(); err != nil {
		log.Fatalf("open session: %v", err)
	}

	// Scripted behavior: quick flicks through the first cards, a frustration
	// spike, then settling into longer dwells.
	script := []struct {
		scroll  int
		dwell   time.Duration
		action  func()
		comment string
	}{
		{scroll: 0, dwell: 400 * time.Millisecond, comment: "first card"},
		{scroll: 1, dwell: 300 * time.Millisecond, comment: "flick"},
		{scroll: 2, dwell: 250 * time.Millisecond, comment: "flick"},
		{scroll: 3, dwell: 200 * time.Millisecond,
			action:  func() { sess.ReportFrustration(4) },
			comment: "taps away angrily"},
		{scroll: 4, dwell: 2 * time.Second,
			action:  func() { sess.ReportSuccess() },
			comment: "calming game lands"},
		{scroll: 5, dwell: 3 * time.Second, comment: "settling"},
	}

	for _, step := range script {
		sess.OnScroll(step.scroll)
		time.Sleep(step.dwell)
		if step.action != nil {
			step.action()
		}
		rec := sess.Recommend()
		m := sess.Metrics()
		fmt.Printf("pos=%d %-22s attention=%.0fms frustration=%d energy=%-5s -> %s/%s (%s)\n",
			step.scroll, step.comment, m.AttentionSpan, m.FrustrationLevel,
			m.EnergyLevel, rec.Difficulty, rec.Format, rec.Reason)
	}

	// Give in-flight hydrations a moment, then show the track
	time.Sleep(500 * time.Millisecond)
	fmt.Println()
	for i, item := range sess.Items() {
		fmt.Printf("%2d [%-9s] %-28s %s\n", i, item.Status, item.Title, item.ImageURL)
	}
}
