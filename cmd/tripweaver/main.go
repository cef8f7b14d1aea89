package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tripweaver/tripweaver/internal/api"
	"github.com/tripweaver/tripweaver/internal/config"
	"github.com/tripweaver/tripweaver/internal/database"
	"github.com/tripweaver/tripweaver/internal/database/repository"
	"github.com/tripweaver/tripweaver/internal/nlp"
	"github.com/tripweaver/tripweaver/internal/planner"
	"github.com/tripweaver/tripweaver/internal/recommend"
	"github.com/tripweaver/tripweaver/internal/render"
	"github.com/tripweaver/tripweaver/internal/resources"
	"github.com/tripweaver/tripweaver/internal/service"
	"github.com/tripweaver/tripweaver/internal/tui"
)

const usage = `usage: tripweaver <command> [flags]

commands:
  fetch            download the NLP resource pack listed in the manifest
  import <file>    ingest an attraction CSV (-city, -format processed|crawl)
  crawl <url>      crawl a listing site into the database (-city)
  enrich           run sentiment/topic enrichment over stored attractions
  plan             print an itinerary (-city, -start, -end, -budget, -prefs)
  serve            run the HTTP API
  browse           open the terminal browser (-city)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	cmd, args := os.Args[1], os.Args[2:]

	// fetch needs no database
	if cmd == "fetch" {
		runFetch(cfg)
		return
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}
	if err := database.RunMigrations(cfg.Database.Path, migrationsDir()); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.SeedDefaults(ctx, db); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	// repositories
	attrRepo := repository.NewAttractionRepo(db)
	themeRepo := repository.NewThemeRepo(db)
	itinRepo := repository.NewItineraryRepo(db)

	// services
	processor, err := nlp.NewProcessor(attrRepo, cfg.Resources.Dir)
	if err != nil {
		log.Fatalf("nlp processor: %v", err)
	}
	processor.Topics = cfg.NLP.Topics
	processor.MaxFeatures = cfg.NLP.MaxFeatures
	processor.MaxDF = cfg.NLP.MaxDF
	processor.MinDF = cfg.NLP.MinDF

	engine := &recommend.Engine{}
	if themes, err := themeRepo.List(ctx); err == nil {
		for _, t := range themes {
			engine.ThemeVocabulary = append(engine.ThemeVocabulary, t.Name)
		}
	}

	itineraries := &service.ItineraryService{
		Attractions:       attrRepo,
		Itineraries:       itinRepo,
		Engine:            engine,
		Solver:            &planner.Solver{SpeedKmph: cfg.Planner.SpeedKmph},
		AttractionsPerDay: cfg.Planner.AttractionsPerDay,
		SolveTimeout:      time.Duration(cfg.Planner.SolveTimeoutSecs) * time.Second,
	}
	ingester := &service.IngestService{Attractions: attrRepo}

	switch cmd {
	case "import":
		runImport(ctx, ingester, processor, args)
	case "crawl":
		runCrawl(ctx, attrRepo, processor, args)
	case "enrich":
		runEnrich(ctx, processor, args)
	case "plan":
		runPlan(ctx, itineraries, args)
	case "serve":
		srv := &api.Server{DB: db, Attractions: attrRepo, Saved: itinRepo, Itineraries: itineraries}
		log.Printf("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
			log.Fatalf("serve: %v", err)
		}
	case "browse":
		fs := flag.NewFlagSet("browse", flag.ExitOnError)
		city := fs.String("city", "", "limit to one city")
		_ = fs.Parse(args)
		if *city == "" {
			*city = cfg.Browse.City
		}
		p := tea.NewProgram(tui.New(ctx, cfg,
			tui.Repos{Attractions: attrRepo},
			tui.Services{Itineraries: itineraries, Processor: processor, SaveConfig: config.Save},
			*city,
		), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runFetch(cfg config.Config) {
	if err := resources.WriteDefaultManifest(cfg.Resources.Manifest); err != nil {
		log.Fatalf("manifest: %v", err)
	}
	f := &resources.Fetcher{Dir: cfg.Resources.Dir}
	if err := f.FetchAll(cfg.Resources.Manifest); err != nil {
		log.Fatalf("fetch: %v", err)
	}
	fmt.Printf("resources ready in %s\n", cfg.Resources.Dir)
}

func runImport(ctx context.Context, ingester *service.IngestService, processor *nlp.Processor, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	city := fs.String("city", "", "city the rows belong to")
	format := fs.String("format", "processed", "csv format: processed or crawl")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		log.Fatalf("import: exactly one csv file expected")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	var res service.IngestResult
	switch *format {
	case "processed":
		res, err = ingester.ImportProcessedCSV(ctx, f, *city)
	case "crawl":
		res, err = ingester.ImportCrawlCSV(ctx, f, *city)
	default:
		log.Fatalf("unknown format %q", *format)
	}
	if err != nil {
		log.Fatalf("import: %v", err)
	}
	for _, e := range res.Errors {
		log.Printf("warn: %v", e)
	}
	fmt.Printf("imported %d, skipped %d, %d errors\n", res.Imported, res.Skipped, len(res.Errors))

	if _, err := processor.EnrichAll(ctx, *city); err != nil {
		log.Printf("warn: enrichment failed: %v", err)
	}
}

func runCrawl(ctx context.Context, attrRepo *repository.AttractionRepo, processor *nlp.Processor, args []string) {
	fs := flag.NewFlagSet("crawl", flag.ExitOnError)
	city := fs.String("city", "", "city the listings belong to")
	pages := fs.Int("pages", 10, "listing page budget")
	lat := fs.Float64("lat", 40.7128, "city center latitude")
	lon := fs.Float64("lon", -74.0060, "city center longitude")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		log.Fatalf("crawl: exactly one start url expected")
	}

	crawler := &service.Crawler{
		Attractions: attrRepo,
		MaxPages:    *pages,
		CityLat:     *lat,
		CityLon:     *lon,
	}
	res, err := crawler.Crawl(ctx, fs.Arg(0), *city)
	if err != nil {
		log.Fatalf("crawl: %v", err)
	}
	for _, e := range res.Errors {
		log.Printf("warn: %v", e)
	}
	fmt.Printf("visited %d pages, saved %d attractions\n", res.PagesVisited, res.Saved)

	if _, err := processor.EnrichAll(ctx, *city); err != nil {
		log.Printf("warn: enrichment failed: %v", err)
	}
}

func runEnrich(ctx context.Context, processor *nlp.Processor, args []string) {
	fs := flag.NewFlagSet("enrich", flag.ExitOnError)
	city := fs.String("city", "", "limit to one city")
	_ = fs.Parse(args)

	res, err := processor.EnrichAll(ctx, *city)
	if err != nil {
		log.Fatalf("enrich: %v", err)
	}
	fmt.Printf("enriched %d attractions (%d labeled from tags)\n", res.Processed, res.FellBack)
}

func runPlan(ctx context.Context, itineraries *service.ItineraryService, args []string) {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	city := fs.String("city", "", "city to plan")
	start := fs.String("start", "", "start date YYYY-MM-DD")
	end := fs.String("end", "", "end date YYYY-MM-DD")
	budget := fs.Int("budget", 2, "price ceiling 1-4")
	prefs := fs.String("prefs", "", "comma-separated preferences")
	startHour := fs.Int("start-hour", 9, "daily start hour")
	endHour := fs.Int("end-hour", 21, "daily end hour")
	_ = fs.Parse(args)

	req := recommend.Request{
		City:           *city,
		StartDate:      *start,
		EndDate:        *end,
		Budget:         *budget,
		Preferences:    render.SplitCSVFlag(*prefs),
		DailyStartHour: *startHour,
		DailyEndHour:   *endHour,
	}
	id, plans, err := itineraries.Generate(ctx, req)
	if err != nil {
		log.Fatalf("plan: %v", err)
	}
	fmt.Print(render.Itinerary(id, plans))
}

// migrationsDir resolves the migrations path relative to the working
// directory, matching the layout this repo ships with.
func migrationsDir() string {
	if env := os.Getenv("TRIPWEAVER_MIGRATIONS"); env != "" {
		return env
	}
	return "internal/database/migrations"
}
