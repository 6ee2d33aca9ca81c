package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/veleth/anima/internal/activity"
	"github.com/veleth/anima/internal/api"
	"github.com/veleth/anima/internal/being"
	"github.com/veleth/anima/internal/config"
	"github.com/veleth/anima/internal/gateway"
	"github.com/veleth/anima/internal/journal"
	"github.com/veleth/anima/internal/llm"
	"github.com/veleth/anima/internal/memory"
	"github.com/veleth/anima/internal/pulse"
	"github.com/veleth/anima/internal/recall"
	"github.com/veleth/anima/internal/skill"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()

	logger.Info("Waking Anima...")

	// Load configuration
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/anima.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.String("path", cfgPath), zap.Error(err))
	}
	if cfg.Server.LogLevel == "production" {
		if prod, perr := zap.NewProduction(); perr == nil {
			logger = prod
		}
	}
	defer logger.Sync()
	logger.Info("Config loaded", zap.String("path", cfgPath))

	beingName := cfg.Being.Name
	if beingName == "" {
		beingName = "anima"
	}

	// Initialize completion providers
	chain := llm.NewFailover(logger)
	for _, pc := range cfg.Providers {
		model := ""
		if len(pc.Models) > 0 {
			model = pc.Models[0]
		}
		provCfg := llm.Config{
			ID: pc.ID, Name: pc.Name,
			Endpoint: pc.Endpoint, APIKey: pc.APIKey, Model: model,
		}
		switch pc.Type {
		case "openai":
			chain.Add(llm.NewOpenAI(provCfg, logger))
		case "anthropic":
			chain.Add(llm.NewAnthropic(provCfg, logger))
		default:
			logger.Warn("unknown provider type", zap.String("id", pc.ID), zap.String("type", pc.Type))
		}
	}

	// Initialize shared memory
	mem := memory.NewLog(logger)

	// Initialize PostgreSQL journal
	var jnl *journal.Journal
	if cfg.Journal.DSN != "" {
		j, jErr := journal.New(cfg.Journal.DSN, logger)
		if jErr != nil {
			logger.Warn("PostgreSQL unavailable, running without journal", zap.Error(jErr))
		} else {
			if mErr := j.Migrate(context.Background(), "migrations"); mErr != nil {
				logger.Fatal("migration failed", zap.Error(mErr))
			}
			jnl = j
			warmStart(mem, jnl, cfg.Being.WarmStartLimit, logger)
			mem.SetMirror(jnl)
		}
	}

	// Initialize skills. A skill whose probe fails stays registered but
	// not ready; activities requiring it simply never run.
	skills := skill.NewRegistry(logger)
	initCtx, initCancel := context.WithTimeout(context.Background(), 60*time.Second)

	chat := skill.NewChatSkill(chain, logger)
	skills.Activate(initCtx, skill.Chat, chat.Initialize)

	tavily := skill.NewTavilySkill(skill.TavilyConfig{
		APIKey:   cfg.Skills.Tavily.APIKey,
		Endpoint: cfg.Skills.Tavily.Endpoint,
	}, logger)
	skills.Activate(initCtx, skill.WebSearch, tavily.Initialize)

	arxiv := skill.NewArxivSkill(skill.ArxivConfig{Endpoint: cfg.Skills.Arxiv.Endpoint}, logger)
	skills.Activate(initCtx, skill.ArxivSearch, arxiv.Initialize)

	scraper := skill.NewScraperSkill(scrapeSources(cfg.Skills.Scraper.Sources), logger)
	skills.Activate(initCtx, skill.WebScraping, scraper.Initialize)

	images := skill.NewImageSkill(skill.ImagesConfig{
		APIKey:   cfg.Skills.Images.APIKey,
		Endpoint: cfg.Skills.Images.Endpoint,
		Model:    cfg.Skills.Images.Model,
		Size:     cfg.Skills.Images.Size,
	}, logger)
	var illustrator activity.Illustrator
	if skills.Activate(initCtx, skill.ImageGeneration, images.Initialize) {
		illustrator = images
	}
	initCancel()

	// Initialize the being's cycle
	sched := being.NewScheduler(cfg.Being.MaxEnergy, cfg.Being.StartEnergy,
		cfg.Being.RegenPerMinute, skills, logger)
	vitals := being.NewVitals(logger)
	runner := being.NewRunner(sched, mem, vitals, cfg.Being.RunTimeout(), logger)
	clock := being.NewClock(cfg.Being.TickInterval(), cfg.Being.TickSpeed, logger)
	loop := being.NewLoop(sched, runner, mem, vitals, clock.Now, logger)

	activities := []being.Activity{
		activity.NewDailyThought(chat, logger),
		activity.NewFetchResearch(arxiv, logger),
		activity.NewWebResearch(tavily, chat, cfg.Being.DefaultResearch, logger),
		activity.NewEmergentResearch(chat, logger),
		activity.NewFetchNews(scraper, logger),
		activity.NewInnovationWorkshop(chat, arxiv, illustrator, logger),
	}
	for _, act := range activities {
		name := act.Spec().Name
		if !cfg.Activities.Enabled(name) {
			logger.Info("activity disabled by config", zap.String("activity", name))
			continue
		}
		if err := loop.Register(act); err != nil {
			logger.Fatal("activity registration failed", zap.String("activity", name), zap.Error(err))
		}
	}

	// Initialize pulse stream
	var bus *pulse.Bus
	if cfg.Pulse.RedisURL != "" {
		b, busErr := pulse.NewBus(cfg.Pulse.RedisURL, cfg.Pulse.Stream, beingName, logger)
		if busErr != nil {
			logger.Warn("Redis unavailable, running without pulse stream", zap.Error(busErr))
		} else {
			bus = b
			runner.AddSink(pulse.NewSink(bus))
		}
	}

	// Initialize semantic recall
	var index *recall.Index
	if cfg.Recall.Qdrant.Host != "" {
		ix, ixErr := recall.NewIndex(recall.QdrantConfig{
			Host:       cfg.Recall.Qdrant.Host,
			Port:       cfg.Recall.Qdrant.Port,
			Collection: cfg.Recall.Qdrant.Collection,
		}, recall.EmbedConfig{
			Provider:  cfg.Recall.Embedding.Provider,
			Endpoint:  cfg.Recall.Embedding.Endpoint,
			Model:     cfg.Recall.Embedding.Model,
			APIKey:    cfg.Recall.Embedding.APIKey,
			Dimension: cfg.Recall.Embedding.Dimension,
		}, logger)
		if ixErr != nil {
			logger.Warn("Qdrant unavailable, running without recall", zap.Error(ixErr))
		} else {
			index = ix
			runner.AddSink(recall.NewSink(index, logger))
		}
	}

	// Initialize gateways
	bc := gateway.NewBroadcaster(logger)
	suggester := gateway.NewSuggester(mem, logger)

	if cfg.Gateway.Discord.Enabled && cfg.Gateway.Discord.BotToken != "" {
		bc.Register(gateway.NewDiscordAdapter(
			cfg.Gateway.Discord.BotToken, cfg.Gateway.Discord.ChannelID, logger), suggester.Handle)
	}
	if cfg.Gateway.Slack.Enabled && cfg.Gateway.Slack.BotToken != "" {
		bc.Register(gateway.NewSlackAdapter(
			cfg.Gateway.Slack.BotToken, cfg.Gateway.Slack.AppToken,
			cfg.Gateway.Slack.Channel, logger), suggester.Handle)
	}
	if len(bc.Platforms()) == 0 {
		logger.Info("no gateway adapters configured, running without announcements")
	}

	gwCtx, gwCancel := context.WithCancel(context.Background())
	bc.StartAll(gwCtx)
	runner.AddSink(gateway.NewSink(bc))

	// Start the pulse
	clock.AddListener(loop)
	clock.Start()
	logger.Info("Being awake",
		zap.String("being", beingName),
		zap.Duration("tick", cfg.Being.TickInterval()),
		zap.Float64("speed", cfg.Being.TickSpeed))

	if bus != nil {
		if err := bus.Publish(context.Background(), pulse.Event{Type: "boot", Success: true}); err != nil {
			logger.Warn("boot event not published", zap.Error(err))
		}
	}

	// Build HTTP handler
	handler := api.NewHandler(beingName, sched, vitals, loop, mem, skills, index, bc, clock.Now, logger)

	// Start server
	port := fmt.Sprintf("%d", cfg.Server.Port)
	if port == "0" {
		port = "3210"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("Anima listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down Anima...")
	clock.Stop()
	loop.Drain()
	if bus != nil {
		_ = bus.Publish(context.Background(), pulse.Event{Type: "shutdown", Success: true})
	}
	srv.Shutdown(context.Background())
	gwCancel()
	bc.Close()
	if index != nil {
		index.Close()
	}
	if bus != nil {
		bus.Close()
	}
	if jnl != nil {
		jnl.Close()
	}
}

// warmStart seeds live memory from the journal so the being picks up where
// it left off.
func warmStart(mem *memory.Log, jnl *journal.Journal, limit int, logger *zap.Logger) {
	ctx := context.Background()
	records, err := jnl.RecentRecords(ctx, limit)
	if err != nil {
		logger.Warn("journal records unavailable, starting cold", zap.Error(err))
		return
	}
	slots, err := jnl.Slots(ctx)
	if err != nil {
		logger.Warn("journal slots unavailable, starting cold", zap.Error(err))
		return
	}
	mem.Restore(records, slots)
	logger.Info("Memory restored from journal",
		zap.Int("records", len(records)),
		zap.Int("slots", len(slots)))
}

func scrapeSources(sources []config.ScrapeSource) []skill.ScrapeSource {
	out := make([]skill.ScrapeSource, len(sources))
	for i, s := range sources {
		out[i] = skill.ScrapeSource{Name: s.Name, URL: s.URL, Selector: s.Selector, Limit: s.Limit}
	}
	return out
}
