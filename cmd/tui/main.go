package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/chatfront/backend/internal/config"
	"github.com/zhouzirui/chatfront/backend/internal/integrations/paramstore"
	"github.com/zhouzirui/chatfront/backend/internal/model/catalog"
	"github.com/zhouzirui/chatfront/backend/internal/service/ai"
	"github.com/zhouzirui/chatfront/backend/internal/service/chat"
	"github.com/zhouzirui/chatfront/backend/internal/ui"
)

func main() {
	modelFlag := flag.String("model", "", "model id to chat with (defaults to the first configured model)")
	logPath := flag.String("log", "chat-tui.log", "file to write logs to; the terminal is used by the UI")
	flag.Parse()

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var params config.ParamGetter
	if cfg.AI.NeedsParamStore() {
		client, err := paramstore.NewFromEnvironment(ctx, cfg.AI.AWSRegion)
		if err != nil {
			log.Fatalf("failed to create parameter store client: %v", err)
		}
		params = client
	}
	apiKey, err := cfg.AI.ResolveAPIKey(ctx, params)
	if err != nil {
		log.Fatalf("failed to resolve api key: %v", err)
	}

	models := catalog.NewMemoryStore(catalog.Resolve(cfg.AI.Models, cfg.AI.Model))

	modelID := *modelFlag
	if modelID == "" {
		if def, ok := models.Default(); ok {
			modelID = def.ID
		}
	}

	session, err := chat.Start(ctx, modelID, apiKey, ai.NewService(cfg.AI, models).NewEndpoint)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		log.Fatalf("failed to start chat session: %v", err)
	}

	if err := ui.NewTerminal(session, cfg.UI.Title, session.ModelID()).Run(); err != nil {
		log.Fatalf("terminal ui failed: %v", err)
	}
}
