package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/chatfront/backend/internal/config"
	"github.com/zhouzirui/chatfront/backend/internal/handler"
	"github.com/zhouzirui/chatfront/backend/internal/handler/web"
	"github.com/zhouzirui/chatfront/backend/internal/integrations/paramstore"
	"github.com/zhouzirui/chatfront/backend/internal/model/catalog"
	"github.com/zhouzirui/chatfront/backend/internal/service/ai"
	"github.com/zhouzirui/chatfront/backend/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	apiKey, err := resolveAPIKey(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("failed to resolve api key: %v", err)
	}
	if apiKey == "" {
		log.Println("ARK_API_KEY 未配置，页面将提示用户输入 API Key")
	}

	models := catalog.NewMemoryStore(catalog.Resolve(cfg.AI.Models, cfg.AI.Model))
	defaultModel, _ := models.Default()
	log.Printf("serving %d models, default=%s", len(models.List()), defaultModel.ID)

	aiService := ai.NewService(cfg.AI, models)
	chatService := chat.NewService(aiService.NewEndpoint, defaultModel.ID, apiKey)

	router := handler.NewRouter(models, chatService, web.Options{
		Title:       cfg.UI.Title,
		Caption:     cfg.UI.Caption,
		Placeholder: cfg.UI.Placeholder,
	})

	startServer(ctx, cfg.Server, router)
}

func resolveAPIKey(ctx context.Context, aiCfg config.AIConfig) (string, error) {
	var params config.ParamGetter
	if aiCfg.NeedsParamStore() {
		client, err := paramstore.NewFromEnvironment(ctx, aiCfg.AWSRegion)
		if err != nil {
			return "", err
		}
		params = client
	}
	return aiCfg.ResolveAPIKey(ctx, params)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("chat front-end listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
