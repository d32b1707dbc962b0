package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"time"

	"trizen-careers/internal/application"
	"trizen-careers/internal/auth"
	"trizen-careers/internal/backend"
	"trizen-careers/internal/catalog"
	"trizen-careers/internal/config"
	"trizen-careers/internal/email"
	"trizen-careers/internal/profile"
	"trizen-careers/internal/storage"
)

const (
	evictInterval  = 10 * time.Minute
	profileMaxIdle = 24 * time.Hour
)

// MyServer holds the collaborators shared by every route handler
type MyServer struct {
	cfg config.Config

	Store     storage.Store
	Catalog   *catalog.Catalog
	Backend   *backend.Client
	Email     *email.Client
	Registry  *profile.Registry
	Submitter *application.Submitter

	closeStore func() error
	stop       context.CancelFunc
}

// New wires the careers service from cfg. Close releases what it opened.
func New(ctx context.Context, cfg config.Config) (*MyServer, error) {
	if cfg.SecretKey == "" {
		key, err := randomKey()
		if err != nil {
			return nil, fmt.Errorf("generate secret key: %w", err)
		}
		log.Println("SECRET_KEY is not set, profile tokens will not survive a restart")
		cfg.SecretKey = key
	}
	auth.SecretKey = cfg.SecretKey

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &MyServer{
		cfg:        cfg,
		Store:      store,
		Catalog:    catalog.Default(),
		Backend:    backend.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout),
		closeStore: closeStore,
	}
	s.Email = email.NewClient(email.Config{
		BaseURL:   cfg.EmailServiceURL,
		APIKey:    cfg.EmailAPIKey,
		FromEmail: cfg.EmailFrom,
		FromName:  cfg.EmailFromName,
		Timeout:   cfg.EmailTimeout,
	})

	var flowOpts []auth.Option
	if cfg.SendWelcomeEmail {
		flowOpts = append(flowOpts, auth.WithWelcomeEmail(s.Email, cfg.EmailTimeout))
	}
	s.Registry = profile.NewRegistry(store, s.Backend, flowOpts...)
	s.Submitter = &application.Submitter{
		Intake:       s.Backend,
		Notifier:     s.Email,
		CompanyName:  cfg.CompanyName,
		EmailTimeout: cfg.EmailTimeout,
	}

	evictCtx, stop := context.WithCancel(context.Background())
	s.stop = stop
	go s.Registry.PeriodicallyEvict(evictCtx, evictInterval, profileMaxIdle)

	log.Printf("Job catalog %s loaded with %d jobs", s.Catalog.Version(), len(s.Catalog.All()))
	return s, nil
}

// Close stops background work and releases the storage.
func (s *MyServer) Close() error {
	if s.stop != nil {
		s.stop()
	}
	if s.closeStore != nil {
		return s.closeStore()
	}
	return nil
}

// HTTPServer builds the http.Server serving s on the configured port.
func (s *MyServer) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

func randomKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
