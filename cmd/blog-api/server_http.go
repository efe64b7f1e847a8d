package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/inkpress/inkpress/internal/auth"
	"github.com/inkpress/inkpress/internal/config"
	"github.com/inkpress/inkpress/internal/obs"
	pg "github.com/inkpress/inkpress/internal/repository/postgres"
	authsvc "github.com/inkpress/inkpress/internal/services/auth"
	commentsvc "github.com/inkpress/inkpress/internal/services/comment"
	postsvc "github.com/inkpress/inkpress/internal/services/post"
	usersvc "github.com/inkpress/inkpress/internal/services/user"
)

func buildHTTPServer(cfg *config.Config, logger *zap.Logger, db *pg.DB) (*http.Server, error) {
	identityKey, err := identityKey(cfg)
	if err != nil {
		return nil, err
	}
	codec, err := auth.NewIdentityCodec(identityKey)
	if err != nil {
		return nil, err
	}

	issuer := auth.NewIssuer([]byte(cfg.Auth.TokenSecret), cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	ledger := auth.NewRevocationLedger()

	users := pg.NewUserRepo(db)
	posts := pg.NewPostRepo(db)
	comments := pg.NewCommentRepo(db)

	authUC := authsvc.NewUsecase(users, codec, issuer, ledger)
	authMW := authsvc.NewMiddleware(authUC, logger)

	authHandler := authsvc.NewHandler(authUC, logger)
	postHandler := postsvc.NewHandler(postsvc.NewUsecase(posts), authMW, logger)
	commentHandler := commentsvc.NewHandler(commentsvc.NewUsecase(comments, posts), authMW, logger)
	userHandler := usersvc.NewHandler(users, authUC, authMW, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		hctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		if err := db.Pool.Ping(hctx); err != nil {
			http.Error(w, "unhealthy: db", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", obs.MetricsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.Throttle(cfg.Auth.ThrottleLimit))
			authHandler.Register(r)
		})
		r.Route("/blog", postHandler.Register)
		r.Route("/comments", commentHandler.Register)
		r.Route("/users", userHandler.Register)
	})

	var handler http.Handler = r
	if cfg.OTEL.Enable {
		handler = otelhttp.NewHandler(handler, "blog-api")
	}

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}, nil
}

func identityKey(cfg *config.Config) ([]byte, error) {
	if cfg.Auth.EncryptionKey != "" {
		key, err := hex.DecodeString(cfg.Auth.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("decode auth.encryption_key: %w", err)
		}
		return key, nil
	}
	return auth.DeriveIdentityKey(cfg.Auth.TokenSecret)
}

func serveHTTP(srv *http.Server, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("http listening", zap.String("addr", cfg.Server.HTTPAddr))
	return srv.ListenAndServe()
}
