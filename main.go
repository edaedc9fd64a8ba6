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
	_ "time/tzdata"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"roster-backend/internal/attendance"
	"roster-backend/internal/platform/apperr"
	"roster-backend/internal/platform/auth"
	"roster-backend/internal/platform/config"
	"roster-backend/internal/platform/db"
	"roster-backend/internal/platform/validation"
	"roster-backend/internal/reporting"
	"roster-backend/internal/shifts"
)

func main() {
	// 設定読み込み
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		log.Fatalf("[ERROR] load config: %v", err)
	}
	log.Printf("[INFO] mode:%s timezone:%s\n", cfg.Mode, cfg.Location())

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("[ERROR] connect DB: %v", err)
	}
	defer conn.Close()
	log.Printf("[INFO] connected to DB (%s)", cfg.DB.Driver)

	if err := db.Migrate(context.Background(), conn, cfg.DB.Driver); err != nil {
		log.Fatalf("[ERROR] migrate: %v", err)
	}

	validation.Register()

	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), apperr.RequestID())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowOrigins,
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", apperr.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", apperr.RequestIDHeader},
			AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := conn.PingContext(ctx); err != nil {
			log.Printf("[WARN] healthz: %v", err)
			c.String(http.StatusServiceUnavailable, "db unavailable")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	secret := []byte(cfg.Auth.JWTSecret)
	loc := cfg.Location()

	shiftSvc := shifts.NewService(conn, loc)

	// /api/v1
	api := r.Group("/api/v1")
	auth.RegisterRoutes(api, auth.NewService(conn, secret, cfg.Auth.TokenTTL))

	authed := api.Group("", auth.RequireAuth(secret))
	attendance.RegisterRoutes(authed, attendance.NewService(conn, loc))
	shifts.RegisterRoutes(authed, shiftSvc)

	admin := authed.Group("", auth.RequireRole(auth.RoleAdmin))
	shifts.RegisterAdminRoutes(admin, shiftSvc)
	reporting.RegisterAdminRoutes(admin, reporting.NewService(conn, loc))

	r.NoRoute(func(c *gin.Context) {
		apperr.Respond(c, apperr.ErrNotFound("route not found"))
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		var err error
		if certFile, keyFile, ok := cfg.TLSFiles(); ok {
			log.Printf("[INFO] listening on https://0.0.0.0%s", srv.Addr)
			err = srv.ListenAndServeTLS(certFile, keyFile)
		} else {
			log.Printf("[WARN] certificate not configured, serving plain HTTP on %s", srv.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
