package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"Stu-Music-Go/pkg/agent"
	"Stu-Music-Go/pkg/handlers"
	"Stu-Music-Go/pkg/metrics"
	"Stu-Music-Go/pkg/mindmap"
	"Stu-Music-Go/pkg/spotify"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config
			log := ctx.logger().WithField("component", "server")
			if addr == "" {
				addr = cfg.Server.Addr
			}

			sp, err := ctx.spotifyClient()
			if err != nil {
				return err
			}
			store, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer store.Close()
			mm, err := mindmap.Load(cfg.MindMap.Fixture)
			if err != nil {
				return err
			}

			signKey := []byte(cfg.Server.SigningKey)
			if len(signKey) == 0 {
				signKey = make([]byte, 32)
				if _, err := rand.Read(signKey); err != nil {
					return fmt.Errorf("generate signing key: %w", err)
				}
				log.Warn("server.signing_key not set, using a random key; login state will not survive restarts")
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(reg)

			auth := spotify.NewAuth(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.RedirectURI, cfg.Spotify.Scopes)
			svc := &agent.Service{
				Tools:     ctx.dialer(sp),
				Rewriter:  ctx.rewriter(),
				Planner:   ctx.planner(),
				Playlists: auth,
				History:   store,
				Metrics:   m,
				Log:       ctx.logger(),
			}
			app := &handlers.Application{
				Spotify:   sp,
				Auth:      auth,
				Agent:     svc,
				Enricher:  ctx.enricher(sp, store),
				History:   store,
				MindMap:   mm,
				SignKey:   signKey,
				Log:       ctx.logger(),
				Metrics:   m,
				Gatherer:  reg,
				StaticDir: cfg.Server.StaticDir,
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           app.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			serverErr := make(chan error, 1)
			go func() {
				log.WithField("addr", addr).Info("listening")
				err := srv.ListenAndServe()
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
					return
				}
				serverErr <- nil
			}()

			signalCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-serverErr:
				return err
			case <-signalCtx.Done():
				log.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown: %w", err)
				}
				return <-serverErr
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.addr)")
	return cmd
}
