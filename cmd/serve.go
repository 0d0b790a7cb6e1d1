package main

import (
	"context"
	"net"
	"strings"

	"github.com/desertthunder/musicplayer/internal/server"
	"github.com/desertthunder/musicplayer/internal/shared"
	"github.com/desertthunder/musicplayer/internal/web"
	"github.com/urfave/cli/v3"
)

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the player page and the JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, overrides server.host and server.port",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the player in the default browser",
			},
		},
		Action: r.Serve,
	}
}

// Handler builds the application router: middleware, the JSON API and the player page.
func (r *Runner) Handler() (*server.BasicRouter, error) {
	if err := r.open(); err != nil {
		return nil, err
	}

	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger), server.Metrics())

	server.NewAPI(server.APIOpts{
		Engine:      r.engine,
		Store:       r.store,
		SyncTimeout: r.config.Server.SyncTimeoutDuration(),
		Logger:      r.logger,
	}).Register(router)
	router.Handler(web.NewHandler())

	return router, nil
}

// Serve runs the HTTP server until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	router, err := r.Handler()
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	srv := server.NewServer(server.ServerOpts{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: r.config.Server.ReadHeaderTimeoutDuration(),
		Logger:            r.logger,
	})
	ln, err := srv.Listen()
	if err != nil {
		return err
	}

	url := "http://" + browsableAddr(ln.Addr().String())
	r.writePlain("Serving player at %s\n", url)
	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("failed to open browser", "err", err)
		}
	}

	return srv.Serve(ctx, ln)
}

// browsableAddr swaps wildcard hosts for localhost.
func browsableAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" || strings.HasPrefix(host, "[::") {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
