package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/desertthunder/subx/internal/models"
	"github.com/desertthunder/subx/internal/server"
	"github.com/desertthunder/subx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func demoProfile() models.UserProfile {
	return models.UserProfile{
		ID:       "demo",
		Name:     "유튜브",
		Email:    "youtube@gmail.com",
		Password: "demo-password",
		Phone:    "010-1234-5678",
	}
}

func demoProjects() []models.Project {
	return []models.Project{
		{Title: "Go 동시성 입문", URL: "https://www.youtube.com/watch?v=f6kdp27TYZs"},
		{Title: "터미널 UI 만들기", URL: "https://youtu.be/Gl-9jUFEL8A"},
	}
}

// Server runs the stand-in backend: the account surface on --port and the LLM surface on --llm-port.
// Both share one in-memory state and stop on SIGINT or SIGTERM.
func (r *Runner) Server(ctx context.Context, cmd *cli.Command) error {
	host := r.config.Server.Host
	if v := cmd.String("host"); v != "" {
		host = v
	}
	port := r.config.Server.Port
	if v := cmd.Int("port"); v != 0 {
		port = v
	}
	llmPort := r.config.Server.LLMPort
	if v := cmd.Int("llm-port"); v != 0 {
		llmPort = v
	}
	if port == llmPort {
		return fmt.Errorf("%w: --port and --llm-port must differ", shared.ErrInvalidFlag)
	}

	opts := server.Options{Logger: shared.WithLogger(r.logger, "component", "server")}
	if cmd.Bool("seed") {
		opts.Profile = demoProfile()
		opts.Projects = demoProjects()
	}
	backend := server.NewBackend(opts)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	accountAddr := net.JoinHostPort(host, strconv.Itoa(port))
	llmAddr := net.JoinHostPort(host, strconv.Itoa(llmPort))

	r.writePlain("Account service: http://%s\n", accountAddr)
	r.writePlain("LLM service:     http://%s\n", llmAddr)
	r.writePlain("Any non-empty bearer token is accepted. Log in with 'subx auth login --token dev'\n")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(gctx, accountAddr, backend.AccountHandler(), shared.WithLogger(r.logger, "surface", "account"))
	})
	g.Go(func() error {
		return server.Serve(gctx, llmAddr, backend.LLMHandler(), shared.WithLogger(r.logger, "surface", "llm"))
	})

	if err := g.Wait(); err != nil {
		return err
	}
	r.logger.Info("server stopped")
	return nil
}
