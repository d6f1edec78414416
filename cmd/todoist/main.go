package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Garee/todoist/config"
	"github.com/Garee/todoist/pkg/api"
	"github.com/Garee/todoist/pkg/log"
	"github.com/Garee/todoist/pkg/todoist"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Todoist session
	apiClient := api.NewClientWithHTTPClient(cfg.Todoist.BaseURL, &http.Client{
		Timeout: cfg.Todoist.Timeout,
	})
	client := todoist.New(apiClient, logger)

	var user *todoist.User
	if cfg.Todoist.APIToken != "" {
		user, err = client.LoginWithAPIToken(ctx, cfg.Todoist.APIToken)
	} else {
		user, err = client.Login(ctx, cfg.Todoist.Email, cfg.Todoist.Password)
	}
	if err != nil {
		logger.Errorf(ctx, "Login failed: %v", err)
		os.Exit(1)
	}
	logger.Infof(ctx, "Logged in as %s", user.FullName)

	// 4. Overview: projects with their uncompleted tasks
	projects, err := user.GetProjects(ctx)
	if err != nil {
		logger.Errorf(ctx, "Failed to fetch projects: %v", err)
		os.Exit(1)
	}
	for _, p := range projects {
		tasks, err := p.GetUncompletedTasks(ctx)
		if err != nil {
			logger.Errorf(ctx, "Failed to fetch tasks for %s: %v", p.Name, err)
			os.Exit(1)
		}
		fmt.Printf("%s (%d open)\n", p.Name, len(tasks))
		for _, t := range tasks {
			fmt.Printf("  - %s\n", t.Content)
		}
	}
}
