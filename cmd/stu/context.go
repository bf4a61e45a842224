package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"Stu-Music-Go/pkg/agent"
	"Stu-Music-Go/pkg/config"
	"Stu-Music-Go/pkg/db"
	"Stu-Music-Go/pkg/enrich"
	"Stu-Music-Go/pkg/llm"
	"Stu-Music-Go/pkg/logging"
	"Stu-Music-Go/pkg/music"
	"Stu-Music-Go/pkg/spotify"
	"Stu-Music-Go/pkg/tools"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logOnce sync.Once
	log     *logrus.Logger
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger returns the process logger. It always writes to stderr so stdout
// stays free for command output and the stdio tool protocol.
func (c *commandContext) logger() *logrus.Logger {
	c.logOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.log = logging.Discard()
			return
		}
		log, err := logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
		if err != nil {
			log = logging.Discard()
		}
		c.log = log
	})
	return c.log
}

func (c *commandContext) wantJSON(cmd *cobra.Command) bool {
	if c.jsonFlag != nil && *c.jsonFlag {
		return true
	}
	return !isTerminal(cmd.OutOrStdout())
}

// spotifyClient returns the application-token catalog client.
func (c *commandContext) spotifyClient() (*spotify.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireSpotify(); err != nil {
		return nil, err
	}
	return spotify.NewClient(context.Background(), cfg.Spotify.ClientID, cfg.Spotify.ClientSecret), nil
}

// dialer returns how sessions to the search tool are opened: a configured
// subprocess, or an in-process server backed by sp.
func (c *commandContext) dialer(sp *spotify.Client) tools.Dialer {
	cfg := c.config
	if cfg.MCP.Command != "" {
		return tools.Command(cfg.MCP.Command, cfg.MCP.Args...)
	}
	return tools.InProcess(tools.NewServer(sp, c.logger()))
}

// rewriter returns nil when no Anthropic key is configured; the fan-out then
// searches the original query.
func (c *commandContext) rewriter() music.QueryRewriter {
	cfg := c.config
	if cfg.Anthropic.APIKey == "" {
		c.logger().Warn("anthropic.api_key not set, queries will not be rewritten")
		return nil
	}
	return llm.NewRewriter(llm.RewriterConfig{
		APIKey:    cfg.Anthropic.APIKey,
		BaseURL:   cfg.Anthropic.BaseURL,
		Model:     cfg.Anthropic.Model,
		MaxTokens: cfg.Anthropic.MaxTokens,
	})
}

func (c *commandContext) planner() agent.Planner {
	cfg := c.config
	if cfg.OpenAI.APIKey == "" {
		c.logger().Warn("openai.api_key not set, /api/stu is disabled")
		return nil
	}
	return llm.NewPlanner(llm.PlannerConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
	})
}

func (c *commandContext) openDB() (*db.DB, error) {
	d, err := db.New(c.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", c.config.Database.Path, err)
	}
	return d, nil
}

func (c *commandContext) enricher(sp *spotify.Client, cache enrich.Cache) *enrich.Enricher {
	cfg := c.config.Enrich
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	return &enrich.Enricher{
		ISRCs:       sp,
		Recordings:  enrich.NewMusicBrainz(cfg.MusicBrainzURL, cfg.UserAgent, cfg.RequestsPerSecond, timeout),
		Features:    enrich.NewAcousticBrainz(cfg.AcousticBrainzURL, cfg.UserAgent, timeout),
		Cache:       cache,
		Concurrency: cfg.Concurrency,
		Log:         c.logger(),
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
