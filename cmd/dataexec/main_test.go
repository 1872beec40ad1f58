package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonwraymond/dataexec/config"
)

func TestRun_StopsWhenCanceled(t *testing.T) {
	cfg := config.Default()
	cfg.Transport = "http"
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.LogLevel = "error"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, run(ctx, cfg))
}

func TestRun_InvalidSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "log level", mutate: func(c *config.Config) { c.LogLevel = "loud" }},
		{name: "transport", mutate: func(c *config.Config) { c.Transport = "sse" }},
		{name: "timeout", mutate: func(c *config.Config) { c.DefaultTimeout = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.LogLevel = "error"
			tt.mutate(&cfg)
			assert.Error(t, run(context.Background(), cfg))
		})
	}
}
