// Package api provides the gRPC RuleService implementation.
//
// Requests and responses are google.protobuf.Struct documents so the
// service needs no generated code:
//
//	request:  {"instrument": "acs", "filekind": "darkfile", "rows": [...]}
//	          {"parameters": ["detector", "ccdamp"], "rows": [...]}
//	response: render.Result as a Struct
package api

import (
	"fmt"
	"log/slog"

	"github.com/solatis/rulefold/internal/core/config"
	"github.com/solatis/rulefold/internal/fold"
	"github.com/solatis/rulefold/internal/modes"
)

// RuleService consolidates catalog rows on request.
// Thin orchestration layer delegating to the modes and fold packages.
type RuleService struct {
	engine   *fold.Engine
	registry *modes.Registry
	cfg      *config.ServerConfig
	log      *slog.Logger
}

// NewRuleService creates service instance with dependencies.
func NewRuleService(engine *fold.Engine, registry *modes.Registry, cfg *config.ServerConfig, log *slog.Logger) (*RuleService, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &RuleService{engine: engine, registry: registry, cfg: cfg, log: log}, nil
}
