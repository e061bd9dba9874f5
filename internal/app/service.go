package app

import (
	"errors"

	"github.com/joacominatel/pgbrowse/internal/config"
	"github.com/joacominatel/pgbrowse/internal/database"
	"github.com/joacominatel/pgbrowse/internal/logger"
)

// Factory builds a fresh access layer for a connection string.
type Factory func(dsn string) database.Browser

// Service resolves connection targets and hands out access layer instances.
// Each Open call returns a new instance owned by the caller.
type Service struct {
	cfg     *config.Config
	factory Factory
	log     logger.Logger
}

// NewService creates a new application service.
func NewService(cfg *config.Config, factory Factory, log logger.Logger) *Service {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{cfg: cfg, factory: factory, log: log}
}

// Targets returns the configured connection targets.
func (s *Service) Targets() []config.Connection {
	return s.cfg.Targets
}

// HasTarget reports whether name is a configured target.
func (s *Service) HasTarget(name string) bool {
	return s.cfg.HasTarget(name)
}

// DefaultTarget returns the name of the target used when a caller has not chosen one.
func (s *Service) DefaultTarget() string {
	c, ok := s.cfg.DefaultTarget()
	if !ok {
		return ""
	}
	return c.Name
}

// Open returns a new access layer for the named target, or the default target when name is empty.
// The caller must Close it.
func (s *Service) Open(name string) (database.Browser, error) {
	if name == "" {
		name = s.DefaultTarget()
		if name == "" {
			return nil, &ErrConfig{Cause: errors.New("no connection targets configured")}
		}
	}

	target, ok := s.cfg.Target(name)
	if !ok {
		return nil, &ErrUnknownTarget{Name: name}
	}

	dsn, err := config.ResolveDSN(target)
	if err != nil {
		s.log.Warn("Keyring lookup failed, connecting without stored password",
			logger.Ctx{"target": name, "err": err})
		dsn = target.DSN()
	}
	return s.factory(dsn), nil
}

// OpenDSN returns a new access layer for an explicit connection string.
func (s *Service) OpenDSN(dsn string) database.Browser {
	return s.factory(dsn)
}
