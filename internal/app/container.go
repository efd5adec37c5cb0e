package app

import (
	"context"
	"fmt"
	"time"

	"github.com/doeshing/codecraft/internal/application/assist"
	"github.com/doeshing/codecraft/internal/application/doctor"
	"github.com/doeshing/codecraft/internal/application/gate"
	"github.com/doeshing/codecraft/internal/application/run"
	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/infrastructure/ai"
	"github.com/doeshing/codecraft/internal/infrastructure/cache"
	"github.com/doeshing/codecraft/internal/infrastructure/config"
	contextcollector "github.com/doeshing/codecraft/internal/infrastructure/context"
	"github.com/doeshing/codecraft/internal/infrastructure/executor"
	"github.com/doeshing/codecraft/internal/infrastructure/history"
	"github.com/doeshing/codecraft/internal/infrastructure/security"
	"github.com/doeshing/codecraft/internal/pkg/logger"
	"github.com/doeshing/codecraft/internal/ports"
)

// Options carries the flag values and terminal adapters the graph needs.
type Options struct {
	ConfigPath string
	Verbose    bool
	Offline    bool

	// Model overrides the configured default for this invocation.
	Model string

	Prompter  ports.Prompter
	Presenter ports.RunPresenter
	Logger    *logger.SlogLogger
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config        domain.Config
	ConfigLoader  *config.FileLoader
	Logger        ports.Logger
	Collector     ports.ContextCollector
	Classifier    *security.Classifier
	Executor      *executor.ShellExecutor
	Gate          *gate.Service
	RunService    *run.Service
	AssistService *assist.Service
	DoctorService *doctor.Service
	HistoryStore  ports.HistoryRepository
	CacheStore    *cache.FileCache
	OpenRouter    *ai.Client

	closers []func() error
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewStd(opts.Verbose)
	}

	cfgLoader := config.NewFileLoader(opts.ConfigPath, log.With("config"))
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	cfg.Offline = opts.Offline
	if opts.Model != "" {
		cfg.OpenRouter.Model = opts.Model
	}

	c := &Container{Config: cfg, ConfigLoader: cfgLoader, Logger: log}

	c.Classifier, err = buildClassifier(cfg, log)
	if err != nil {
		return nil, err
	}

	c.Collector = contextcollector.NewBasicCollector(contextcollector.Options{
		Tools:        cfg.Context.Tools,
		ProbeTimeout: cfg.ToolProbeTimeout(),
		Logger:       log.With("context"),
	})
	c.Executor = executor.New(executor.Options{
		Shell:          cfg.ExecutionShell(),
		MaxOutputBytes: cfg.MaxOutputBytes(),
		Logger:         log.With("executor"),
	})
	c.Gate = gate.New(opts.Prompter, cfg.ConfirmLiteral(), log.With("gate"))
	c.OpenRouter = ai.NewClient(cfg, log.With("openrouter"))
	c.CacheStore = cache.NewFileCache(cfg.Cache.Dir, cfg.ModelsCacheTTL())
	c.HistoryStore = c.openHistory(ctx, cfg, log)

	c.RunService = &run.Service{
		Generator:  ai.NewGenerator(cfg.Offline, c.OpenRouter, log.With("generator")),
		Collector:  c.Collector,
		Classifier: c.Classifier,
		Gate:       c.Gate,
		Executor:   c.Executor,
		Presenter:  opts.Presenter,
		History:    c.HistoryStore,
		Logger:     log.With("run"),
		Model:      cfg.ChatModel(""),
		Timeout:    cfg.ExecutionTimeout(),
	}

	c.AssistService = &assist.Service{
		Chat:       c.OpenRouter,
		Collector:  c.Collector,
		Prompts:    ai.Prompts{},
		Classifier: c.Classifier,
		Catalog:    c.OpenRouter,
		Cache:      c.CacheStore,
		Logger:     log.With("assist"),
		Offline:    cfg.Offline,
	}

	c.DoctorService = &doctor.Service{
		ConfigProvider:   offlineProvider{ConfigProvider: cfgLoader, offline: cfg.Offline},
		ContextCollector: c.Collector,
		Classifier:       c.Classifier,
		History:          c.HistoryStore,
		Models:           c.OpenRouter,
		Keys:             c.OpenRouter,
		Chat:             c.OpenRouter,
		ConfigPath:       cfgLoader.Path(),
		EnvFile:          cfgLoader.EnvFile(),
	}

	return c, nil
}

// BuildDiagnostics returns a doctor service even when the full graph cannot
// be built, so a broken config file can still be reported.
func BuildDiagnostics(ctx context.Context, opts Options) (*doctor.Service, *Container) {
	c, err := BuildContainer(ctx, opts)
	if err == nil {
		return c.DoctorService, c
	}
	loader := config.NewFileLoader(opts.ConfigPath, nil)
	svc := &doctor.Service{
		ConfigProvider: loader,
		ConfigPath:     loader.Path(),
		EnvFile:        loader.EnvFile(),
	}
	if classifier, cerr := security.NewDefaultClassifier(); cerr == nil {
		svc.Classifier = classifier
	}
	return svc, nil
}

// Close releases open stores.
func (c *Container) Close() error {
	var firstErr error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// buildClassifier compiles the canonical rules plus the optional user file.
// A broken user file falls back to the canonical table alone.
func buildClassifier(cfg domain.Config, log ports.Logger) (*security.Classifier, error) {
	table, err := security.LoadTable(cfg.Security.RulesFile)
	if err == nil {
		var classifier *security.Classifier
		if classifier, err = security.NewClassifier(table); err == nil {
			return classifier, nil
		}
	}
	log.Warn("ignoring extra rules", map[string]interface{}{
		"path":  cfg.Security.RulesFile,
		"error": err.Error(),
	})
	classifier, err := security.NewDefaultClassifier()
	if err != nil {
		return nil, fmt.Errorf("compile canonical rules: %w", err)
	}
	return classifier, nil
}

// openHistory opens the run store and applies retention. Failures disable
// history instead of failing the invocation.
func (c *Container) openHistory(ctx context.Context, cfg domain.Config, log ports.Logger) ports.HistoryRepository {
	if !cfg.History.Enabled {
		return nil
	}
	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		log.Warn("history disabled", map[string]interface{}{"error": err.Error()})
		return nil
	}
	c.closers = append(c.closers, store.Close)

	if retention := cfg.HistoryRetention(); retention > 0 {
		removed, err := store.Prune(ctx, time.Now().Add(-retention))
		if err != nil {
			log.Warn("history prune failed", map[string]interface{}{"error": err.Error()})
		} else if removed > 0 {
			log.Debug("pruned history", map[string]interface{}{"removed": removed})
		}
	}
	return store
}

// offlineProvider re-applies the --offline flag to a freshly loaded config.
type offlineProvider struct {
	ports.ConfigProvider
	offline bool
}

func (p offlineProvider) Load(ctx context.Context) (domain.Config, error) {
	cfg, err := p.ConfigProvider.Load(ctx)
	cfg.Offline = p.offline
	return cfg, err
}
