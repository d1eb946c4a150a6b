package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/promoforge/promoforge/internal/assembly"
	"github.com/promoforge/promoforge/internal/remote"
	"github.com/promoforge/promoforge/internal/scenegen"
)

// VisionResult is the outcome of a successful product image analysis.
type VisionResult struct {
	Truth      ProductTruth
	Confidence float64
}

// VisionAnalyzer extracts product truth from a product image. Analysis is
// best-effort from the pipeline's perspective: the orchestrator substitutes
// DefaultProductTruth on error rather than aborting the run.
type VisionAnalyzer interface {
	Analyze(ctx context.Context, imageRef, productName string) (VisionResult, error)
}

// AssetResolver turns a scene's asset reference into a form the generation
// service accepts. A non-empty note records a trace-worthy side effect such as
// placeholder synthesis.
type AssetResolver interface {
	Resolve(assetRef string) (resolved string, note string, err error)
}

// Config holds the orchestrator's timing and output knobs.
type Config struct {
	ProductName      string          // name substituted into prompt templates
	PollInterval     time.Duration   // fixed delay between status polls
	SceneDeadline    time.Duration   // wall-clock bound per scene generation job
	AssemblyDeadline time.Duration   // wall-clock bound for the render job
	RenderOutput     assembly.Output // output options passed to the edit service
	CacheTTL         time.Duration   // TTL for cached prompt plans
}

// DefaultConfig returns production-ready defaults. Both generation and
// assembly polling carry deadlines so no run can hang on a stuck remote job.
func DefaultConfig() Config {
	return Config{
		ProductName:      "Product",
		PollInterval:     5 * time.Second,
		SceneDeadline:    10 * time.Minute,
		AssemblyDeadline: 15 * time.Minute,
		CacheTTL:         DefaultCacheTTL,
	}
}

// Deps are the orchestrator's collaborators. Vision, Cache and Resolver may be
// nil; Scenes and Assembler are required for runs that reach their stages.
type Deps struct {
	Vision    VisionAnalyzer
	Scenes    scenegen.Client
	Assembler assembly.Client
	Resolver  AssetResolver
	Cache     *PromptCache
	Logger    *slog.Logger
}

// Orchestrator drives one pipeline run through
// validating -> analyzing -> matching -> prompting -> generating -> assembling.
// It keeps no state between runs; every invocation is independent except for
// the shared prompt cache.
type Orchestrator struct {
	deps Deps
	cfg  Config
}

func New(deps Deps, cfg Config) *Orchestrator {
	if cfg.ProductName == "" {
		cfg.ProductName = "Product"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{deps: deps, cfg: cfg}
}

// Run executes the full pipeline for one input. On success the result carries
// the assembled video URL, the concatenated prompt text, and the output bag;
// any terminal failure is returned as an error and never as a partial result.
func (o *Orchestrator) Run(ctx context.Context, input Input) (*Result, error) {
	opts := input.Options
	log := o.runLogger(opts)

	log("validating inputs")
	if input.ProductImageURL == "" {
		return nil, &ValidationError{Field: "productImageUrl"}
	}

	log("analyzing product image")
	truth := o.analyze(ctx, input, opts)

	log("matching assets")
	match := MatchProductAssets(nil, []string{input.ProductImageURL})

	market := BuildMarketInsight(input.MarketingAngle)

	log("synthesizing prompts")
	scenes, timeline := o.synthesize(truth, market, match)
	if len(scenes) == 0 {
		return nil, fmt.Errorf("prompt synthesis produced no scenes")
	}
	combined := CombinedPrompt(scenes)

	if !opts.SendToSora2 {
		return &Result{
			Prompt: combined,
			Output: Output{Prompts: scenes, Timeline: timeline},
		}, nil
	}

	log("generating scenes")
	artifacts, notes, err := o.generate(ctx, scenes, opts)
	if err != nil {
		return nil, err
	}

	if !opts.EnableShotstack {
		return &Result{
			Prompt: combined,
			Output: Output{Scenes: artifacts, Timeline: timeline, Notes: notes},
		}, nil
	}

	log("assembling final video")
	render, err := o.assemble(ctx, scenes, artifacts, opts)
	if err != nil {
		return nil, err
	}

	return &Result{
		VideoURL: render.ResultURL,
		Prompt:   combined,
		Output: Output{
			Scenes:   artifacts,
			RenderID: render.ID,
			Timeline: timeline,
			Notes:    notes,
		},
	}, nil
}

// analyze runs best-effort vision analysis. Failures are logged and replaced
// by the default truth so the run can continue.
func (o *Orchestrator) analyze(ctx context.Context, input Input, opts Options) ProductTruth {
	truth := DefaultProductTruth()
	if !opts.GeneratePrompt || o.deps.Vision == nil {
		return truth
	}

	res, err := o.deps.Vision.Analyze(ctx, input.ProductImageURL, o.cfg.ProductName)
	if err != nil {
		o.deps.Logger.Warn("vision analysis failed, using default product truth", "error", err)
		return truth
	}

	o.deps.Logger.Info("vision analysis complete", "confidence", res.Confidence)
	return res.Truth
}

// synthesize consults the prompt cache before invoking the synthesizer. The
// synthesizer is deterministic, so cached plans are interchangeable with
// freshly computed ones.
func (o *Orchestrator) synthesize(truth ProductTruth, market MarketInsight, match ProductMatch) ([]SceneSpec, []TimelineEntry) {
	key := CacheKey(o.cfg.ProductName, truth)

	if scenes, timeline, ok := o.deps.Cache.Get(key); ok {
		o.deps.Logger.Debug("prompt cache hit", "key", key)
		return scenes, timeline
	}

	scenes := Synthesize(o.cfg.ProductName, truth, market, match, FirstAssetSelector)
	timeline := TimelineFromScenes(scenes)

	ttl := o.cfg.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	o.deps.Cache.Put(key, scenes, timeline, ttl)

	return scenes, timeline
}

// generate fans scene jobs out in parallel and reassembles the finished
// artifacts in original scene order. The first failure cancels the remaining
// in-flight scenes and aborts the run; no partial set ever reaches assembly.
func (o *Orchestrator) generate(ctx context.Context, scenes []SceneSpec, opts Options) ([]SceneArtifact, []string, error) {
	artifacts := make([]SceneArtifact, len(scenes))

	var mu sync.Mutex
	var notes []string

	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range scenes {
		g.Go(func() error {
			reference := ""
			if spec.AssetRef != "" && o.deps.Resolver != nil {
				resolved, note, err := o.deps.Resolver.Resolve(spec.AssetRef)
				if err != nil {
					return fmt.Errorf("scene %s: resolve asset: %w", spec.SceneID, err)
				}
				reference = resolved
				if note != "" {
					mu.Lock()
					notes = append(notes, note)
					mu.Unlock()
				}
			}

			job, err := o.deps.Scenes.Submit(gctx, scenegen.Request{
				Prompt:         spec.Prompt,
				Duration:       spec.Duration,
				ReferenceImage: reference,
			})
			if err != nil {
				return fmt.Errorf("scene %s: %w", spec.SceneID, err)
			}

			job, err = remote.Wait(gctx, job,
				remote.WaitConfig{Interval: o.cfg.PollInterval, Deadline: o.cfg.SceneDeadline},
				o.deps.Scenes.Poll,
				func(j remote.Job) {
					if opts.LogSteps {
						o.deps.Logger.Info("scene status", "scene_id", spec.SceneID, "job_id", j.ID, "state", j.State)
					}
				})
			if err != nil {
				return fmt.Errorf("scene %s: %w", spec.SceneID, err)
			}
			if job.State == remote.StateFailed {
				return &SceneFailedError{SceneID: spec.SceneID, JobID: job.ID, Message: job.Message}
			}

			artifacts[i] = SceneArtifact{
				SceneID:  spec.SceneID,
				VideoURL: job.ResultURL,
				Duration: spec.Duration,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return artifacts, notes, nil
}

// assemble submits one render over the ordered artifacts and polls it to a
// terminal state. Clip order follows scene order, never completion order.
func (o *Orchestrator) assemble(ctx context.Context, scenes []SceneSpec, artifacts []SceneArtifact, opts Options) (remote.Job, error) {
	clips := make([]assembly.Clip, len(artifacts))
	for i, a := range artifacts {
		clips[i] = assembly.Clip{
			VideoURL:   a.VideoURL,
			Duration:   a.Duration,
			Transition: scenes[i].Transition,
		}
	}

	job, err := o.deps.Assembler.Submit(ctx, clips, o.cfg.RenderOutput)
	if err != nil {
		return remote.Job{}, fmt.Errorf("assembly: %w", err)
	}

	job, err = remote.Wait(ctx, job,
		remote.WaitConfig{Interval: o.cfg.PollInterval, Deadline: o.cfg.AssemblyDeadline},
		o.deps.Assembler.Poll,
		func(j remote.Job) {
			if opts.LogSteps {
				o.deps.Logger.Info("assembly status", "render_id", j.ID, "state", j.State)
			}
		})
	if err != nil {
		return remote.Job{}, fmt.Errorf("assembly: %w", err)
	}
	if job.State == remote.StateFailed {
		return remote.Job{}, &AssemblyFailedError{RenderID: job.ID, Message: job.Message}
	}

	return job, nil
}

func (o *Orchestrator) runLogger(opts Options) func(string) {
	return func(step string) {
		if opts.LogSteps {
			o.deps.Logger.Info("pipeline step", "step", step)
		} else {
			o.deps.Logger.Debug("pipeline step", "step", step)
		}
	}
}
