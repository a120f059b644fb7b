// Package batch drives bulk audio generation over imported quests.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/internal/quest"
	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/internal/store"
	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts"
)

// Synthesizer is the slice of the dispatch engine the generator needs.
type Synthesizer interface {
	GenerateAudio(ctx context.Context, req tts.Request, providerID string) (*tts.Synthesis, error)
}

// Options controls a batch run.
type Options struct {
	// Provider selects an explicit provider id; empty uses the active one.
	Provider string
	// VoiceID / Gender are applied to every request.
	VoiceID string
	Gender  string
	// Language and Format for every request.
	Language string
	Format   string
	// SkipExisting leaves quests alone that already have audio on disk.
	SkipExisting bool
	// DryRun previews the work without calling any provider.
	DryRun bool
	// Delay is the pause between submissions, to stay polite with vendor
	// rate limits on top of the engine's own backoff.
	Delay time.Duration
	// Concurrency bounds parallel synthesis calls. Values < 1 mean 1.
	Concurrency int
}

// Outcome tallies one batch run.
type Outcome struct {
	Planned   int // quests selected for generation
	Skipped   int // already had audio
	Succeeded int
	Failed    int
}

// Generator runs quests through the synthesis engine.
type Generator struct {
	engine Synthesizer
	audio  *store.AudioStore
	logger *log.Logger
}

// NewGenerator wires a batch generator.
func NewGenerator(engine Synthesizer, audio *store.AudioStore, logger *log.Logger) *Generator {
	return &Generator{engine: engine, audio: audio, logger: logger}
}

// Plan returns the quests a run would process: quests with text, minus
// the ones that already have audio when skipExisting is set.
func (g *Generator) Plan(quests []quest.Quest, skipExisting bool) (planned []quest.Quest, skipped int) {
	for _, q := range quests {
		if q.TTSText() == "" {
			continue
		}
		if skipExisting && g.audio.Has(q.ID) {
			skipped++
			continue
		}
		planned = append(planned, q)
	}
	return planned, skipped
}

// Run generates audio for the given quests. Individual quest failures are
// tallied, not fatal; only context cancellation aborts the run early.
func (g *Generator) Run(ctx context.Context, quests []quest.Quest, opts Options) (Outcome, error) {
	planned, skipped := g.Plan(quests, opts.SkipExisting)
	outcome := Outcome{Planned: len(planned), Skipped: skipped}

	if opts.DryRun || len(planned) == 0 {
		return outcome, nil
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var mu sync.Mutex
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(concurrency)

	for _, q := range planned {
		if err := ctx.Err(); err != nil {
			break
		}

		q := q
		grp.Go(func() error {
			fileName := q.AudioFileName(opts.Format)
			req := tts.Request{
				Text:       q.TTSText(),
				VoiceID:    opts.VoiceID,
				Gender:     opts.Gender,
				Language:   opts.Language,
				OutputPath: g.audio.Path(fileName),
				Format:     opts.Format,
			}

			_, err := g.engine.GenerateAudio(ctx, req, opts.Provider)
			if err != nil {
				// An aborted quest is not a failure.
				if ctx.Err() != nil {
					return ctx.Err()
				}
				mu.Lock()
				outcome.Failed++
				mu.Unlock()
				g.logger.Warn("Quest synthesis failed", "quest", q.ID, "error", err)
				return nil
			}

			mu.Lock()
			outcome.Succeeded++
			g.audio.Add(q.ID, fileName)
			mu.Unlock()
			g.logger.Debug("Quest synthesized", "quest", q.ID, "file", fileName)
			return nil
		})

		if opts.Delay > 0 {
			timer := time.NewTimer(opts.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}
	}

	err := grp.Wait()
	return outcome, err
}
