package adversarial

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/trustscan-dev/trustscan/internal/media"
	"github.com/trustscan-dev/trustscan/internal/model"
)

// ScoreFunc scores a frame sequence, returning a trust score in [0, 1].
// The tester treats it as opaque; wrappers over the vision signal
// provider are the usual implementation.
type ScoreFunc func(ctx context.Context, frames []media.Frame) (float64, error)

// Tester re-scores degraded copies of an input against the fixed attack
// catalog and reports per-attack score degradation. It is stateless and
// safe for concurrent use.
type Tester struct {
	logger *slog.Logger
}

// NewTester returns a robustness tester logging per-attack progress at
// debug level. A nil logger disables logging.
func NewTester(logger *slog.Logger) *Tester {
	return &Tester{logger: logger}
}

// Test computes a baseline score for frames, then replays every catalog
// attack on an independent copy and records the attacked score and its
// absolute degradation from the baseline.
//
// The caller's frames are never mutated. A failing attack (transform or
// score error) is recorded on its own entry as failed and never aborts
// the remaining catalog. Only a baseline failure aborts the run, since
// degradation is undefined without it.
func (t *Tester) Test(ctx context.Context, frames []media.Frame, scoreFn ScoreFunc) (*model.AdversarialResult, error) {
	if len(frames) == 0 {
		return nil, media.ErrNoFrames
	}

	original, err := scoreFn(ctx, frames)
	if err != nil {
		return nil, fmt.Errorf("baseline score: %w", err)
	}

	result := &model.AdversarialResult{
		OriginalScore: original,
		Attacks:       make(map[string]model.AttackOutcome, len(Catalog())),
	}

	for _, attack := range Catalog() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcome := t.runAttack(ctx, attack, frames, original, scoreFn)
		result.Attacks[attack.Name()] = outcome
	}
	return result, nil
}

func (t *Tester) runAttack(ctx context.Context, attack Attack, frames []media.Frame, original float64, scoreFn ScoreFunc) model.AttackOutcome {
	attacked, err := attack.Apply(frames)
	if err == nil {
		var score float64
		score, err = scoreFn(ctx, attacked)
		if err == nil {
			outcome := model.AttackOutcome{
				Score:       score,
				Degradation: math.Abs(original - score),
			}
			if t.logger != nil {
				t.logger.Debug("attack evaluated",
					slog.String("attack", attack.Name()),
					slog.Float64("score", score),
					slog.Float64("degradation", outcome.Degradation))
			}
			return outcome
		}
	}
	if t.logger != nil {
		t.logger.Debug("attack failed",
			slog.String("attack", attack.Name()),
			slog.String("error", err.Error()))
	}
	return model.AttackOutcome{Failed: true, Error: err.Error()}
}
