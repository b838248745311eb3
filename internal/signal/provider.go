package signal

import (
	"context"

	"github.com/trustscan-dev/trustscan/internal/media"
	"github.com/trustscan-dev/trustscan/internal/model"
)

// Provider is the interface every signal producer implements.
// Each provider focuses on one independent, individually weak
// authenticity indicator.
//
// Design decision: we use an interface rather than function types because:
//  1. It allows providers to carry tuning state
//  2. It provides a Name() method for logging and report breakdowns
//  3. It enables testing the pipeline with mock providers
type Provider interface {
	// Name returns the signal name used in the report breakdown
	// (one of the model.Signal* constants for the built-in providers).
	Name() string

	// Analyze extracts the signal from the media. Implementations must
	// not mutate the media. A provider that cannot produce evidence
	// (missing modality, degenerate input) returns the neutral score and
	// nil error; an error return is reserved for unexpected failures,
	// which the caller resolves to the neutral score as well.
	Analyze(ctx context.Context, m *media.Media) (model.SignalScore, error)
}

// BuiltinProviders returns the three default signal providers in
// fusion-weight order: vision, audio, temporal.
func BuiltinProviders() []Provider {
	return []Provider{
		NewVisionProvider(),
		NewAudioProvider(),
		NewTemporalProvider(),
	}
}
