package llm

import (
	"context"
	goerrors "errors"

	"github.com/rs/zerolog"

	"github.com/technofriends/youtube-insights/errors"
	"github.com/technofriends/youtube-insights/models"
)

// Invoker performs a single model invocation for one candidate.
type Invoker interface {
	Invoke(
		ctx context.Context,
		candidate models.Candidate,
		systemPrompt, userPrompt, transcript string,
	) (models.ModelResult, error)
}

// Dispatcher drives an Invoker across an ordered candidate list under an
// output-selection strategy. Candidate order is caller-supplied and
// authoritative; no reordering or scoring happens here.
type Dispatcher struct {
	invoker Invoker
	logger  zerolog.Logger
}

func NewDispatcher(invoker Invoker) *Dispatcher {
	return &Dispatcher{
		invoker: invoker,
		logger:  zerolog.New(zerolog.NewConsoleWriter()),
	}
}

// Dispatch performs a single ordered pass over the candidates.
//
// Under First Result the scan short-circuits on the first success; a
// candidate failure of any kind advances to the next candidate. Under
// Return All every candidate is invoked exactly once and all successes are
// accumulated in candidate order; an empty accumulation is a valid, if
// degenerate, outcome. Per-candidate failures never propagate as errors;
// exhausting all candidates without a success under First Result yields the
// aggregate failure.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	candidates []models.Candidate,
	systemPrompt, userPrompt, transcript string,
	strategy models.Strategy,
) models.DispatchOutcome {
	results := make([]models.ModelResult, 0, len(candidates))

	for _, candidate := range candidates {
		logger := d.logger.With().
			Str("provider", candidate.Provider).
			Str("model", candidate.Model).
			Logger()
		logger.Debug().Msg("Invoking model candidate")

		result, err := d.invoker.Invoke(ctx, candidate, systemPrompt, userPrompt, transcript)
		if err != nil {
			var unknown *ErrUnknownProvider
			if goerrors.As(err, &unknown) {
				logger.Warn().Str("provider", unknown.Provider).Msg("Provider not in model map")
			} else {
				logger.Error().Err(err).Msg("Model invocation failed")
			}
			continue
		}

		logger.Debug().Msg("Model invocation succeeded")

		if strategy != models.StrategyReturnAll {
			return models.DispatchOutcome{
				Strategy: strategy,
				Results:  []models.ModelResult{result},
			}
		}

		results = append(results, result)
	}

	if strategy == models.StrategyReturnAll {
		return models.DispatchOutcome{Strategy: strategy, Results: results}
	}

	d.logger.Error().Int("candidates", len(candidates)).Msg("No successful response from any model")
	return models.DispatchOutcome{
		Strategy: strategy,
		Err:      errors.MsgNoSuccessfulModel,
	}
}
