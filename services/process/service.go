package process

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/technofriends/youtube-insights/airtable"
	"github.com/technofriends/youtube-insights/errors"
	"github.com/technofriends/youtube-insights/llm"
	"github.com/technofriends/youtube-insights/models"
	"github.com/technofriends/youtube-insights/services/transcript"
)

// Service runs one webhook request end to end: configuration lookup,
// transcript acquisition, model dispatch.
type Service interface {
	Process(ctx context.Context, req models.ProcessingRequest) (models.DispatchOutcome, error)
}

type Config struct {
	// RequestTimeout bounds one full request: lookup, acquisition, dispatch.
	RequestTimeout time.Duration
}

type service struct {
	resolver   airtable.Resolver
	transcript transcript.Service
	dispatcher *llm.Dispatcher
	config     Config
	logger     zerolog.Logger
}

func NewService(
	resolver airtable.Resolver,
	transcriptService transcript.Service,
	dispatcher *llm.Dispatcher,
	config Config,
) Service {
	return &service{
		resolver:   resolver,
		transcript: transcriptService,
		dispatcher: dispatcher,
		config:     config,
		logger:     zerolog.New(zerolog.NewConsoleWriter()),
	}
}

// Process returns an error only for terminal 400-class failures surfaced
// before core work begins (missing or inactive configuration). Acquisition
// and dispatch failures are embedded in the outcome payload, per the webhook
// contract.
func (s *service) Process(ctx context.Context, req models.ProcessingRequest) (models.DispatchOutcome, error) {
	const op = "ProcessService.Process"

	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RequestTimeout)
		defer cancel()
	}

	section := req.Section()
	logger := s.logger.With().
		Str("operation", op).
		Str("video_id", req.VideoID).
		Str("section", section).
		Logger()
	logger.Info().Msg("Processing video request")

	row, err := s.resolver.Lookup(ctx, section)
	if err != nil {
		logger.Error().Err(err).Msg("Configuration lookup failed")
		return models.DispatchOutcome{}, errors.Internal(op, err, "Configuration lookup failed")
	}

	if row == nil || !row.IsActive {
		logger.Error().Msg("Invalid or inactive application section")
		return models.DispatchOutcome{}, errors.InvalidInput(op, nil, errors.MsgInactiveSection)
	}

	candidates, err := row.Candidates()
	if err != nil {
		logger.Error().Err(err).Msg("Malformed configuration row")
		return models.DispatchOutcome{}, errors.Internal(op, err, "Invalid model configuration")
	}

	text, err := s.transcript.Acquire(ctx, req.VideoID)
	if err != nil {
		logger.Error().Err(err).Msg("Transcript acquisition failed")
		return models.DispatchOutcome{
			Strategy: row.Strategy,
			Err:      errors.MsgNoTranscript,
		}, nil
	}

	logger.Info().
		Int("transcript_length", len(text)).
		Int("candidates", len(candidates)).
		Str("strategy", string(row.Strategy)).
		Msg("Dispatching transcript to model candidates")

	outcome := s.dispatcher.Dispatch(ctx, candidates, row.SystemPrompt, row.UserPrompt, text, row.Strategy)
	return outcome, nil
}
