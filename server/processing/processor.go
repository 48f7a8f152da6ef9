package processing

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/socialwiz/wingman/config"
	"github.com/socialwiz/wingman/errors"
	"github.com/socialwiz/wingman/server/metrics"
	"github.com/socialwiz/wingman/server/middleware"
	"github.com/socialwiz/wingman/server/prompt"
	"github.com/socialwiz/wingman/server/provider"
	"github.com/socialwiz/wingman/server/validation"
	"github.com/socialwiz/wingman/server/vision"
)

// Mode identifies one of the three request kinds.
type Mode string

const (
	ModeRewrite    Mode = "rewrite"
	ModeIcebreaker Mode = "icebreaker"
	ModeCurveball  Mode = "curveball"
)

// RewriteRequest restyles a user's draft reply to another person's message.
type RewriteRequest struct {
	OriginalMessage string `validate:"required"`
	Draft           string `validate:"required"`
	Mood            string
	PersonalContext string
	DisabledTraits  []string
	Image           *provider.Image
}

// IcebreakerRequest generates a conversation opener.
type IcebreakerRequest struct {
	OpenerType     string `validate:"required"`
	Context        string
	DisabledTraits []string
}

// CurveballRequest crafts a reply to an awkward conversational moment.
type CurveballRequest struct {
	Situation      string `validate:"required"`
	Mood           string
	DisabledTraits []string
	Image          *provider.Image
}

// Reply is the caller-facing result of any mode.
type Reply struct {
	Reply string `json:"reply"`
}

// Canned replies used when the fallback policy is "canned" and a provider
// fails. Never used for validation or normalization failures.
const cannedCurveballReply = "I'm not quite sure how to respond to that, but let's keep talking!"

var openerPrefixes = map[string]string{
	"if_you":               "If you...",
	"between":              "Between...",
	"if_i_was":             "If I was...",
	"would_you_rather":     "Would you rather...",
	"what_is_something":    "What is something that...",
	"in_a_situation":       "In a situation where...",
	"how_would_you_handle": "How would you handle...",
}

// Processor orchestrates the request pipeline: validate, extract image
// context, build the prompt, generate, normalize. One call per request, no
// retries, no state shared between requests.
type Processor struct {
	groq      provider.TextGenerator
	gemini    provider.TextGenerator
	extractor *vision.Extractor
	tokens    *validation.TokenCounter
	validate  *validator.Validate
	metrics   *metrics.Metrics
	logger    *zap.Logger

	generationTimeout time.Duration
	visionTimeout     time.Duration
	maxOutputTokens   int
	fallbackPolicy    atomic.Value // string
}

// ProcessorOptions configures a Processor.
type ProcessorOptions struct {
	Groq      provider.TextGenerator
	Gemini    provider.TextGenerator
	Extractor *vision.Extractor
	Tokens    *validation.TokenCounter
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Chat      config.ChatConfig
}

// NewProcessor creates a Processor from its dependencies.
func NewProcessor(opts ProcessorOptions) *Processor {
	p := &Processor{
		groq:              opts.Groq,
		gemini:            opts.Gemini,
		extractor:         opts.Extractor,
		tokens:            opts.Tokens,
		validate:          validator.New(),
		metrics:           opts.Metrics,
		logger:            opts.Logger,
		generationTimeout: opts.Chat.GenerationTimeout,
		visionTimeout:     opts.Chat.VisionTimeout,
		maxOutputTokens:   opts.Chat.MaxOutputTokens,
	}
	p.fallbackPolicy.Store(opts.Chat.FallbackPolicy)
	return p
}

// SetFallbackPolicy swaps the fallback policy at runtime. Used by the config
// watcher on reload.
func (p *Processor) SetFallbackPolicy(policy string) {
	p.fallbackPolicy.Store(policy)
}

// Rewrite handles the rewrite mode.
func (p *Processor) Rewrite(ctx context.Context, req RewriteRequest) (Reply, error) {
	requestID := middleware.GetRequestID(ctx)

	if err := p.validate.Struct(req); err != nil {
		return Reply{}, p.validationError(requestID, ModeRewrite, err)
	}

	imageContext := p.extractImageContext(ctx, req.Image, vision.ContextGeneral)

	composed := prompt.BuildRewritePrompt(prompt.RewriteInput{
		OriginalMessage: req.OriginalMessage,
		UserDraft:       req.Draft,
		Mood:            req.Mood,
		PersonalContext: req.PersonalContext,
		ImageContext:    imageContext,
		PersonaBlock:    prompt.BlendTraits(req.DisabledTraits),
	})

	reply, err := p.generate(ctx, requestID, ModeRewrite, p.gemini, composed, 0.7)
	if err != nil {
		if canned, ok := p.cannedFallback(ModeRewrite, req, err); ok {
			return canned, nil
		}
		return Reply{}, err
	}
	return reply, nil
}

// Icebreaker handles the icebreaker mode.
func (p *Processor) Icebreaker(ctx context.Context, req IcebreakerRequest) (Reply, error) {
	requestID := middleware.GetRequestID(ctx)

	if err := p.validate.Struct(req); err != nil {
		return Reply{}, p.validationError(requestID, ModeIcebreaker, err)
	}

	composed := prompt.BuildIcebreakerPrompt(prompt.IcebreakerInput{
		OpenerType:   req.OpenerType,
		Context:      req.Context,
		PersonaBlock: prompt.BlendTraits(req.DisabledTraits),
	})

	reply, err := p.generate(ctx, requestID, ModeIcebreaker, p.groq, composed, 0.8)
	if err != nil {
		if canned, ok := p.cannedFallback(ModeIcebreaker, req, err); ok {
			return canned, nil
		}
		return Reply{}, err
	}
	return reply, nil
}

// Curveball handles the curveball mode.
func (p *Processor) Curveball(ctx context.Context, req CurveballRequest) (Reply, error) {
	requestID := middleware.GetRequestID(ctx)

	if err := p.validate.Struct(req); err != nil {
		return Reply{}, p.validationError(requestID, ModeCurveball, err)
	}

	imageContext := p.extractImageContext(ctx, req.Image, vision.ContextCurveball)

	composed := prompt.BuildCurveballPrompt(prompt.CurveballInput{
		Situation:    req.Situation,
		Mood:         req.Mood,
		ImageContext: imageContext,
		PersonaBlock: prompt.BlendTraits(req.DisabledTraits),
	})

	reply, err := p.generate(ctx, requestID, ModeCurveball, p.gemini, composed, 0.8)
	if err != nil {
		if canned, ok := p.cannedFallback(ModeCurveball, req, err); ok {
			return canned, nil
		}
		return Reply{}, err
	}
	return reply, nil
}

// extractImageContext runs vision extraction when an image was supplied.
// Extraction failure yields absent context, never a request failure.
func (p *Processor) extractImageContext(ctx context.Context, image *provider.Image, contextType vision.ContextType) string {
	if image == nil || p.extractor == nil {
		return ""
	}
	vctx := ctx
	if p.visionTimeout > 0 {
		var cancel context.CancelFunc
		vctx, cancel = context.WithTimeout(ctx, p.visionTimeout)
		defer cancel()
	}
	return p.extractor.Extract(vctx, *image, contextType)
}

// generate runs the prompt-size check, the provider call, and normalization.
func (p *Processor) generate(ctx context.Context, requestID string, mode Mode, gen provider.TextGenerator, composed string, temperature float64) (Reply, error) {
	if p.tokens != nil {
		if err := p.tokens.CheckPrompt(composed); err != nil {
			return Reply{}, errors.NewValidationError(requestID, err.Error(), map[string]interface{}{
				"field": "prompt",
			})
		}
	}

	gctx := ctx
	if p.generationTimeout > 0 {
		var cancel context.CancelFunc
		gctx, cancel = context.WithTimeout(ctx, p.generationTimeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := gen.Generate(gctx, composed, provider.Options{
		Temperature: temperature,
		MaxTokens:   p.maxOutputTokens,
	})
	elapsed := time.Since(start)
	if p.metrics != nil {
		p.metrics.ProviderLatency.WithLabelValues(gen.Name()).Observe(elapsed.Seconds())
	}

	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(gctx.Err(), context.DeadlineExceeded) {
			p.recordGeneration(mode, gen.Name(), "timeout")
			p.logger.Error("generation timed out",
				zap.String("request_id", requestID),
				zap.String("mode", string(mode)),
				zap.String("provider", gen.Name()),
				zap.Duration("elapsed", elapsed),
			)
			return Reply{}, errors.NewTimeoutError(requestID, p.generationTimeout.String(), err)
		}
		p.recordGeneration(mode, gen.Name(), "provider_error")
		p.logger.Error("generation failed",
			zap.String("request_id", requestID),
			zap.String("mode", string(mode)),
			zap.String("provider", gen.Name()),
			zap.Error(err),
		)
		return Reply{}, errors.NewProviderError(requestID, fmt.Sprintf("%s generation failed", gen.Name()), err)
	}

	normalized, err := Normalize(raw)
	if err != nil {
		p.recordGeneration(mode, gen.Name(), "normalization_error")
		var nerr *NormalizeError
		kind := errors.InvalidFormat
		if stderrors.As(err, &nerr) && nerr.Kind == MissingField {
			kind = errors.MissingField
		}
		p.logger.Error("model output could not be normalized",
			zap.String("request_id", requestID),
			zap.String("mode", string(mode)),
			zap.String("provider", gen.Name()),
			zap.String("kind", string(kind)),
		)
		return Reply{}, errors.NewNormalizationError(requestID, kind, raw, err)
	}

	p.recordGeneration(mode, gen.Name(), "success")
	return Reply{Reply: normalized.Reply}, nil
}

func (p *Processor) recordGeneration(mode Mode, providerName, outcome string) {
	if p.metrics != nil {
		p.metrics.GenerationsTotal.WithLabelValues(string(mode), providerName, outcome).Inc()
	}
}

// cannedFallback substitutes a static reply for a provider failure when the
// policy allows it. Validation, timeout, and normalization errors always
// propagate.
func (p *Processor) cannedFallback(mode Mode, req interface{}, err error) (Reply, bool) {
	policy, _ := p.fallbackPolicy.Load().(string)
	if policy != config.FallbackCanned {
		return Reply{}, false
	}

	var werr *errors.WingmanError
	if !stderrors.As(err, &werr) || werr.Type != errors.ProviderError {
		return Reply{}, false
	}

	switch mode {
	case ModeRewrite:
		r := req.(RewriteRequest)
		return Reply{Reply: fmt.Sprintf("That's cool! %s", r.Draft)}, true
	case ModeIcebreaker:
		r := req.(IcebreakerRequest)
		prefix, ok := openerPrefixes[r.OpenerType]
		if !ok {
			prefix = openerPrefixes["if_you"]
		}
		return Reply{Reply: fmt.Sprintf("%s something interesting?", prefix)}, true
	case ModeCurveball:
		return Reply{Reply: cannedCurveballReply}, true
	}
	return Reply{}, false
}

func (p *Processor) validationError(requestID string, mode Mode, err error) *errors.WingmanError {
	details := map[string]interface{}{"mode": string(mode)}
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		details["field"] = verrs[0].Field()
		details["error"] = verrs[0].Tag()
	}
	return errors.NewValidationError(requestID,
		fmt.Sprintf("missing required field for %s mode", mode), details)
}
