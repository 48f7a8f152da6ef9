package processing

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/socialwiz/wingman/config"
	"github.com/socialwiz/wingman/errors"
	"github.com/socialwiz/wingman/server/mocks"
	"github.com/socialwiz/wingman/server/provider"
	"github.com/socialwiz/wingman/server/vision"
)

func testChatConfig() config.ChatConfig {
	return config.ChatConfig{
		FallbackPolicy:    config.FallbackPropagate,
		GenerationTimeout: 5 * time.Second,
		VisionTimeout:     5 * time.Second,
		MaxOutputTokens:   1024,
	}
}

func newTestProcessor(groq, gemini *mocks.MockGenerator, visionMock *mocks.MockVision, chat config.ChatConfig) *Processor {
	var extractor *vision.Extractor
	if visionMock != nil {
		extractor = vision.NewExtractor(visionMock, zap.NewNop())
	}
	return NewProcessor(ProcessorOptions{
		Groq:      groq,
		Gemini:    gemini,
		Extractor: extractor,
		Logger:    zap.NewNop(),
		Chat:      chat,
	})
}

func TestRewriteSuccess(t *testing.T) {
	groq := mocks.NewMockGenerator("groq", `{"reply": "unused"}`)
	gemini := mocks.NewMockGenerator("gemini", `{"reply": "Not much, just vibing. You?"}`)
	p := newTestProcessor(groq, gemini, nil, testChatConfig())

	reply, err := p.Rewrite(context.Background(), RewriteRequest{
		OriginalMessage: "Hey, what are you up to?",
		Draft:           "Nothing much",
		Mood:            "casual",
	})
	require.NoError(t, err)
	assert.Equal(t, "Not much, just vibing. You?", reply.Reply)

	// Rewrite routes to Gemini at temperature 0.7.
	require.Len(t, gemini.Calls, 1)
	assert.Empty(t, groq.Calls)
	assert.InDelta(t, 0.7, gemini.Calls[0].Opts.Temperature, 0.001)
	assert.Equal(t, 1024, gemini.Calls[0].Opts.MaxTokens)
	assert.Contains(t, gemini.Calls[0].Prompt, `"Hey, what are you up to?"`)
	assert.Contains(t, gemini.Calls[0].Prompt, "Casual, friendly, and relaxed.")
}

func TestRewriteMissingDraft(t *testing.T) {
	groq := mocks.NewMockGenerator("groq", "")
	gemini := mocks.NewMockGenerator("gemini", "")
	p := newTestProcessor(groq, gemini, nil, testChatConfig())

	_, err := p.Rewrite(context.Background(), RewriteRequest{
		OriginalMessage: "Hey",
	})
	require.Error(t, err)

	var werr *errors.WingmanError
	require.True(t, stderrors.As(err, &werr))
	assert.Equal(t, errors.ValidationError, werr.Type)
	assert.Equal(t, "Draft", werr.Details["field"])

	// No provider is contacted on validation failure.
	assert.Empty(t, gemini.Calls)
	assert.Empty(t, groq.Calls)
}

func TestIcebreakerSuccess(t *testing.T) {
	groq := mocks.NewMockGenerator("groq", `{"reply": "Would you rather explore space or the deep sea?"}`)
	gemini := mocks.NewMockGenerator("gemini", `{"reply": "unused"}`)
	p := newTestProcessor(groq, gemini, nil, testChatConfig())

	reply, err := p.Icebreaker(context.Background(), IcebreakerRequest{
		OpenerType: "would_you_rather",
	})
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "Would you rather")

	// Icebreaker routes to Groq at temperature 0.8.
	require.Len(t, groq.Calls, 1)
	assert.Empty(t, gemini.Calls)
	assert.InDelta(t, 0.8, groq.Calls[0].Opts.Temperature, 0.001)
	assert.Contains(t, groq.Calls[0].Prompt, "Start with 'Would you rather...'")
}

func TestCurveballWithoutImageSkipsVision(t *testing.T) {
	gemini := mocks.NewMockGenerator("gemini", `{"reply": "Okay, what's so funny?"}`)
	visionMock := &mocks.MockVision{}
	p := newTestProcessor(mocks.NewMockGenerator("groq", ""), gemini, visionMock, testChatConfig())

	reply, err := p.Curveball(context.Background(), CurveballRequest{
		Situation: "She just sent three laughing emojis",
		Mood:      "curious",
	})
	require.NoError(t, err)
	assert.Equal(t, "Okay, what's so funny?", reply.Reply)

	// No image supplied, so the vision provider is never called.
	assert.Empty(t, visionMock.Instructions)
	require.Len(t, gemini.Calls, 1)
	assert.Contains(t, gemini.Calls[0].Prompt, "Show genuine interest and curiosity.")
}

func TestCurveballMissingSituation(t *testing.T) {
	p := newTestProcessor(mocks.NewMockGenerator("groq", ""), mocks.NewMockGenerator("gemini", ""), nil, testChatConfig())

	_, err := p.Curveball(context.Background(), CurveballRequest{Mood: "casual"})
	require.Error(t, err)

	var werr *errors.WingmanError
	require.True(t, stderrors.As(err, &werr))
	assert.Equal(t, errors.ValidationError, werr.Type)
}

func TestProviderFailurePropagates(t *testing.T) {
	gemini := &mocks.MockGenerator{
		ProviderName: "gemini",
		GenerateFunc: func(ctx context.Context, prompt string, opts provider.Options) (string, error) {
			return "", stderrors.New("connection refused")
		},
	}
	p := newTestProcessor(mocks.NewMockGenerator("groq", ""), gemini, nil, testChatConfig())

	reply, err := p.Rewrite(context.Background(), RewriteRequest{
		OriginalMessage: "hi",
		Draft:           "hey",
	})
	require.Error(t, err)
	assert.Empty(t, reply.Reply)

	var werr *errors.WingmanError
	require.True(t, stderrors.As(err, &werr))
	assert.Equal(t, errors.ProviderError, werr.Type)
}

func TestVisionFailureDoesNotFailRequest(t *testing.T) {
	gemini := mocks.NewMockGenerator("gemini", `{"reply": "All good!"}`)
	visionMock := &mocks.MockVision{
		DescribeFunc: func(ctx context.Context, instruction string, image provider.Image) (string, error) {
			return "", stderrors.New("vision backend down")
		},
	}
	p := newTestProcessor(mocks.NewMockGenerator("groq", ""), gemini, visionMock, testChatConfig())

	reply, err := p.Rewrite(context.Background(), RewriteRequest{
		OriginalMessage: "hi",
		Draft:           "hey",
		Image:           &provider.Image{Data: []byte{1, 2, 3}, MIME: "image/png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "All good!", reply.Reply)

	// Extraction was attempted but its failure left the prompt without
	// a visual context section.
	require.Len(t, visionMock.Instructions, 1)
	assert.NotContains(t, gemini.Calls[0].Prompt, "Visual Context from Chat Screenshot:")
}

func TestImageContextFlowsIntoPrompt(t *testing.T) {
	gemini := mocks.NewMockGenerator("gemini", `{"reply": "ok"}`)
	visionMock := &mocks.MockVision{
		DescribeFunc: func(ctx context.Context, instruction string, image provider.Image) (string, error) {
			return "A playful chat about travel plans.", nil
		},
	}
	p := newTestProcessor(mocks.NewMockGenerator("groq", ""), gemini, visionMock, testChatConfig())

	_, err := p.Curveball(context.Background(), CurveballRequest{
		Situation: "sudden topic change",
		Mood:      "casual",
		Image:     &provider.Image{Data: []byte{1}, MIME: "image/jpeg"},
	})
	require.NoError(t, err)

	// Curveball requests use the curveball extraction instruction.
	require.Len(t, visionMock.Instructions, 1)
	assert.Contains(t, visionMock.Instructions[0], "awkward or curveball situation")
	assert.Contains(t, gemini.Calls[0].Prompt, "A playful chat about travel plans.")
}

func TestGenerationTimeout(t *testing.T) {
	cfg := testChatConfig()
	cfg.GenerationTimeout = 10 * time.Millisecond

	gemini := &mocks.MockGenerator{
		ProviderName: "gemini",
		GenerateFunc: func(ctx context.Context, prompt string, opts provider.Options) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	p := newTestProcessor(mocks.NewMockGenerator("groq", ""), gemini, nil, cfg)

	_, err := p.Rewrite(context.Background(), RewriteRequest{
		OriginalMessage: "hi",
		Draft:           "hey",
	})
	require.Error(t, err)

	var werr *errors.WingmanError
	require.True(t, stderrors.As(err, &werr))
	assert.Equal(t, errors.TimeoutError, werr.Type)
}

func TestNormalizationFailurePreservesRawOutput(t *testing.T) {
	raw := "Sure! Here is a friendly reply for you."
	gemini := mocks.NewMockGenerator("gemini", raw)
	p := newTestProcessor(mocks.NewMockGenerator("groq", ""), gemini, nil, testChatConfig())

	_, err := p.Rewrite(context.Background(), RewriteRequest{
		OriginalMessage: "hi",
		Draft:           "hey",
	})
	require.Error(t, err)

	var werr *errors.WingmanError
	require.True(t, stderrors.As(err, &werr))
	assert.Equal(t, errors.NormalizationError, werr.Type)
	assert.Equal(t, raw, werr.Details["raw_output"])
}

func TestCannedFallbackPolicy(t *testing.T) {
	cfg := testChatConfig()
	cfg.FallbackPolicy = config.FallbackCanned

	failing := func(name string) *mocks.MockGenerator {
		return &mocks.MockGenerator{
			ProviderName: name,
			GenerateFunc: func(ctx context.Context, prompt string, opts provider.Options) (string, error) {
				return "", stderrors.New("provider down")
			},
		}
	}

	p := newTestProcessor(failing("groq"), failing("gemini"), nil, cfg)

	t.Run("rewrite echoes the draft", func(t *testing.T) {
		reply, err := p.Rewrite(context.Background(), RewriteRequest{
			OriginalMessage: "hi",
			Draft:           "Nothing much",
		})
		require.NoError(t, err)
		assert.Equal(t, "That's cool! Nothing much", reply.Reply)
	})

	t.Run("icebreaker uses the opener prefix", func(t *testing.T) {
		reply, err := p.Icebreaker(context.Background(), IcebreakerRequest{
			OpenerType: "would_you_rather",
		})
		require.NoError(t, err)
		assert.Equal(t, "Would you rather... something interesting?", reply.Reply)
	})

	t.Run("curveball uses the static sentence", func(t *testing.T) {
		reply, err := p.Curveball(context.Background(), CurveballRequest{
			Situation: "awkward pause",
		})
		require.NoError(t, err)
		assert.Equal(t, cannedCurveballReply, reply.Reply)
	})

	t.Run("validation errors still propagate", func(t *testing.T) {
		_, err := p.Rewrite(context.Background(), RewriteRequest{})
		require.Error(t, err)
	})
}

func TestSetFallbackPolicy(t *testing.T) {
	gemini := &mocks.MockGenerator{
		ProviderName: "gemini",
		GenerateFunc: func(ctx context.Context, prompt string, opts provider.Options) (string, error) {
			return "", stderrors.New("provider down")
		},
	}
	p := newTestProcessor(mocks.NewMockGenerator("groq", ""), gemini, nil, testChatConfig())

	_, err := p.Rewrite(context.Background(), RewriteRequest{OriginalMessage: "hi", Draft: "hey"})
	require.Error(t, err)

	p.SetFallbackPolicy(config.FallbackCanned)

	reply, err := p.Rewrite(context.Background(), RewriteRequest{OriginalMessage: "hi", Draft: "hey"})
	require.NoError(t, err)
	assert.Equal(t, "That's cool! hey", reply.Reply)
}

func TestDisabledTraitsShapePrompt(t *testing.T) {
	gemini := mocks.NewMockGenerator("gemini", `{"reply": "ok"}`)
	p := newTestProcessor(mocks.NewMockGenerator("groq", ""), gemini, nil, testChatConfig())

	_, err := p.Rewrite(context.Background(), RewriteRequest{
		OriginalMessage: "hi",
		Draft:           "hey",
		DisabledTraits:  []string{"bold_energy", "confident", "fun_vibes", "soft_strong", "flirty_vibes"},
	})
	require.NoError(t, err)
	assert.NotContains(t, gemini.Calls[0].Prompt, "PERSONALITY TRAITS")

	_, err = p.Rewrite(context.Background(), RewriteRequest{
		OriginalMessage: "hi",
		Draft:           "hey",
	})
	require.NoError(t, err)
	assert.Contains(t, gemini.Calls[1].Prompt, "PERSONALITY TRAITS")
}
