package responder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"PriceSentinel/internal/chat"
	"PriceSentinel/internal/logger"
	"PriceSentinel/internal/metrics"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/prediction"
)

// Greeting answers /start and /help.
const Greeting = "Hello! I'm your AI assistant. I can:\n" +
	"1. Answer questions about AI, AGI, and cryptocurrencies\n" +
	"2. Predict Bitcoin prices when you ask specifically about Bitcoin\n\n" +
	"Just chat with me naturally - I'll figure out what you want!"

// Classifier decides the route of one message.
type Classifier interface {
	Classify(msg string) model.Intent
}

// Responder turns every incoming message into exactly one text reply.
type Responder struct {
	router  Classifier
	source  prediction.Source
	backend chat.Backend
	log     *logger.Logger
	metrics *metrics.Recorder
}

// New wires a Responder. log and rec may be nil.
func New(router Classifier, source prediction.Source, backend chat.Backend, log *logger.Logger, rec *metrics.Recorder) *Responder {
	if log == nil {
		log = logger.Nop()
	}
	return &Responder{
		router:  router,
		source:  source,
		backend: backend,
		log:     log.With("responder"),
		metrics: rec,
	}
}

// Handle answers one event. Commands other than /start and /help are not
// answered and report false.
func (r *Responder) Handle(ctx context.Context, ev model.Event) (model.Reply, bool) {
	text := strings.TrimSpace(ev.Text)
	if strings.HasPrefix(text, "/") {
		switch command(text) {
		case "start", "help":
			return model.Reply{Text: Greeting}, true
		default:
			return model.Reply{}, false
		}
	}
	return r.Respond(ctx, ev.Text), true
}

// Respond routes msg and appends the elapsed time. It never fails: errors
// become the reply text.
func (r *Responder) Respond(ctx context.Context, msg string) model.Reply {
	start := time.Now()
	text := r.dispatch(ctx, msg)
	elapsed := time.Since(start)
	r.metrics.RecordLatency("respond", elapsed.Seconds())
	return model.Reply{
		Text:    fmt.Sprintf("%s\n\n(Response time: %.2fs)", text, elapsed.Seconds()),
		Elapsed: elapsed,
	}
}

func (r *Responder) dispatch(ctx context.Context, msg string) (text string) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("%v", p)
			r.log.Error("dispatch panic", logger.Error(err))
			r.metrics.RecordError("responder_panic")
			text = apology(err)
		}
	}()

	intent := r.router.Classify(msg)
	r.metrics.RecordIntent(string(intent))

	if intent == model.IntentForecast {
		artifact, err := r.source.GetPrediction(ctx)
		if err != nil {
			r.log.Warn("prediction unavailable", logger.Error(err))
			r.metrics.RecordError("prediction_unavailable")
			return err.Error()
		}
		return FormatPrediction(artifact)
	}

	completion, err := r.backend.Complete(ctx, chat.SystemInstruction, msg)
	if err != nil {
		r.log.Warn("chat completion failed", logger.Error(err))
		r.metrics.RecordError("chat_backend")
		return apology(err)
	}
	return completion
}

func apology(err error) string {
	return "Sorry, I encountered an error: " + err.Error()
}

// command extracts the bot command name from "/name@bot args".
func command(text string) string {
	name := strings.Fields(text)[0][1:]
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}

// FormatPrediction renders an artifact into the fixed chat template.
func FormatPrediction(a *model.PredictionArtifact) string {
	band := a.NextStep.Intervals[50]
	var sb strings.Builder
	sb.WriteString("*Bitcoin Price Prediction*\n")
	fmt.Fprintf(&sb, "- *Latest Date*: %s\n", a.LatestDate.Format(model.DateLayout))
	fmt.Fprintf(&sb, "- *Latest Price*: $%s\n", a.LatestPrice.StringFixed(2))
	fmt.Fprintf(&sb, "- *Next Day Prediction* (for %s):\n", a.NextStep.Date.Format("2006-01-02"))
	fmt.Fprintf(&sb, "  - Predicted Price: $%s\n", a.NextStep.Point.StringFixed(2))
	fmt.Fprintf(&sb, "  - 50%% Confidence Interval: $%s - $%s\n", band.Low.StringFixed(2), band.High.StringFixed(2))
	fmt.Fprintf(&sb, "- *Signal*: %s", a.Signal.Title())
	return sb.String()
}
