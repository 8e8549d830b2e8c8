package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/axon-cua/agent/internal/action"
	"github.com/axon-cua/agent/internal/audio"
	"github.com/axon-cua/agent/internal/config"
	"github.com/axon-cua/agent/internal/inference"
	"github.com/axon-cua/agent/internal/logging"
	"github.com/axon-cua/agent/internal/memory"
	"github.com/axon-cua/agent/internal/narration"
	"github.com/axon-cua/agent/internal/perf"
	"github.com/axon-cua/agent/internal/pipeline"
	"github.com/axon-cua/agent/internal/screen"
	"github.com/axon-cua/agent/internal/speculative"
	"github.com/axon-cua/agent/internal/stt"
	"github.com/axon-cua/agent/internal/voiceloop"
)

const (
	sttSetupTimeout = 10 * time.Second

	executorModel    = "claude-3-5-sonnet-20241022"
	plannerModel     = "claude-3-5-sonnet-20241022"
	interpreterModel = "claude-3-5-haiku-20241022"

	executorSystemPrompt = "You are a fast, tool-calling desktop automation executor. " +
		"Call the computer tool to act, or reply with a GUIDE:, NARRATE:, DONE:, or CLARIFY: " +
		"prefixed line when you aren't acting."
	plannerSystemPrompt = "You are a careful planner for desktop automation tasks. " +
		"Reply only with JSON describing an ordered list of work blocks."
	interpreterSystemPrompt = "You classify a voice transcript against recent conversation " +
		"and remembered facts into exactly one of: command, followup, interrupt, chat, memory."
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	zapLog, err := logging.NewZapLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		return 1
	}
	defer zapLog.Sync()

	sessionLog, err := logging.NewSessionLog(time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		return 1
	}
	defer sessionLog.Close()

	log := logging.NewTeeLogger(zapLog, sessionLog)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("agent: resolve home directory", "error", err)
		return 1
	}
	memStore, err := memory.Open(homeDir)
	if err != nil {
		log.Error("agent: open memory store", "error", err)
		return 1
	}

	infer := inference.New(cfg.InferenceAPIKey, executorModel)

	sink := &action.ScaledSink{
		Sink:                stubActionSink{},
		Scaler:              action.NewScaler(1, 1, 1, 1),
		DisableAutoMaximize: cfg.DisableAutoMaximize,
	}
	screenSource := stubScreenSource{}

	narrationQueue, dev := setupNarration(cfg, log)
	if dev != nil {
		defer dev.Close()
	}

	executor := &pipeline.Executor{
		Infer:         infer,
		Actions:       sink,
		Screen:        screenSource,
		Narration:     narrationQueue,
		Log:           log,
		MaxModelWidth: screen.DefaultMaxModelWidth,
		SystemPrompt:  executorSystemPrompt,
		Model:         executorModel,
	}
	planner := &pipeline.Planner{
		Infer:        infer,
		Model:        plannerModel,
		SystemPrompt: plannerSystemPrompt,
		Executor:     executor,
	}
	interpreter := &voiceloop.Interpreter{
		Infer:        infer,
		Model:        interpreterModel,
		SystemPrompt: interpreterSystemPrompt,
	}

	var sttProvider stt.Provider
	if cfg.Voice {
		sttProvider, err = setupSTT(cfg, dev, log)
		if err != nil {
			log.Error("agent: set up speech recognition", "error", err)
			return 1
		}
	} else {
		sttProvider = newREPLProvider()
	}

	var dispatcher *speculative.Dispatcher
	if cfg.UseSpeculative {
		dispatcher = speculative.New(voiceloop.IsSimpleCommand)
	}

	loop := &voiceloop.Loop{
		STT:           sttProvider,
		Dispatcher:    dispatcher,
		Narration:     narrationQueue,
		Executor:      executor,
		Planner:       planner,
		Interpreter:   interpreter,
		Bridge:        voiceloop.NewClarificationBridge(),
		SessionCtx:    voiceloop.NewSessionContext(),
		Memory:        memStore,
		Perf:          perf.NewTracker(),
		Screen:        screenSource,
		Log:           log,
		MaxModelWidth: screen.DefaultMaxModelWidth,
	}

	mode := "voice agent started, listening to microphone"
	if !cfg.Voice {
		mode = "text REPL started, type a command and press enter"
	}
	fmt.Println(mode + ". Press Ctrl+C to exit.")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("agent: loop exited", "error", err)
		return 1
	}
	return 0
}

// setupNarration builds the narration queue and, when a real audio device
// is available, the duplex device the Lokutor TTS backend plays through.
// A missing LOKUTOR_API_KEY or a device-open failure degrades to a
// silent (no-op) backend rather than aborting startup, since narration is
// ancillary to the action loop (spec.md §4.1: never blocks the loop).
func setupNarration(cfg config.Config, log logging.Logger) (*narration.Queue, *audio.Device) {
	apiKey := os.Getenv("LOKUTOR_API_KEY")
	if apiKey == "" {
		log.Warn("agent: LOKUTOR_API_KEY not set, narration is silent")
		return narration.New(noopBackend{}, log), nil
	}

	dev, err := audio.Open(audio.DefaultSampleRate)
	if err != nil {
		log.Warn("agent: open audio device, narration is silent", "error", err)
		return narration.New(noopBackend{}, log), nil
	}

	backend := narration.NewLokutorBackend(apiKey, dev.Sink())
	return narration.New(backend, log), dev
}

// setupSTT selects between the on-device sherpa-onnx recognizer and the
// streaming cloud recognizer, per spec.md §4.6's configured-preference-
// with-fallback policy.
func setupSTT(cfg config.Config, dev *audio.Device, log logging.Logger) (stt.Provider, error) {
	ctx, cancel := context.WithTimeout(context.Background(), sttSetupTimeout)
	defer cancel()

	if dev == nil {
		var err error
		dev, err = audio.Open(audio.DefaultSampleRate)
		if err != nil {
			return nil, fmt.Errorf("open audio device: %w", err)
		}
	}
	mic := audio.NewMicSource(dev)

	onDevice := stt.NewOnDeviceRecognizer(mic, stt.OnDeviceConfig{
		VADModel:       os.Getenv("SHERPA_VAD_MODEL"),
		WhisperEncoder: os.Getenv("SHERPA_WHISPER_ENCODER"),
		WhisperDecoder: os.Getenv("SHERPA_WHISPER_DECODER"),
		WhisperTokens:  os.Getenv("SHERPA_WHISPER_TOKENS"),
		SampleRate:     audio.DefaultSampleRate,
		Language:       "en",
		NumThreads:     1,
	})

	dialer := &stt.WSDialer{
		Endpoint: envOr("STT_WS_ENDPOINT", "wss://stt.example.invalid/ws"),
		APIKey:   os.Getenv("STT_API_KEY"),
		Source:   mic,
	}
	cloud := stt.NewCloudRecognizer(dialer)

	return stt.Select(ctx, cfg.UseOnDeviceSTT, onDevice, cloud, log)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// replProvider satisfies stt.Provider by reading one line of stdin per
// Listen call, so the text REPL (spec.md §6: no --voice flag) drives the
// exact same utterance lifecycle as microphone input instead of a
// parallel code path.
type replProvider struct {
	reader *bufio.Reader
}

func newREPLProvider() *replProvider {
	return &replProvider{reader: bufio.NewReader(os.Stdin)}
}

func (r *replProvider) Setup(ctx context.Context) error { return nil }

func (r *replProvider) Listen(ctx context.Context, onStablePartial func(string)) (string, error) {
	fmt.Print("> ")
	lineCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		line, err := r.reader.ReadString('\n')
		if err != nil {
			errCh <- err
			return
		}
		lineCh <- line
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errCh:
		return "", err
	case line := <-lineCh:
		return strings.TrimSpace(line), nil
	}
}

func (r *replProvider) StopListening() {}

type noopBackend struct{}

func (noopBackend) Speak(text string, onDone func()) error {
	onDone()
	return nil
}
func (noopBackend) Stop() {}

// stubActionSink satisfies action.Sink. The concrete mouse/keyboard driver
// is an out-of-scope external collaborator (spec.md's non-goals); wiring a
// real one is a platform-specific follow-up outside this module's scope.
type stubActionSink struct{}

func (stubActionSink) Dispatch(a action.Action) error { return nil }
func (stubActionSink) MaximizeForegroundWindow() error { return nil }

// stubScreenSource satisfies screen.Source. Screen capture is an
// out-of-scope external collaborator (spec.md's non-goals); wiring a real
// one is a platform-specific follow-up outside this module's scope.
type stubScreenSource struct{}

func (stubScreenSource) Capture(ctx context.Context, maxModelWidth int) (screen.Frame, error) {
	return screen.Frame{}, fmt.Errorf("screen: capture not implemented")
}
