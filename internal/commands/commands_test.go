package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/diogo/purrfect/internal/api"
	"github.com/diogo/purrfect/internal/chat"
	"github.com/diogo/purrfect/internal/config"
	apierrors "github.com/diogo/purrfect/internal/errors"
	"github.com/diogo/purrfect/internal/models"
	"github.com/diogo/purrfect/internal/render"
	"github.com/diogo/purrfect/internal/storefront"
	"github.com/diogo/purrfect/internal/tui"
)

type fakeTransport struct {
	reply string
	err   error

	mu   sync.Mutex
	sent []string
}

func (f *fakeTransport) Send(ctx context.Context, message string) (string, error) {
	f.mu.Lock()
	f.sent = append(f.sent, message)
	f.mu.Unlock()
	return f.reply, f.err
}

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	opts    []*api.GenerateOptions
	output  *models.GenerateOutput
	err     error
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, prompt string, opts *api.GenerateOptions) (*models.GenerateOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	return f.output, f.err
}

type testEnv struct {
	deps      *Dependencies
	out       *bytes.Buffer
	errOut    *bytes.Buffer
	cfg       config.Config
	transport *fakeTransport
	gen       *fakeGenerator
	gotCfg    config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		out:       &bytes.Buffer{},
		errOut:    &bytes.Buffer{},
		cfg:       config.DefaultConfig(),
		transport: &fakeTransport{reply: "Bundle toys by price tier."},
		gen:       &fakeGenerator{output: &models.GenerateOutput{Text: "copy"}},
	}
	env.deps = &Dependencies{
		LoadConfig: func() (config.Config, error) { return env.cfg, nil },
		NewTransport: func(cfg config.Config, logger zerolog.Logger) (chat.Transport, error) {
			env.gotCfg = cfg
			return env.transport, nil
		},
		NewGenerator: func(cfg config.Config, logger zerolog.Logger) (Generator, error) {
			env.gotCfg = cfg
			return env.gen, nil
		},
		RunChat: func(ctx context.Context, build func(onChange func()) tui.ChatController, info tui.Info, opts render.Options) error {
			return errors.New("unexpected chat")
		},
		Out:        env.out,
		Err:        env.errOut,
		IsTerminal: func() bool { return false },
	}
	return env
}

func (e *testEnv) run(args ...string) error {
	cmd := NewRootCmd(e.deps)
	cmd.SetArgs(args)
	cmd.SetOut(e.out)
	cmd.SetErr(e.errOut)
	return cmd.ExecuteContext(context.Background())
}

func TestAsk_PrintsRawReply(t *testing.T) {
	env := newTestEnv(t)

	if err := env.run("ask", "How do I price cat toys?"); err != nil {
		t.Fatalf("ask error = %v", err)
	}

	if env.out.String() != "Bundle toys by price tier." {
		t.Errorf("output = %q", env.out.String())
	}
	if len(env.transport.sent) != 1 || env.transport.sent[0] != "How do I price cat toys?" {
		t.Errorf("sent = %v", env.transport.sent)
	}
}

func TestAsk_Errors(t *testing.T) {
	tests := []struct {
		name    string
		message string
		err     error
		check   func(error) bool
	}{
		{"empty message", "   ", nil, apierrors.IsEmptyMessageError},
		{"server error", "hi", apierrors.NewServerError(429, "slow down", ""), apierrors.IsServerError},
		{"empty reply", "hi", apierrors.NewEmptyReplyError(""), apierrors.IsEmptyReplyError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.transport.err = tt.err

			err := env.run("ask", tt.message)
			if err == nil || !tt.check(err) {
				t.Errorf("error = %v", err)
			}
			if env.out.Len() != 0 {
				t.Errorf("unexpected output %q", env.out.String())
			}
		})
	}
}

func TestAsk_OutputFile(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "reply.md")

	if err := env.run("ask", "hi", "--output", path); err != nil {
		t.Fatalf("ask error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "Bundle toys by price tier." {
		t.Errorf("file = %q", data)
	}
}

func TestGlobalFlagsOverrideConfig(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.APIKey = "key"

	if err := env.run("ask", "hi", "--backend", "direct", "--timeout", "5s", "--model", "gemini-2.5-pro"); err != nil {
		t.Fatalf("ask error = %v", err)
	}

	if env.gotCfg.Backend != config.BackendDirect {
		t.Errorf("Backend = %s", env.gotCfg.Backend)
	}
	if env.gotCfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %s", env.gotCfg.Timeout())
	}
	if env.gotCfg.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %s", env.gotCfg.Model)
	}
}

func TestAsk_InvalidBackendConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown backend", []string{"ask", "hi", "--backend", "carrier-pigeon"}},
		{"direct without key", []string{"ask", "hi", "--backend", "direct"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if err := env.run(tt.args...); err == nil {
				t.Error("expected configuration error")
			}
			if len(env.transport.sent) != 0 {
				t.Error("nothing should be sent")
			}
		})
	}
}

func TestChat_BuildsGreetedSession(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Backend = config.BackendDirect
	env.cfg.APIKey = "key"

	var gotInfo tui.Info
	var controller tui.ChatController
	env.deps.RunChat = func(ctx context.Context, build func(onChange func()) tui.ChatController, info tui.Info, opts render.Options) error {
		gotInfo = info
		controller = build(func() {})
		return nil
	}

	if err := env.run("chat"); err != nil {
		t.Fatalf("chat error = %v", err)
	}
	defer controller.Dispose()

	if gotInfo.Backend != "direct" || gotInfo.Model != models.DefaultModel.Name {
		t.Errorf("info = %+v", gotInfo)
	}

	turns := controller.Turns()
	if len(turns) != 1 || turns[0].Text != models.GuruGreeting {
		t.Errorf("turns = %+v", turns)
	}
}

func TestAnalyze(t *testing.T) {
	env := newTestEnv(t)
	env.gen.output = &models.GenerateOutput{
		Text: "Meowingtons leads on branding.",
		Sources: []models.Source{
			{URI: "https://example.com/a", Title: "Cat Market 2025"},
			{URI: "https://example.com/untitled"},
		},
	}

	if err := env.run("analyze", "luxury", "cat", "beds"); err != nil {
		t.Fatalf("analyze error = %v", err)
	}

	if len(env.gen.prompts) != 1 || !strings.Contains(env.gen.prompts[0], "luxury cat beds") {
		t.Errorf("prompts = %v", env.gen.prompts)
	}
	if env.gen.opts[0] == nil || !env.gen.opts[0].GoogleSearch {
		t.Error("analysis should enable search grounding")
	}

	out := env.out.String()
	for _, want := range []string{render.ReportTitle, "Meowingtons leads", "1. [Cat Market 2025](https://example.com/a)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "untitled") {
		t.Errorf("untitled source should be dropped:\n%s", out)
	}
}

func TestAnalyze_MissingKey(t *testing.T) {
	env := newTestEnv(t)
	env.gen.err = apierrors.ErrMissingAPIKey
	env.gen.output = nil

	err := env.run("analyze", "cat trees")
	if !errors.Is(err, apierrors.ErrMissingAPIKey) {
		t.Errorf("error = %v", err)
	}
	if !strings.Contains(formatErrorMessage(err, "Error"), "api_key") {
		t.Error("expected api key hint")
	}
}

func TestStoreList(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
		wantErr bool
	}{
		{
			name: "everything",
			args: []string{"store", "list"},
			want: []string{"The Zenith Cat Castle", "$299.99", "Services", "Virtual Vet Consult", "$40/session"},
		},
		{
			name:    "by category",
			args:    []string{"store", "list", "--category", "TOY"},
			want:    []string{"Turbo-Chaser Laser Bot", "Feather Wand Pro"},
			notWant: []string{"Velvet Lounge Bed", "Services"},
		},
		{
			name:    "unknown category",
			args:    []string{"store", "list", "-c", "rockets"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			err := env.run(tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}

			out := env.out.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output should not contain %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestStoreDescribe(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		genErr    error
		wantCalls int
		want      string
		wantErr   bool
	}{
		{"by id", []string{"store", "describe", "3"}, nil, 1, "copy", false},
		{"by name", []string{"store", "describe", "Feather Wand Pro"}, nil, 1, "Feather Wand Pro", false},
		{"all", []string{"store", "describe", "--all"}, nil, len(storefront.Products()), "Crystal Water Fountain", false},
		{"missing key", []string{"store", "describe", "1"}, apierrors.ErrMissingAPIKey, 1, storefront.NoKeyDescription, false},
		{"unknown product", []string{"store", "describe", "laser"}, nil, 0, "", true},
		{"nothing named", []string{"store", "describe"}, nil, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.gen.err = tt.genErr

			err := env.run(tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(env.gen.prompts) != tt.wantCalls {
				t.Errorf("calls = %d, want %d", len(env.gen.prompts), tt.wantCalls)
			}
			if !strings.Contains(env.out.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, env.out.String())
			}
		})
	}
}

func TestConfigCommands(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvGeminiAPIKey, "")
	t.Setenv(config.EnvBaseURL, "")
	t.Setenv(config.EnvClientKey, "")
	t.Setenv(config.EnvPublicClientKey, "")

	env := newTestEnv(t)
	env.deps.LoadConfig = config.LoadConfig

	if err := env.run("config", "set", "api_key", "secret-123456"); err != nil {
		t.Fatalf("set error = %v", err)
	}
	if !strings.Contains(env.out.String(), "*********3456") {
		t.Errorf("set output = %q", env.out.String())
	}

	saved, err := config.LoadFile()
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if saved.APIKey != "secret-123456" {
		t.Errorf("saved APIKey = %q", saved.APIKey)
	}

	env.out.Reset()
	if err := env.run("config", "get", "backend"); err != nil {
		t.Fatalf("get error = %v", err)
	}
	if strings.TrimSpace(env.out.String()) != config.BackendProxy {
		t.Errorf("get output = %q", env.out.String())
	}

	env.out.Reset()
	if err := env.run("config"); err != nil {
		t.Fatalf("show error = %v", err)
	}
	if strings.Contains(env.out.String(), "secret") {
		t.Errorf("secret leaked:\n%s", env.out.String())
	}

	if err := env.run("config", "set", "backend", "smoke-signals"); err == nil {
		t.Error("expected invalid backend error")
	}
	if err := env.run("config", "get", "colour"); err == nil {
		t.Error("expected unknown key error")
	}
}

func TestVersionFlag(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("--version"); err != nil {
		t.Fatalf("error = %v", err)
	}
	if !strings.HasPrefix(env.out.String(), "purrfect "+Version) {
		t.Errorf("output = %q", env.out.String())
	}
}

func TestNewTransport(t *testing.T) {
	cfg := config.DefaultConfig()

	transport, err := newTransport(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("newTransport() error = %v", err)
	}
	guru, ok := transport.(*api.GuruClient)
	if !ok {
		t.Fatalf("proxy transport = %T", transport)
	}
	if guru.Endpoint() != models.DefaultBaseURL+models.GuruPath {
		t.Errorf("Endpoint() = %s", guru.Endpoint())
	}

	cfg.Backend = config.BackendDirect
	cfg.APIKey = "key"
	transport, err = newTransport(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("newTransport() error = %v", err)
	}
	if _, ok := transport.(chat.StreamingTransport); !ok {
		t.Errorf("direct transport should stream, got %T", transport)
	}
}

func TestFormatErrorMessage(t *testing.T) {
	if got := formatErrorMessage(nil, "ctx"); got != "" {
		t.Fatalf("expected empty for nil error, got %s", got)
	}

	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"server error", apierrors.NewServerError(500, "boom", ""), []string{"boom", "HTTP Status: 500", "Hint"}},
		{"server body", apierrors.NewServerError(502, "bad gateway", "upstream down"), []string{"upstream down"}},
		{"network", apierrors.NewNetworkError("send", "http://localhost:3000/api/guru", errors.New("refused")), []string{"Endpoint:", "base_url"}},
		{"timeout", apierrors.NewTimeoutError(context.DeadlineExceeded), []string{"--timeout"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := formatErrorMessage(tt.err, "Failed")
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("missing %q in %s", w, out)
				}
			}
		})
	}
}

func TestSpinnerLifecycle(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Asking")
	s.start()
	time.Sleep(100 * time.Millisecond)
	s.stopWithSuccess("done")
	s.stopWithError() // second stop must not panic

	if !strings.Contains(buf.String(), "done") {
		t.Errorf("output = %q", buf.String())
	}

	var nilSpinner *spinner
	nilSpinner.succeed("ignored")
	nilSpinner.fail()
}
