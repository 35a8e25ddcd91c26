package env

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const scenarioExample = "# App\nNEXT_PUBLIC_APP_URL=\n\n# Database\nDATABASE_URL=\n\n# Auth\nAUTH_SECRET=\n"

type fakePrompter struct {
	strategy      Strategy
	services      []string
	openDashboard bool
	values        map[string]string
	abortOn       string
	path          string

	choices    []Strategy
	offered    []string
	requests   []InputRequest
	dashboards []string
}

func (p *fakePrompter) SelectStrategy(_ context.Context, choices []Strategy, _ string) (Strategy, error) {
	p.choices = choices
	return p.strategy, nil
}

func (p *fakePrompter) SelectServices(_ context.Context, groups []ServiceGroup) ([]string, error) {
	var all []string
	for _, g := range groups {
		all = append(all, g.Service.Name)
	}
	p.offered = all
	if p.services != nil {
		return p.services, nil
	}
	return all, nil
}

func (p *fakePrompter) ConfirmOpenDashboard(_ context.Context, svc ServiceDefinition) (bool, error) {
	p.dashboards = append(p.dashboards, svc.Name)
	return p.openDashboard, nil
}

func (p *fakePrompter) InputValue(_ context.Context, req InputRequest) (string, error) {
	p.requests = append(p.requests, req)
	if req.Key == p.abortOn {
		return "", fmt.Errorf("input %s: %w", req.Key, ErrAborted)
	}
	return p.values[req.Key], nil
}

func (p *fakePrompter) InputPath(context.Context, string) (string, error) {
	return p.path, nil
}

type fakeBrowser struct{ opened []string }

func (b *fakeBrowser) Open(url string) error {
	b.opened = append(b.opened, url)
	return nil
}

type fakeMemory map[string]string

func (m fakeMemory) Get(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m fakeMemory) Set(key, value string) error {
	m[key] = value
	return nil
}

func (m fakeMemory) Delete(key string) error {
	delete(m, key)
	return nil
}

type fakeEditor struct{ content string }

func (e *fakeEditor) Edit(_ context.Context, path string) error {
	return os.WriteFile(path, []byte(e.content), 0o600)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readEnv(t *testing.T, dir string) *File {
	t.Helper()
	f, err := ReadFile(filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatalf("read .env: %v", err)
	}
	return f
}

func scenarioProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env.example"), scenarioExample)
	return dir
}

func TestCompose_SkipPromptsScenario(t *testing.T) {
	t.Parallel()

	dir := scenarioProject(t)
	reg := testRegistry(t)

	report, err := NewComposer().Compose(context.Background(), dir, "", reg, Options{SkipPrompts: true})
	if err != nil {
		t.Fatalf("Compose() error: %v", err)
	}

	env := readEnv(t, dir)
	if v, _ := env.Get("NEXT_PUBLIC_APP_URL"); v != "http://localhost:3000" {
		t.Errorf("NEXT_PUBLIC_APP_URL = %q", v)
	}
	if v, _ := env.Get("AUTH_SECRET"); len(v) < MinSecretLength {
		t.Errorf("AUTH_SECRET = %q, want a generated secret", v)
	}
	if env.HasValue("DATABASE_URL") {
		t.Error("DATABASE_URL must remain unset")
	}

	raw, _ := os.ReadFile(filepath.Join(dir, ".env"))
	if !strings.Contains(string(raw), `NEXT_PUBLIC_APP_URL="http://localhost:3000"`) {
		t.Errorf(".env does not contain the quoted default:\n%s", raw)
	}
	if !strings.HasPrefix(string(raw), "# App\n") {
		t.Errorf(".env lost the example's comments:\n%s", raw)
	}

	if !report.EnvCreated || report.ExampleCreated {
		t.Errorf("EnvCreated=%v ExampleCreated=%v", report.EnvCreated, report.ExampleCreated)
	}
	if !slices.Equal(report.Defaulted, []string{"NEXT_PUBLIC_APP_URL"}) {
		t.Errorf("Defaulted = %v", report.Defaulted)
	}
	if !slices.Equal(report.Generated, []string{"AUTH_SECRET"}) {
		t.Errorf("Generated = %v", report.Generated)
	}
	if !slices.Equal(report.StillMissing, []string{"DATABASE_URL"}) {
		t.Errorf("StillMissing = %v", report.StillMissing)
	}
	if report.Strategy != StrategyAutoOnly {
		t.Errorf("Strategy = %q, want %q", report.Strategy, StrategyAutoOnly)
	}
}

func TestCompose_SecondRunKeepsGeneratedSecret(t *testing.T) {
	t.Parallel()

	dir := scenarioProject(t)
	reg := testRegistry(t)
	c := NewComposer()
	opts := Options{SkipPrompts: true}

	if _, err := c.Compose(context.Background(), dir, "", reg, opts); err != nil {
		t.Fatal(err)
	}
	first, _ := readEnv(t, dir).Get("AUTH_SECRET")

	report, err := c.Compose(context.Background(), dir, "", reg, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := readEnv(t, dir).Get("AUTH_SECRET")

	if first != second {
		t.Errorf("AUTH_SECRET regenerated: %q -> %q", first, second)
	}
	if len(report.Generated) != 0 || len(report.Defaulted) != 0 || report.EnvCreated {
		t.Errorf("second run changed values: %+v", report)
	}
}

func TestCompose_ExistingValuesPreserved(t *testing.T) {
	t.Parallel()

	dir := scenarioProject(t)
	writeFile(t, filepath.Join(dir, ".env"), "NEXT_PUBLIC_APP_URL=https://prod.example.com\nEXTRA=1\n")

	report, err := NewComposer().Compose(context.Background(), dir, "", testRegistry(t), Options{SkipPrompts: true})
	if err != nil {
		t.Fatal(err)
	}
	env := readEnv(t, dir)
	if v, _ := env.Get("NEXT_PUBLIC_APP_URL"); v != "https://prod.example.com" {
		t.Errorf("NEXT_PUBLIC_APP_URL = %q, want it preserved", v)
	}
	if v, _ := env.Get("EXTRA"); v != "1" {
		t.Errorf("EXTRA = %q, want it preserved", v)
	}
	if !env.HasValue("AUTH_SECRET") {
		t.Error("AUTH_SECRET was not appended")
	}
	if report.EnvCreated {
		t.Error("EnvCreated = true for an existing .env")
	}
}

func TestCompose_ExampleFromLocalSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(t.TempDir(), "template.env")
	writeFile(t, src, scenarioExample)

	report, err := NewComposer().Compose(context.Background(), dir, src, testRegistry(t), Options{SkipPrompts: true})
	if err != nil {
		t.Fatalf("Compose() error: %v", err)
	}
	if !report.ExampleCreated {
		t.Error("ExampleCreated = false")
	}
	got, _ := os.ReadFile(filepath.Join(dir, ".env.example"))
	if string(got) != scenarioExample {
		t.Errorf(".env.example = %q", got)
	}
}

func TestCompose_ExampleFromURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(scenarioExample))
	}))
	defer srv.Close()

	dir := t.TempDir()
	report, err := NewComposer().Compose(context.Background(), dir, srv.URL, testRegistry(t), Options{SkipPrompts: true})
	if err != nil {
		t.Fatalf("Compose() error: %v", err)
	}
	if !report.ExampleCreated || !report.EnvCreated {
		t.Errorf("report = %+v", report)
	}
	if !slices.Equal(report.StillMissing, []string{"DATABASE_URL"}) {
		t.Errorf("StillMissing = %v", report.StillMissing)
	}
}

func TestCompose_ExampleUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	sources := map[string]string{
		"no source":      "",
		"missing file":   filepath.Join(t.TempDir(), "nope.env"),
		"http not found": srv.URL,
	}
	for name, source := range sources {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			_, err := NewComposer().Compose(context.Background(), dir, source, testRegistry(t), Options{SkipPrompts: true})
			if !errors.Is(err, ErrExampleUnavailable) {
				t.Fatalf("Compose() error = %v, want ErrExampleUnavailable", err)
			}
			if _, err := os.Stat(filepath.Join(dir, ".env")); !os.IsNotExist(err) {
				t.Error(".env must not be created without an example")
			}
		})
	}
}

func TestCompose_GuidedPrompting(t *testing.T) {
	t.Parallel()

	dir := scenarioProject(t)
	writeFile(t, filepath.Join(dir, ".env.example"), scenarioExample+"AUTH_GITHUB_ID=\nCUSTOM_TOKEN=\n")

	prompter := &fakePrompter{
		strategy:      StrategyGuided,
		openDashboard: true,
		values: map[string]string{
			"DATABASE_URL":   `DATABASE_URL="postgres://localhost/app"`,
			"AUTH_GITHUB_ID": "'gh-id'",
			"CUSTOM_TOKEN":   "tok",
		},
	}
	browser := &fakeBrowser{}
	c := NewComposer(WithPrompter(prompter), WithBrowser(browser))

	report, err := c.Compose(context.Background(), dir, "", testRegistry(t),
		Options{MaskInput: true, OpenBrowser: true})
	if err != nil {
		t.Fatalf("Compose() error: %v", err)
	}

	env := readEnv(t, dir)
	for key, want := range map[string]string{
		"DATABASE_URL":   "postgres://localhost/app",
		"AUTH_GITHUB_ID": "gh-id",
		"CUSTOM_TOKEN":   "tok",
	} {
		if got, _ := env.Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	raw, _ := os.ReadFile(filepath.Join(dir, ".env"))
	if !strings.Contains(string(raw), `DATABASE_URL="postgres://localhost/app"`) {
		t.Errorf("DATABASE_URL not normalized:\n%s", raw)
	}

	if want := []string{"Database", "Auth", OtherService}; !slices.Equal(prompter.offered, want) {
		t.Errorf("offered services = %v, want %v", prompter.offered, want)
	}
	if !slices.Equal(browser.opened, []string{"https://db.example.com"}) {
		t.Errorf("opened = %v", browser.opened)
	}

	masked := map[string]bool{}
	for _, req := range prompter.requests {
		masked[req.Key] = req.Masked
	}
	if !masked["DATABASE_URL"] || masked["AUTH_GITHUB_ID"] || !masked["CUSTOM_TOKEN"] {
		t.Errorf("masking = %v", masked)
	}

	if report.Strategy != StrategyGuided || len(report.StillMissing) != 0 {
		t.Errorf("Strategy=%q StillMissing=%v", report.Strategy, report.StillMissing)
	}
	if want := []string{"DATABASE_URL", "AUTH_GITHUB_ID", "CUSTOM_TOKEN"}; !slices.Equal(report.Provided, want) {
		t.Errorf("Provided = %v, want %v", report.Provided, want)
	}
}

func TestCompose_GuidedRespectsServiceSelectionAndBrowserGate(t *testing.T) {
	t.Parallel()

	dir := scenarioProject(t)
	writeFile(t, filepath.Join(dir, ".env.example"), scenarioExample+"AUTH_GITHUB_ID=\n")

	prompter := &fakePrompter{
		strategy:      StrategyGuided,
		services:      []string{"Auth"},
		openDashboard: true,
		values:        map[string]string{"AUTH_GITHUB_ID": "gh"},
	}
	browser := &fakeBrowser{}
	c := NewComposer(WithPrompter(prompter), WithBrowser(browser))

	report, err := c.Compose(context.Background(), dir, "", testRegistry(t), Options{OpenBrowser: false})
	if err != nil {
		t.Fatal(err)
	}
	if len(prompter.dashboards) != 0 || len(browser.opened) != 0 {
		t.Error("dashboard offered although browser opening is disabled")
	}
	if !slices.Equal(report.StillMissing, []string{"DATABASE_URL"}) {
		t.Errorf("StillMissing = %v", report.StillMissing)
	}
}

func TestCompose_AbortKeepsEarlierAnswers(t *testing.T) {
	t.Parallel()

	dir := scenarioProject(t)
	writeFile(t, filepath.Join(dir, ".env.example"), scenarioExample+"AUTH_GITHUB_ID=\nAUTH_GITHUB_SECRET=\n")
	reg := DefaultRegistry()

	prompter := &fakePrompter{
		strategy: StrategyGuided,
		values:   map[string]string{"DATABASE_URL": "postgres://db"},
		abortOn:  "AUTH_GITHUB_ID",
	}
	_, err := NewComposer(WithPrompter(prompter)).Compose(context.Background(), dir, "", reg, Options{})
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("Compose() error = %v, want ErrAborted", err)
	}

	env := readEnv(t, dir)
	if v, _ := env.Get("DATABASE_URL"); v != "postgres://db" {
		t.Errorf("DATABASE_URL = %q, want the answer given before the abort", v)
	}
	for _, req := range prompter.requests {
		if req.Key == "AUTH_GITHUB_SECRET" {
			t.Error("prompting continued after abort")
		}
	}
}

func TestCompose_SkipPromptsReusesRememberedEnv(t *testing.T) {
	t.Parallel()

	dir := scenarioProject(t)
	other := filepath.Join(t.TempDir(), ".env")
	writeFile(t, other, "DATABASE_URL=postgres://remembered\nAUTH_SECRET=from-other\n")
	mem := fakeMemory{"last_env_path": other}

	report, err := NewComposer(WithMemory(mem)).Compose(context.Background(), dir, "", testRegistry(t), Options{SkipPrompts: true})
	if err != nil {
		t.Fatal(err)
	}
	env := readEnv(t, dir)
	if v, _ := env.Get("DATABASE_URL"); v != "postgres://remembered" {
		t.Errorf("DATABASE_URL = %q", v)
	}
	if v, _ := env.Get("AUTH_SECRET"); v == "from-other" {
		t.Error("AUTH_SECRET was overwritten by the imported file")
	}
	if report.Strategy != StrategyReuseLast || !slices.Equal(report.Imported, []string{"DATABASE_URL"}) {
		t.Errorf("Strategy=%q Imported=%v", report.Strategy, report.Imported)
	}
}

func TestCompose_StaleRememberedPathIgnored(t *testing.T) {
	t.Parallel()

	dir := scenarioProject(t)
	mem := fakeMemory{"last_env_path": filepath.Join(t.TempDir(), "gone.env")}

	report, err := NewComposer(WithMemory(mem)).Compose(context.Background(), dir, "", testRegistry(t), Options{SkipPrompts: true})
	if err != nil {
		t.Fatal(err)
	}
	if report.Strategy != StrategyAutoOnly {
		t.Errorf("Strategy = %q, want %q", report.Strategy, StrategyAutoOnly)
	}
	if _, ok := mem["last_env_path"]; ok {
		t.Error("a stale remembered path should be forgotten")
	}
}

func TestCompose_CopyFromRemembersPath(t *testing.T) {
	t.Parallel()

	dir := scenarioProject(t)
	other := filepath.Join(t.TempDir(), "prod.env")
	writeFile(t, other, "DATABASE_URL=postgres://copied\n")
	mem := fakeMemory{}
	prompter := &fakePrompter{strategy: StrategyCopyFrom, path: other}

	report, err := NewComposer(WithPrompter(prompter), WithMemory(mem)).
		Compose(context.Background(), dir, "", testRegistry(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := readEnv(t, dir).Get("DATABASE_URL"); v != "postgres://copied" {
		t.Errorf("DATABASE_URL = %q", v)
	}
	if mem["last_env_path"] != other {
		t.Errorf("remembered path = %q, want %q", mem["last_env_path"], other)
	}
	if slices.Contains(prompter.choices, StrategyReuseLast) {
		t.Error("reuse-last offered with nothing remembered")
	}
	if len(report.StillMissing) != 0 {
		t.Errorf("StillMissing = %v", report.StillMissing)
	}
}

func TestCompose_EditorStrategy(t *testing.T) {
	t.Parallel()

	dir := scenarioProject(t)
	editor := &fakeEditor{content: "NEXT_PUBLIC_APP_URL=\"http://localhost:3000\"\nDATABASE_URL=postgres://edited\nAUTH_SECRET=x\n"}
	prompter := &fakePrompter{strategy: StrategyEditor}

	report, err := NewComposer(WithPrompter(prompter), WithEditor(editor)).
		Compose(context.Background(), dir, "", testRegistry(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(prompter.choices, StrategyEditor) {
		t.Errorf("choices = %v, want editor offered", prompter.choices)
	}
	if len(report.StillMissing) != 0 {
		t.Errorf("StillMissing = %v after editing", report.StillMissing)
	}
}

func TestCompose_NothingMissingSkipsPrompts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env.example"), "NEXT_PUBLIC_APP_URL=\nAUTH_SECRET=\n")
	prompter := &fakePrompter{strategy: StrategyGuided}

	report, err := NewComposer(WithPrompter(prompter)).Compose(context.Background(), dir, "", testRegistry(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if prompter.choices != nil {
		t.Error("strategy prompt shown although every key has a default")
	}
	if report.Strategy != StrategyNone {
		t.Errorf("Strategy = %q, want %q", report.Strategy, StrategyNone)
	}
}

func TestCompose_CancelledContext(t *testing.T) {
	t.Parallel()

	dir := scenarioProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prompter := &fakePrompter{strategy: StrategyGuided, values: map[string]string{"DATABASE_URL": "x"}}
	_, err := NewComposer(WithPrompter(prompter)).Compose(ctx, dir, "", testRegistry(t), Options{})
	if err == nil {
		t.Fatal("Compose() with a cancelled context should fail")
	}
}
