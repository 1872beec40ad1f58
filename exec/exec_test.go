package exec

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/dataexec/code"
	"github.com/jonwraymond/dataexec/runtime/luaengine"
	"github.com/jonwraymond/dataexec/session"
)

const salesCSV = "testdata/sales.csv"

// testSetup creates a facade over a fresh session with the Lua engine.
func testSetup(t *testing.T, opts Options) *Exec {
	t.Helper()
	if opts.Engine == nil {
		opts.Engine = luaengine.New(luaengine.Config{})
	}
	e, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func mustLoad(t *testing.T, e *Exec, path, name string) string {
	t.Helper()
	msg, err := e.Load(context.Background(), path, name)
	if err != nil {
		t.Fatalf("Load(%q, %q) error = %v", path, name, err)
	}
	return msg
}

func mustRun(t *testing.T, e *Exec, script string, promote ...string) string {
	t.Helper()
	out, err := e.Run(context.Background(), script, promote)
	if err != nil {
		t.Fatalf("Run(%q) error = %v", script, err)
	}
	return out
}

func auditKinds(e *Exec) []session.AuditKind {
	entries := e.Audit()
	kinds := make([]session.AuditKind, len(entries))
	for i, entry := range entries {
		kinds[i] = entry.Kind
	}
	return kinds
}

func TestNew_MissingEngine(t *testing.T) {
	_, err := New(Options{})
	if !errors.Is(err, ErrEngineRequired) {
		t.Errorf("New() error = %v, want %v", err, ErrEngineRequired)
	}
}

func TestNew_InvalidLimits(t *testing.T) {
	engine := luaengine.New(luaengine.Config{})
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{name: "timeout", opts: Options{Engine: engine, DefaultTimeout: -time.Second}, want: ErrNegativeTimeout},
		{name: "output", opts: Options{Engine: engine, MaxOutputBytes: -1}, want: ErrNegativeMaxBytes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts); !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNew_DefaultsApplied(t *testing.T) {
	e := testSetup(t, Options{})

	if e.Session() == nil {
		t.Fatal("Session() = nil, want a new session")
	}
	if e.opts.DefaultTimeout != DefaultTimeout {
		t.Errorf("DefaultTimeout = %v, want %v", e.opts.DefaultTimeout, DefaultTimeout)
	}
	if e.opts.MaxOutputBytes != DefaultMaxOutputBytes {
		t.Errorf("MaxOutputBytes = %d, want %d", e.opts.MaxOutputBytes, DefaultMaxOutputBytes)
	}
}

func TestNew_UsesGivenSession(t *testing.T) {
	sess := session.New(session.WithID("fixed"))
	e := testSetup(t, Options{Session: sess})
	if e.Session() != sess {
		t.Error("Session() did not return the configured session")
	}
}

func TestLoad_AnonymousNames(t *testing.T) {
	e := testSetup(t, Options{})

	for i := 1; i <= 3; i++ {
		want := fmt.Sprintf("Successfully loaded CSV into dataframe 'df_%d'", i)
		if got := mustLoad(t, e, salesCSV, ""); got != want {
			t.Errorf("Load() = %q, want %q", got, want)
		}
	}
	if got := e.Session().Store.Names(); strings.Join(got, ",") != "df_1,df_2,df_3" {
		t.Errorf("Names() = %v", got)
	}
}

func TestLoad_NamedDoesNotAllocate(t *testing.T) {
	e := testSetup(t, Options{})

	if got := mustLoad(t, e, salesCSV, "sales"); got != "Successfully loaded CSV into dataframe 'sales'" {
		t.Errorf("Load() = %q", got)
	}
	if n := e.Session().Names.Allocated(); n != 0 {
		t.Errorf("Allocated() = %d, want 0", n)
	}
	if got := mustLoad(t, e, salesCSV, ""); !strings.Contains(got, "'df_1'") {
		t.Errorf("Load() = %q, want df_1", got)
	}
}

func TestLoad_FailureBurnsIndex(t *testing.T) {
	e := testSetup(t, Options{})

	_, err := e.Load(context.Background(), "testdata/missing.csv", "")
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("Load() error = %v, want ErrLoad", err)
	}
	var lerr *Error
	if !errors.As(err, &lerr) || lerr.Category != CategoryLoad {
		t.Fatalf("Load() error = %#v, want *Error with CategoryLoad", err)
	}
	if !strings.HasPrefix(lerr.Message, "Error loading CSV: ") {
		t.Errorf("Message = %q", lerr.Message)
	}
	if e.Session().Store.Len() != 0 {
		t.Error("failed load changed the store")
	}

	if got := mustLoad(t, e, salesCSV, ""); !strings.Contains(got, "'df_2'") {
		t.Errorf("Load() = %q, want df_2 after a failed anonymous load", got)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	e := testSetup(t, Options{})
	mustLoad(t, e, salesCSV, "keep")

	_, err := e.Load(context.Background(), "testdata/bad.csv", "keep")
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("Load() error = %v, want ErrLoad", err)
	}
	f, err := e.Session().Store.Get("keep")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if f.NumRows() != 3 {
		t.Errorf("rows = %d, want the earlier dataset untouched", f.NumRows())
	}
}

func TestLoad_OverwritesName(t *testing.T) {
	e := testSetup(t, Options{})
	mustLoad(t, e, salesCSV, "data")
	mustLoad(t, e, "testdata/short.csv", "data")

	f, err := e.Session().Store.Get("data")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got := strings.Join(f.Columns(), ","); got != "a,b" {
		t.Errorf("columns = %q, want the second load to win", got)
	}
}

func TestLoad_DataDir(t *testing.T) {
	dir, err := filepath.Abs("testdata")
	if err != nil {
		t.Fatal(err)
	}
	e := testSetup(t, Options{DataDir: dir})

	mustLoad(t, e, "sales.csv", "relative")
	mustLoad(t, e, filepath.Join(dir, "sales.csv"), "absolute")
	if e.Session().Store.Len() != 2 {
		t.Errorf("Len() = %d, want 2", e.Session().Store.Len())
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	e := testSetup(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Load(ctx, salesCSV, "")
	if !errors.Is(err, ErrLoad) || !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want ErrLoad wrapping context.Canceled", err)
	}
}

func TestRun_Output(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{name: "stdout", script: `print(len(df_1))`, want: "Output:\n3\n\n"},
		{name: "stderr", script: `eprint("careful")`, want: "Errors:\ncareful\n\n"},
		{name: "both", script: `print("a") eprint("b")`, want: "Output:\na\n\nErrors:\nb\n\n"},
		{name: "silent", script: `local x = 1`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testSetup(t, Options{})
			mustLoad(t, e, salesCSV, "")
			if got := mustRun(t, e, tt.script); got != tt.want {
				t.Errorf("Run() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRun_Promotes(t *testing.T) {
	e := testSetup(t, Options{})
	mustLoad(t, e, salesCSV, "")

	mustRun(t, e, `summary = df_1:head(2)`, "summary")

	f, err := e.Session().Store.Get("summary")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if f.NumRows() != 2 {
		t.Errorf("rows = %d, want 2", f.NumRows())
	}
}

func TestRun_PromotionOverwrites(t *testing.T) {
	e := testSetup(t, Options{})
	mustLoad(t, e, salesCSV, "")

	mustRun(t, e, `df_1 = df_1:head(1)`, "df_1")

	f, _ := e.Session().Store.Get("df_1")
	if f.NumRows() != 1 {
		t.Errorf("rows = %d, want the promoted value to replace df_1", f.NumRows())
	}
}

func TestRun_MissingPromotionSkipped(t *testing.T) {
	e := testSetup(t, Options{})

	if _, err := e.Run(context.Background(), `x = 1`, []string{"x", "never"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := e.Session().Store.Names(); strings.Join(got, ",") != "x" {
		t.Errorf("Names() = %v, want only x", got)
	}
}

func TestRun_LocalChangesStayLocal(t *testing.T) {
	e := testSetup(t, Options{})
	mustLoad(t, e, salesCSV, "")

	mustRun(t, e, `df_1 = df_1:head(1) scratch = 5`)

	f, _ := e.Session().Store.Get("df_1")
	if f.NumRows() != 3 {
		t.Errorf("rows = %d, want df_1 unchanged without promotion", f.NumRows())
	}
	if _, err := e.Session().Store.Get("scratch"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Get(scratch) error = %v, want ErrNotFound", err)
	}
}

func TestRun_FailureLeavesStoreUntouched(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{name: "runtime error", script: "summary = df_1:head()\nerror('late')"},
		{name: "syntax error", script: "summary = = 1"},
		{name: "binding error", script: "summary = df_1:column('nope')"},
		{name: "unconvertible", script: "summary = print"},
		{name: "cyclic table", script: "summary = {} summary.self = summary"},
		{name: "oversized string", script: `summary = string.rep("x", 2^40)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testSetup(t, Options{})
			mustLoad(t, e, salesCSV, "")

			_, err := e.Run(context.Background(), tt.script, []string{"summary"})
			if !errors.Is(err, ErrExecution) {
				t.Fatalf("Run() error = %v, want ErrExecution", err)
			}
			if !errors.Is(err, code.ErrCodeExecution) {
				t.Errorf("Run() error = %v, want it to wrap ErrCodeExecution", err)
			}
			var rerr *Error
			if !errors.As(err, &rerr) || !strings.HasPrefix(rerr.Message, "Error running script: ") {
				t.Errorf("Run() error = %#v", err)
			}
			if got := e.Session().Store.Names(); strings.Join(got, ",") != "df_1" {
				t.Errorf("Names() = %v, want store untouched", got)
			}
		})
	}
}

func TestRun_Timeout(t *testing.T) {
	e := testSetup(t, Options{DefaultTimeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := e.Run(context.Background(), `while true do end`, nil)
	if !errors.Is(err, ErrExecution) {
		t.Fatalf("Run() error = %v, want ErrExecution", err)
	}
	if !errors.Is(err, code.ErrLimitExceeded) {
		t.Errorf("Run() error = %v, want ErrLimitExceeded", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("timeout took %v", time.Since(start))
	}
}

func TestRun_OutputLimit(t *testing.T) {
	e := testSetup(t, Options{MaxOutputBytes: 4})

	got := mustRun(t, e, `print("abcdefgh")`)
	want := "Output:\nabcd" + code.TruncationMarker + "\n"
	if got != want {
		t.Errorf("Run() = %q, want %q", got, want)
	}
}

func TestList(t *testing.T) {
	e := testSetup(t, Options{})

	if got := e.List(context.Background()); got != "No variables in current session." {
		t.Errorf("List() = %q", got)
	}

	mustLoad(t, e, salesCSV, "zeta")
	mustLoad(t, e, salesCSV, "alpha")

	got := e.List(context.Background())
	if !strings.HasPrefix(got, "Current session variables:\n\nalpha = ") {
		t.Errorf("List() = %q, want header then alpha first", got)
	}
	if !strings.Contains(got, "\nzeta = ") {
		t.Errorf("List() = %q, want zeta", got)
	}
	if !strings.Contains(got, "[3 rows x 3 columns]") {
		t.Errorf("List() = %q, want rendered frames", got)
	}
}

func TestAudit_Order(t *testing.T) {
	e := testSetup(t, Options{})
	ctx := context.Background()

	mustLoad(t, e, salesCSV, "")
	_, _ = e.Load(ctx, "testdata/missing.csv", "")
	mustRun(t, e, `a = 1 b = 2 print("hi")`, "a", "b")
	_, _ = e.Run(ctx, `error("x")`, nil)

	want := []session.AuditKind{
		session.AuditLoad,
		session.AuditLoadFailed,
		session.AuditRun,
		session.AuditPromote,
		session.AuditPromote,
		session.AuditResult,
		session.AuditRunFailed,
	}
	got := auditKinds(e)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("audit kinds = %v, want %v", got, want)
	}

	entries := e.Audit()
	if entries[2].Text != "Running script: \n"+`a = 1 b = 2 print("hi")` {
		t.Errorf("run entry = %q", entries[2].Text)
	}
	if entries[3].Text != "Saving dataframe 'a' to memory" {
		t.Errorf("promote entry = %q", entries[3].Text)
	}
	if entries[5].Text != "Result: hi\n" {
		t.Errorf("result entry = %q", entries[5].Text)
	}
	for i, entry := range entries {
		if entry.Seq != i+1 {
			t.Errorf("entries[%d].Seq = %d", i, entry.Seq)
		}
	}
}

// TestSessionScenario walks the load, run, promote and list sequence an
// analysis agent performs.
func TestSessionScenario(t *testing.T) {
	e := testSetup(t, Options{})
	ctx := context.Background()

	msg, err := e.Load(ctx, salesCSV, "")
	if err != nil || msg != "Successfully loaded CSV into dataframe 'df_1'" {
		t.Fatalf("Load() = %q, %v", msg, err)
	}

	out, err := e.Run(ctx, "print(len(df_1))", nil)
	if err != nil || out != "Output:\n3\n\n" {
		t.Fatalf("Run() = %q, %v", out, err)
	}

	out, err = e.Run(ctx, "summary = df_1:head()", []string{"summary"})
	if err != nil || out != "" {
		t.Fatalf("Run() = %q, %v", out, err)
	}

	listing := e.List(ctx)
	for _, name := range []string{"df_1 = ", "summary = "} {
		if !strings.Contains(listing, name) {
			t.Errorf("List() = %q, want %q", listing, name)
		}
	}

	out, err = e.Run(ctx, "print(summary:nrows(), summary:sum('units'))", nil)
	if err != nil || out != "Output:\n3\t60\n\n" {
		t.Errorf("Run() = %q, %v, want the promoted frame visible", out, err)
	}
}

func TestConcurrentRuns(t *testing.T) {
	e := testSetup(t, Options{})
	mustLoad(t, e, salesCSV, "")

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("out_%d", i)
			if _, err := e.Run(context.Background(), name+" = df_1:head(1)", []string{name}); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	if n := e.Session().Store.Len(); n != workers+1 {
		t.Errorf("Len() = %d, want %d", n, workers+1)
	}
	if n := e.Session().Log.Len(); n != 1+workers*3 {
		t.Errorf("audit entries = %d, want %d", n, 1+workers*3)
	}
}
