package exec

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonwraymond/dataexec/code"
	"github.com/jonwraymond/dataexec/dataset"
	"github.com/jonwraymond/dataexec/logging"
	"github.com/jonwraymond/dataexec/session"
)

// Listing texts.
const (
	emptyListing  = "No variables in current session."
	listingHeader = "Current session variables:\n\n"
)

// Exec is the facade over one analysis session.
// It combines loading, script execution and listing into a single API and
// serializes every operation that changes the session.
type Exec struct {
	sess     *session.Session
	executor *code.DefaultExecutor
	log      zerolog.Logger
	opts     Options
}

// New creates a new Exec instance with the given options.
func New(opts Options) (*Exec, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts.applyDefaults()

	logger := opts.Logger.With().Str("session", opts.Session.ID).Logger()

	executor, err := code.NewDefaultExecutor(code.Config{
		Engine:         opts.Engine,
		Store:          opts.Session.Store,
		DefaultTimeout: opts.DefaultTimeout,
		MaxOutputBytes: opts.MaxOutputBytes,
		Logger:         logging.NewAdapter(logger),
	})
	if err != nil {
		return nil, err
	}

	return &Exec{
		sess:     opts.Session,
		executor: executor,
		log:      logger,
		opts:     opts,
	}, nil
}

// Load reads the CSV file at path into the session under name. An empty
// name takes the next anonymous name, which stays used even if the load
// fails. Loading over an existing name replaces it.
func (e *Exec) Load(ctx context.Context, path, name string) (string, error) {
	var msg string
	err := e.sess.Update(func() error {
		if err := ctx.Err(); err != nil {
			return loadError(err)
		}
		if name == "" {
			name = e.sess.Names.Allocate()
		}

		f, err := dataset.LoadCSV(e.resolve(path))
		if err != nil {
			lerr := loadError(err)
			e.sess.Log.Append(session.AuditLoadFailed, lerr.Message)
			e.log.Warn().Err(err).Str("name", name).Str("path", path).Msg("load failed")
			return lerr
		}

		e.sess.Store.Put(name, f)
		msg = fmt.Sprintf("Successfully loaded CSV into dataframe '%s'", name)
		e.sess.Log.Append(session.AuditLoad, msg)

		rows, cols := f.Shape()
		e.log.Info().
			Str("name", name).
			Str("path", path).
			Int("rows", rows).
			Int("columns", cols).
			Msg("load")
		return nil
	})
	if err != nil {
		return "", err
	}
	return msg, nil
}

// Run executes script against the session's datasets and, only if it
// succeeds, stores the globals named in promote. Names the script left
// unset are skipped. The returned text is the captured output formatted by
// code.FormatOutput.
func (e *Exec) Run(ctx context.Context, script string, promote []string) (string, error) {
	var out string
	err := e.sess.Update(func() error {
		res, err := e.executor.Run(ctx, code.RunParams{
			Code:    script,
			Promote: promote,
		})
		if err != nil {
			rerr := executionError(err)
			e.sess.Log.Append(session.AuditRunFailed, rerr.Message)
			e.log.Warn().Err(err).Int64("duration_ms", res.DurationMs).Msg("run failed")
			return rerr
		}

		e.sess.Log.Append(session.AuditRun, "Running script: \n"+script)
		for _, name := range res.Promoted {
			e.sess.Log.Append(session.AuditPromote, fmt.Sprintf("Saving dataframe '%s' to memory", name))
		}
		e.sess.Log.Append(session.AuditResult, "Result: "+res.Stdout)

		e.log.Info().
			Int64("duration_ms", res.DurationMs).
			Strs("promoted", res.Promoted).
			Strs("skipped", res.Skipped).
			Int("stdout_bytes", len(res.Stdout)).
			Int("stderr_bytes", len(res.Stderr)).
			Msg("run")
		out = res.Output
		return nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// List renders every dataset in the session, ordered by name. A dataset
// that fails to render is listed with an inline error marker.
func (e *Exec) List(_ context.Context) string {
	var entries []session.Entry
	e.sess.View(func() {
		entries = e.sess.Store.Describe()
	})
	if len(entries) == 0 {
		return emptyListing
	}

	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = entry.Name + " = " + entry.Rendered
	}
	return listingHeader + strings.Join(lines, "\n")
}

// Audit returns a copy of the session's audit log.
func (e *Exec) Audit() []session.AuditEntry {
	return e.sess.Log.All()
}

// Session returns the underlying session.
func (e *Exec) Session() *session.Session {
	return e.sess
}

func (e *Exec) resolve(path string) string {
	if e.opts.DataDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.opts.DataDir, path)
}
