// Package runner drives a convergence run: it walks the declared action list
// in order, resolves each item against the repository root and home
// directory, dispatches to the matching executor, and records one result per
// attempted action. A failing action never prevents later actions from being
// attempted.
package runner

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/roostdev/roost/internal/actions"
	"github.com/roostdev/roost/internal/agecrypt"
	"github.com/roostdev/roost/internal/audit"
	"github.com/roostdev/roost/internal/config"
	"github.com/roostdev/roost/internal/envstore"
	"github.com/roostdev/roost/internal/failure"
	"github.com/roostdev/roost/internal/logging"
	"github.com/roostdev/roost/internal/platform"
	"github.com/roostdev/roost/internal/report"
	"github.com/roostdev/roost/internal/shell"
	"github.com/roostdev/roost/internal/tags"
)

// Runner holds the resolved execution environment for one run.
type Runner struct {
	RepoRoot    string
	HomeDir     string
	Proc        envstore.Store // current process environment
	User        envstore.Store // persistent user-scoped store
	AgeKey      *agecrypt.Key
	MachineTags []string
	DryRun      bool
	NoAudit     bool

	log zerolog.Logger
}

// New builds a Runner from a loaded manifest with production defaults: the
// real home directory, the process environment, and the persistent file
// store.
func New(m config.Manifest, dryRun bool) *Runner {
	machine, err := tags.Load()
	if err != nil {
		machine = &tags.MachineConfig{}
	}
	return &Runner{
		RepoRoot:    m.Repo,
		HomeDir:     platform.HomeDir(),
		Proc:        envstore.Process{},
		User:        envstore.NewFile(),
		AgeKey:      agecrypt.FromEnv(m.Age.Identity, m.Age.Passphrase),
		MachineTags: machine.Tags,
		DryRun:      dryRun,
		log:         logging.GetLogger("runner"),
	}
}

// Run applies every item in declaration order and returns the run's report.
// Optional items whose source is absent, tag-gated items not matching this
// machine, and items whose skipIf guard fires are omitted from the result set
// entirely.
func (r *Runner) Run(ctx context.Context, items []config.Item) report.Report {
	var results []report.Result
	for i, item := range items {
		if skip, reason := r.shouldSkip(ctx, item); skip {
			r.log.Debug().Int("action", i).Str("kind", string(item.Kind)).Str("reason", reason).Msg("skipped")
			continue
		}

		act, target, err := r.buildAction(item)
		if err != nil {
			results = append(results, report.Result{
				Index:   i,
				Method:  string(item.Kind),
				Source:  item.Source,
				Target:  item.Destination,
				Status:  report.StatusFailed,
				Message: err.Error(),
			})
			continue
		}

		res := report.Result{
			Index:  i,
			Method: act.Kind(),
			Source: item.Source,
			Target: target,
			Status: report.StatusSuccess,
		}

		if r.DryRun {
			res.Message = "dry-run: " + act.Describe()
			r.log.Info().Str("action", act.Describe()).Msg("dry-run")
			results = append(results, res)
			continue
		}

		if runErr := act.Run(ctx); runErr != nil {
			res.Status = report.StatusFailed
			res.Message = runErr.Error()
			r.log.Error().Err(runErr).Str("target", target).Msg(act.Describe())
		} else {
			r.log.Info().Str("target", target).Msg(act.Describe())
		}

		if !r.NoAudit {
			audit.Log(audit.Entry{
				Command: "apply",
				Method:  res.Method,
				Target:  res.Target,
				Outcome: string(res.Status),
				Error:   res.Message,
			})
		}
		results = append(results, res)
	}
	return report.New(results)
}

// ItemStatus is the non-mutating answer to "is this item already converged".
type ItemStatus struct {
	Item   config.Item
	Target string
	State  string // "applied" | "pending" | "skipped" | "unknown" | "failed"
	Detail string
}

// Status checks every item without mutating anything. Items whose executor
// cannot self-check report "unknown".
func (r *Runner) Status(ctx context.Context, items []config.Item) []ItemStatus {
	var out []ItemStatus
	for _, item := range items {
		if skip, reason := r.shouldSkip(ctx, item); skip {
			out = append(out, ItemStatus{Item: item, Target: item.Destination, State: "skipped", Detail: reason})
			continue
		}
		act, target, err := r.buildAction(item)
		if err != nil {
			out = append(out, ItemStatus{Item: item, Target: item.Destination, State: "failed", Detail: err.Error()})
			continue
		}
		st := ItemStatus{Item: item, Target: target, State: "unknown"}
		if idem, ok := act.(actions.Idempotent); ok {
			applied, cerr := idem.IsApplied(ctx)
			switch {
			case cerr != nil:
				st.State = "failed"
				st.Detail = cerr.Error()
			case applied:
				st.State = "applied"
			default:
				st.State = "pending"
			}
		}
		out = append(out, st)
	}
	return out
}

// buildAction resolves a declared item into a typed executor plus its
// resolved target. Unknown kinds come back as an UNKNOWN_ACTION failure so
// programmatically built lists degrade into a Failed result instead of
// aborting the run.
func (r *Runner) buildAction(item config.Item) (actions.Action, string, error) {
	switch item.Kind {
	case config.KindLink:
		target := platform.ResolveDestination(item.Destination, item.Absolute, r.HomeDir)
		return &actions.Link{Source: r.sourcePath(item), Target: target}, target, nil

	case config.KindCopy:
		target := platform.ResolveDestination(item.Destination, item.Absolute, r.HomeDir)
		return &actions.Copy{
			Source:    r.sourcePath(item),
			Target:    target,
			Encrypted: item.Encrypted,
			Key:       r.AgeKey,
		}, target, nil

	case config.KindAppend:
		target := platform.ResolveDestination(item.Destination, item.Absolute, r.HomeDir)
		return &actions.Append{Source: r.sourcePath(item), Target: target, Keyword: item.Keyword}, target, nil

	case config.KindMkdir:
		target := platform.ResolveDestination(item.Destination, item.Absolute, r.HomeDir)
		return &actions.Mkdir{Target: target}, target, nil

	case config.KindUserPath:
		entry := platform.ResolveDestination(item.Destination, item.Absolute, r.HomeDir)
		return &actions.UserPath{Entry: entry, Store: r.store(item)}, entry, nil

	case config.KindUserEnv:
		// The destination is the variable name, not a path.
		return &actions.UserEnv{
			Name:     item.Destination,
			Value:    item.Value,
			Override: item.Override,
			Store:    r.store(item),
		}, item.Destination, nil

	default:
		return nil, "", failure.Newf(failure.UnknownAction, "no executor for action kind %q", item.Kind)
	}
}

func (r *Runner) sourcePath(item config.Item) string {
	return filepath.Join(r.RepoRoot, item.Source)
}

func (r *Runner) store(item config.Item) envstore.Store {
	if item.Persist {
		return r.User
	}
	return r.Proc
}

func (r *Runner) shouldSkip(ctx context.Context, item config.Item) (bool, string) {
	if !tags.Matches(item.Tags, r.MachineTags) {
		return true, "machine tags do not match"
	}
	if item.Optional && item.Source != "" {
		src := r.sourcePath(item)
		if item.Encrypted {
			src = agecrypt.StoredPath(src)
		}
		if !actions.SourceExists(src) {
			return true, "optional source absent"
		}
	}
	if item.SkipIf != "" {
		ok, err := shell.Eval(ctx, item.SkipIf)
		if err != nil {
			r.log.Warn().Err(err).Str("skipIf", item.SkipIf).Msg("guard failed to run, not skipping")
			return false, ""
		}
		if ok {
			return true, "skipIf guard"
		}
	}
	return false, ""
}
