package fetch

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/scopeping/internal/api"
	"github.com/hamed0406/scopeping/internal/domain"
)

const inScope = "in_scope"

// Source is the part of the scope API the fetcher needs.
type Source interface {
	GroupPrograms(ctx context.Context, groupID string) ([]api.Program, error)
	ProgramScopes(ctx context.Context, programID api.ID) ([]api.Scope, error)
}

type Fetcher struct {
	Src Source
	Log *zap.Logger
}

// Result holds the targets in fetch order. Skipped combines every non-200
// answer that caused a group or program to be skipped.
type Result struct {
	Targets []domain.Target
	Skipped error
}

// Fetch resolves group ids into in-scope targets. Non-200 answers skip the
// group or program; any other error aborts with no targets.
func (f *Fetcher) Fetch(ctx context.Context, groupIDs []string) (Result, error) {
	var res Result
	for _, gid := range groupIDs {
		gid = strings.TrimSpace(gid)
		if gid == "" {
			continue
		}
		progs, err := f.Src.GroupPrograms(ctx, gid)
		if err != nil {
			if isStatus(err) {
				f.Log.Warn("fetch_group_skipped", zap.String("group_id", gid), zap.Error(err))
				res.Skipped = multierr.Append(res.Skipped, err)
				continue
			}
			f.Log.Error("fetch_aborted", zap.String("group_id", gid), zap.Error(err))
			return Result{Skipped: res.Skipped}, err
		}
		f.Log.Info("fetch_group", zap.String("group_id", gid), zap.Int("programs", len(progs)))

		for _, p := range progs {
			scopes, err := f.Src.ProgramScopes(ctx, p.ID)
			if err != nil {
				if isStatus(err) {
					f.Log.Warn("fetch_program_skipped",
						zap.String("program_id", string(p.ID)), zap.String("program", p.Name), zap.Error(err))
					res.Skipped = multierr.Append(res.Skipped, err)
					continue
				}
				f.Log.Error("fetch_aborted", zap.String("program_id", string(p.ID)), zap.Error(err))
				return Result{Skipped: res.Skipped}, err
			}
			n := 0
			for _, s := range scopes {
				if s.ScopeType != inScope {
					continue
				}
				host := s.Host()
				if host == "" {
					continue
				}
				res.Targets = append(res.Targets, domain.Target{Domain: host, Program: p.Name})
				n++
			}
			f.Log.Debug("fetch_program", zap.String("program", p.Name), zap.Int("in_scope", n))
		}
	}
	f.Log.Info("fetch_done", zap.Int("targets", len(res.Targets)), zap.Int("skipped", len(multierr.Errors(res.Skipped))))
	return res, nil
}

func isStatus(err error) bool {
	var se *api.StatusError
	return errors.As(err, &se)
}
