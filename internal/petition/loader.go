package petition

import (
	"context"
	"time"

	"github.com/namwkim/dataviz-storytelling/internal/dataset"

	"go.uber.org/zap"
)

// Loader prepares the dataset once and serves it until invalidated.
type Loader struct {
	repo   Repository
	cutoff float64
	logger *zap.Logger
	memo   *dataset.Memo[*Dataset]
	now    func() time.Time
}

func NewLoader(repo Repository, cutoff float64, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loader{
		repo:   repo,
		cutoff: cutoff,
		logger: logger,
		now:    time.Now,
	}
	l.memo = dataset.NewMemo(l.load)
	return l
}

func (l *Loader) Dataset(ctx context.Context) (*Dataset, error) {
	return l.memo.Get(ctx)
}

// Invalidate forces the next Dataset call to re-read the repository.
func (l *Loader) Invalidate() {
	l.memo.Invalidate()
}

func (l *Loader) load(ctx context.Context) (*Dataset, error) {
	started := l.now()

	petitions, err := l.repo.Petitions(ctx)
	if err != nil {
		return nil, err
	}
	cities, err := l.repo.Cities(ctx)
	if err != nil {
		return nil, err
	}

	rows, st, err := Prepare(petitions, cities, l.cutoff)
	if err != nil {
		return nil, err
	}

	l.logger.Info("📦 petitions prepared",
		zap.Int("loaded", st.Loaded),
		zap.Int("unmatched", st.Unmatched),
		zap.Int("outliers", st.Outliers),
		zap.Int("kept", st.Kept),
		zap.Duration("took", l.now().Sub(started)),
	)

	return &Dataset{Rows: rows, Stats: st, LoadedAt: l.now()}, nil
}
