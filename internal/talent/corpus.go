package talent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/recruitkit/talent-scout/internal/embedcache"
)

// Corpus is the fixed set of embedded candidates available for ranking.
// Read-only after construction; safe to share across concurrent requests.
type Corpus struct {
	records   []Candidate
	dimension int
}

// All returns the records in their original load order. Callers must not
// mutate the returned slice.
func (c *Corpus) All() []Candidate {
	if c == nil {
		return nil
	}
	return c.records
}

// Len returns the number of records.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// Dimension returns the embedding dimensionality, 0 for an empty corpus.
func (c *Corpus) Dimension() int {
	if c == nil {
		return 0
	}
	return c.dimension
}

// Ready reports whether the corpus has at least one usable record.
func (c *Corpus) Ready() bool {
	return c.Len() > 0
}

// Store builds and persists the corpus. Building embeds every profile
// through the embedding cache; loading prefers the durable snapshot so
// process restarts skip re-embedding.
type Store struct {
	profilesPath string
	snapshotPath string
	cache        *embedcache.Cache
	logger       *zap.Logger
}

// NewStore creates a corpus store. profilesPath is the raw CSV export,
// snapshotPath the durable corpus snapshot.
func NewStore(profilesPath, snapshotPath string, cache *embedcache.Cache, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		profilesPath: profilesPath,
		snapshotPath: snapshotPath,
		cache:        cache,
		logger:       log,
	}
}

// Load returns the corpus from the snapshot when one exists, otherwise
// builds it from the raw profiles.
func (s *Store) Load(ctx context.Context) (*Corpus, error) {
	corpus, err := s.readSnapshot()
	if err != nil {
		return nil, err
	}
	if corpus != nil {
		s.logger.Info("corpus snapshot loaded",
			zap.String("path", s.snapshotPath),
			zap.Int("candidates", corpus.Len()),
			zap.Int("dimension", corpus.Dimension()),
		)
		return corpus, nil
	}

	return s.Build(ctx)
}

// Build embeds every raw profile and assembles the corpus. Profiles whose
// embedding cannot be obtained are dropped with a logged reason; they are
// never stored with a placeholder vector. An empty result is a valid
// terminal state, not an error.
func (s *Store) Build(ctx context.Context) (*Corpus, error) {
	profiles, err := ReadProfiles(s.profilesPath)
	if err != nil {
		return nil, err
	}

	s.logger.Info("building corpus", zap.Int("profiles", len(profiles)))

	corpus := &Corpus{}
	for _, profile := range profiles {
		vector, err := s.cache.GetOrCompute(ctx, profile.CombinedFeatures())
		if err != nil {
			s.logger.Warn("dropping profile without embedding",
				zap.String("name", profile.Name()),
				zap.Error(err),
			)
			continue
		}

		if corpus.dimension == 0 {
			corpus.dimension = len(vector)
		}
		if len(vector) != corpus.dimension {
			s.logger.Warn("dropping profile with mismatched embedding dimension",
				zap.String("name", profile.Name()),
				zap.Int("got", len(vector)),
				zap.Int("want", corpus.dimension),
			)
			continue
		}

		corpus.records = append(corpus.records, Candidate{
			Name:      profile.Name(),
			Location:  profile.Location(),
			Skills:    profile.Skills,
			Bio:       profile.Description,
			Verticals: profile.Verticals,
			PastWork:  profile.PastWork,
			Embedding: vector,
		})
	}

	s.logger.Info("corpus built",
		zap.Int("candidates", corpus.Len()),
		zap.Int("dropped", len(profiles)-corpus.Len()),
		zap.Int("dimension", corpus.Dimension()),
	)

	if corpus.Ready() {
		if err := s.writeSnapshot(corpus); err != nil {
			return nil, err
		}
	}

	return corpus, nil
}

type snapshot struct {
	Dimension int         `json:"dimension"`
	Records   []Candidate `json:"records"`
}

func (s *Store) readSnapshot() (*Corpus, error) {
	if s.snapshotPath == "" {
		return nil, nil
	}

	f, err := os.Open(s.snapshotPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open corpus snapshot %q: %w", s.snapshotPath, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read corpus snapshot %q: %w", s.snapshotPath, err)
	}
	defer gz.Close()

	var snap snapshot
	if err := json.NewDecoder(gz).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode corpus snapshot %q: %w", s.snapshotPath, err)
	}

	for i, record := range snap.Records {
		if len(record.Embedding) != snap.Dimension {
			return nil, fmt.Errorf("corpus snapshot %q: record %d (%s) has dimension %d, want %d",
				s.snapshotPath, i, record.Name, len(record.Embedding), snap.Dimension)
		}
	}

	return &Corpus{records: snap.Records, dimension: snap.Dimension}, nil
}

func (s *Store) writeSnapshot(corpus *Corpus) error {
	if s.snapshotPath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.snapshotPath), 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp := s.snapshotPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create corpus snapshot %q: %w", tmp, err)
	}

	gz := gzip.NewWriter(f)
	err = json.NewEncoder(gz).Encode(snapshot{
		Dimension: corpus.dimension,
		Records:   corpus.records,
	})
	if cerr := gz.Close(); err == nil {
		err = cerr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write corpus snapshot %q: %w", tmp, err)
	}

	if err := os.Rename(tmp, s.snapshotPath); err != nil {
		return fmt.Errorf("replace corpus snapshot %q: %w", s.snapshotPath, err)
	}

	s.logger.Info("corpus snapshot saved",
		zap.String("path", s.snapshotPath),
		zap.Int("candidates", corpus.Len()),
	)

	return nil
}
