package annotations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/felixgeelhaar/keepup/pkg/observability"
)

// ErrEmptyProofURL is returned when a proof has no content address.
var ErrEmptyProofURL = errors.New("proof url cannot be empty")

// proofRecord is the stored form of a proof.
type proofRecord struct {
	IPFSURL   string `json:"ipfsUrl"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	FileName  string `json:"fileName"`
}

// ProofStore maps task ids to per-day completion proofs.
type ProofStore struct {
	mu   sync.Mutex
	blob blob
}

// NewProofStore creates a new ProofStore.
func NewProofStore(backend Backend, logger *slog.Logger, metrics observability.Metrics) *ProofStore {
	return &ProofStore{blob: newBlob(backend, NamespaceProofs, logger, metrics)}
}

// Add records a proof for the UTC day of at, replacing that day's proof.
func (s *ProofStore) Add(ctx context.Context, id domain.TaskID, url, fileName string, at time.Time) error {
	if url == "" {
		return ErrEmptyProofURL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	proofs := s.load(ctx)
	key := id.String()
	if proofs[key] == nil {
		proofs[key] = make(map[string]proofRecord)
	}
	proofs[key][domain.CurrentDay(at).DateKey()] = proofRecord{
		IPFSURL:   url,
		Timestamp: at.UnixMilli(),
		FileName:  fileName,
	}
	return s.save(ctx, proofs)
}

// Get returns the proof of a task for one YYYY-MM-DD day.
func (s *ProofStore) Get(ctx context.Context, id domain.TaskID, dateKey string) (domain.TaskProof, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.load(ctx)[id.String()][dateKey]
	if !ok {
		return domain.TaskProof{}, false
	}
	return rec.toDomain(), true
}

// List returns the proofs of a task, newest first.
func (s *ProofStore) List(ctx context.Context, id domain.TaskID) []domain.TaskProof {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDate := s.load(ctx)[id.String()]
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool {
		a, b := byDate[dates[i]], byDate[dates[j]]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp > b.Timestamp
		}
		return dates[i] > dates[j]
	})

	proofs := make([]domain.TaskProof, 0, len(dates))
	for _, d := range dates {
		proofs = append(proofs, byDate[d].toDomain())
	}
	return proofs
}

// Remove drops every proof of a task.
func (s *ProofStore) Remove(ctx context.Context, id domain.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	proofs := s.load(ctx)
	if _, ok := proofs[id.String()]; !ok {
		return nil
	}
	delete(proofs, id.String())
	return s.save(ctx, proofs)
}

// All returns every proof keyed by task id then day.
func (s *ProofStore) All(ctx context.Context) map[string]map[string]domain.TaskProof {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]map[string]domain.TaskProof)
	for key, byDate := range s.load(ctx) {
		days := make(map[string]domain.TaskProof, len(byDate))
		for d, rec := range byDate {
			days[d] = rec.toDomain()
		}
		out[key] = days
	}
	return out
}

func (s *ProofStore) load(ctx context.Context) map[string]map[string]proofRecord {
	proofs := make(map[string]map[string]proofRecord)
	raw := s.blob.read(ctx)
	if len(raw) == 0 {
		return proofs
	}

	var tasks map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tasks); err != nil {
		s.blob.corrupt(ctx, "malformed", err)
		return proofs
	}
	for key, rawDays := range tasks {
		var days map[string]json.RawMessage
		if err := json.Unmarshal(rawDays, &days); err != nil {
			s.blob.skip(ctx, key, err)
			continue
		}
		for d, rawProof := range days {
			var rec proofRecord
			if err := json.Unmarshal(rawProof, &rec); err != nil {
				s.blob.skip(ctx, key+"/"+d, err)
				continue
			}
			if rec.IPFSURL == "" {
				s.blob.skip(ctx, key+"/"+d, ErrEmptyProofURL)
				continue
			}
			if proofs[key] == nil {
				proofs[key] = make(map[string]proofRecord)
			}
			proofs[key][d] = rec
		}
	}
	return proofs
}

func (s *ProofStore) save(ctx context.Context, proofs map[string]map[string]proofRecord) error {
	data, err := json.Marshal(proofs)
	if err != nil {
		return fmt.Errorf("failed to encode proofs: %w", err)
	}
	return s.blob.write(ctx, data)
}

func (r proofRecord) toDomain() domain.TaskProof {
	return domain.TaskProof{
		URL:       r.IPFSURL,
		Timestamp: time.UnixMilli(r.Timestamp).UTC(),
		FileName:  r.FileName,
	}
}
