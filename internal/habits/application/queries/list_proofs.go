package queries

import (
	"context"
	"sort"

	"github.com/felixgeelhaar/keepup/internal/habits/domain"
)

// ProofDTO is one recorded completion proof.
type ProofDTO struct {
	TaskID string
	Date   string
	domain.TaskProof
}

// ListProofsQuery lists proofs of one task, or of all tasks when TaskID is nil.
type ListProofsQuery struct {
	TaskID *domain.TaskID
}

// ListProofsHandler handles the ListProofsQuery.
type ListProofsHandler struct {
	proofs ProofReader
}

// NewListProofsHandler creates a new ListProofsHandler.
func NewListProofsHandler(proofs ProofReader) *ListProofsHandler {
	return &ListProofsHandler{proofs: proofs}
}

// Handle returns proofs newest first.
func (h *ListProofsHandler) Handle(ctx context.Context, query ListProofsQuery) []ProofDTO {
	var out []ProofDTO
	for taskID, byDate := range h.proofs.All(ctx) {
		if query.TaskID != nil && taskID != query.TaskID.String() {
			continue
		}
		for date, proof := range byDate {
			out = append(out, ProofDTO{TaskID: taskID, Date: date, TaskProof: proof})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		if out[i].TaskID != out[j].TaskID {
			return out[i].TaskID < out[j].TaskID
		}
		return out[i].Date > out[j].Date
	})
	return out
}
