package ledger

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/animus-labs/eqsat-pipeline/internal/domain"
)

// NDJSONRecorder writes one JSON object per unit result.
type NDJSONRecorder struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewNDJSONRecorder(w io.Writer) *NDJSONRecorder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &NDJSONRecorder{enc: enc}
}

func (r *NDJSONRecorder) Record(ctx context.Context, report domain.BatchReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range Entries(report) {
		if err := r.enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}
