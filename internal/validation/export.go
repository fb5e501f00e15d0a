package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emma-crm/warden/internal/relevance"
)

// auditExport is the blob payload for an audit trail snapshot.
type auditExport struct {
	ExportedAt time.Time          `json:"exported_at"`
	Count      int                `json:"count"`
	Results    []relevance.Result `json:"results"`
}

// ExportAudit uploads a point-in-time snapshot of the audit trail to blob
// storage and returns the blob key. The in-memory trail is left untouched;
// exports are how decisions outlive the retention bound.
func (v *validator) ExportAudit(ctx context.Context) (string, error) {
	results := v.rt.Trail.Snapshot()

	payload := auditExport{
		ExportedAt: time.Now().UTC(),
		Count:      len(results),
		Results:    results,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: serialize snapshot: %w", ErrExportFailed, err)
	}

	key := fmt.Sprintf(
		"audit/%s-%s.json",
		payload.ExportedAt.Format("20060102T150405Z"),
		uuid.New(),
	)

	if err := v.storage.Upload(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return "", fmt.Errorf("%w: upload snapshot: %w", ErrExportFailed, err)
	}

	v.logger.Info("audit trail exported", "key", key, "count", payload.Count)
	return key, nil
}
