// Package feed supplies the desired reminder list. The REST layer that
// talks to the agenda server is an external collaborator; it drops the
// fetched list where a Provider can read it, already filtered to the
// current user's data.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
)

type Provider interface {
	FetchDesired(ctx context.Context) ([]model.DesiredReminder, error)
}

type reminderRecord struct {
	SourceID      string     `json:"source_id,omitempty"`
	File          string     `json:"file,omitempty"`
	Position      *int       `json:"position,omitempty"`
	FireAt        time.Time  `json:"fire_at"`
	Title         string     `json:"title"`
	Kind          string     `json:"kind,omitempty"`
	MinutesBefore int        `json:"minutes_before,omitempty"`
	EventTime     *time.Time `json:"event_time,omitempty"`
}

// FileProvider reads the desired list from a JSON file maintained by the
// fetch layer. A missing file means "nothing desired yet", not an error.
type FileProvider struct {
	path string
	log  *slog.Logger
}

func NewFileProvider(path string, log *slog.Logger) *FileProvider {
	if log == nil {
		log = slog.Default()
	}
	return &FileProvider{path: path, log: log}
}

func (p *FileProvider) FetchDesired(_ context.Context) ([]model.DesiredReminder, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.DesiredReminder{}, nil
		}
		return nil, fmt.Errorf("read desired list: %w", err)
	}

	var records []reminderRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode desired list: %w", err)
	}

	out := make([]model.DesiredReminder, 0, len(records))
	for i, rec := range records {
		rem := model.DesiredReminder{
			SourceID:      rec.SourceID,
			File:          rec.File,
			Position:      rec.Position,
			FireAt:        rec.FireAt,
			Title:         rec.Title,
			Kind:          model.ReminderKind(rec.Kind),
			MinutesBefore: rec.MinutesBefore,
			EventTime:     rec.EventTime,
		}
		if err := rem.Validate(); err != nil {
			p.log.Warn("skipping invalid desired reminder", "index", i, "error", err)
			continue
		}
		out = append(out, rem)
	}
	return out, nil
}
