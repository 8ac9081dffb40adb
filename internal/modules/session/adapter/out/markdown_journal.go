package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"yuki/internal/modules/session/domain"
	sessionout "yuki/internal/modules/session/port/out"
	"yuki/internal/platform/markdown"
	"yuki/internal/platform/slug"
)

// MarkdownJournal writes one note per finished session under
// <dir>/sessions/YYYY/MM/DD.
type MarkdownJournal struct {
	dir string
}

func NewMarkdownJournal(dir string) sessionout.Journal {
	return &MarkdownJournal{dir: dir}
}

func (j *MarkdownJournal) Save(_ context.Context, s domain.Summary) (string, error) {
	date := s.StartedAt
	dir := filepath.Join(j.dir, "sessions", date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.md", date.Format("150405"), slug.Make(s.Level.Name))
	path := filepath.Join(dir, name)

	fields := []markdown.Field{
		{Key: "schema_version", Value: domain.SchemaVersion},
		{Key: "id", Value: s.SessionID},
		{Key: "level_id", Value: s.Level.ID},
		{Key: "level_name", Value: s.Level.Name},
		{Key: "level_creator", Value: s.Level.Creator},
		{Key: "practice", Value: s.Practice},
		{Key: "started_at", Value: s.StartedAt.Format(time.RFC3339)},
		{Key: "ended_at", Value: s.EndedAt.Format(time.RFC3339)},
		{Key: "ended_by", Value: s.EndedBy},
		{Key: "attempts", Value: s.Attempts},
		{Key: "best_percentage", Value: s.Best},
		{Key: "completed", Value: s.Completed},
		{Key: "coins", Value: s.Coins},
		{Key: "reports", Value: s.Reports},
	}
	rendered, err := markdown.RenderFrontmatter(fields, renderBody(s))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write session note: %w", err)
	}
	return path, nil
}

func renderBody(s domain.Summary) string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "# %s\n\n", s.Level.Name)
	if s.Level.Creator != "" {
		fmt.Fprintf(&b, "- Creator: %s\n", s.Level.Creator)
	}
	mode := "normal"
	if s.Practice {
		mode = "practice"
	}
	fmt.Fprintf(&b, "- Mode: %s\n", mode)
	fmt.Fprintf(&b, "- Duration: %s\n", s.EndedAt.Sub(s.StartedAt).Round(time.Second))
	fmt.Fprintf(&b, "- Attempts: %d\n", s.Attempts)
	fmt.Fprintf(&b, "- Best: %d%%\n", s.Best)
	if len(s.Coins) > 0 {
		fmt.Fprintf(&b, "- Coins: %s\n", coinRow(s.Coins))
	}
	fmt.Fprintf(&b, "- Reports sent: %d\n", s.Reports)
	return b.String()
}

func coinRow(coins []bool) string {
	marks := make([]string, len(coins))
	for i, c := range coins {
		marks[i] = "o"
		if c {
			marks[i] = "x"
		}
	}
	return "[" + strings.Join(marks, " ") + "]"
}
