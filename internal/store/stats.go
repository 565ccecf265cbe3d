package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/artemstakhov/portfolio/internal/contact"
)

type Submission struct {
	ID         string    `json:"id"`
	HashedIP   string    `json:"hashed_ip"`
	Locale     string    `json:"locale"`
	Outcome    string    `json:"outcome"`
	FieldTypes []string  `json:"field_types"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type FieldTypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	Total         int64            `json:"total"`
	Sent          int64            `json:"sent"`
	Failed        int64            `json:"failed"`
	Invalid       int64            `json:"invalid"`
	UniqueSenders int64            `json:"unique_senders"`
	Today         int64            `json:"today"`
	ThisWeek      int64            `json:"this_week"`
	FieldTypes    []FieldTypeCount `json:"field_types"`
	Recent        []Submission     `json:"recent"`
}

func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	rows, err := s.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM submissions GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("failed to count outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var outcome string
		var n int64
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		stats.Total += n
		switch contact.Outcome(outcome) {
		case contact.OutcomeSent:
			stats.Sent = n
		case contact.OutcomeFailed:
			stats.Failed = n
		case contact.OutcomeInvalid:
			stats.Invalid = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT hashed_ip) FROM submissions WHERE hashed_ip != ''`).Scan(&stats.UniqueSenders)
	if err != nil {
		return nil, fmt.Errorf("failed to count senders: %w", err)
	}

	now := s.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions WHERE created_at >= ?`, formatTime(startOfDay)).Scan(&stats.Today)
	if err != nil {
		return nil, fmt.Errorf("failed to count today: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions WHERE created_at >= ?`, formatTime(now.Add(-7*24*time.Hour))).Scan(&stats.ThisWeek)
	if err != nil {
		return nil, fmt.Errorf("failed to count week: %w", err)
	}

	if stats.FieldTypes, err = s.fieldTypeCounts(ctx); err != nil {
		return nil, err
	}

	if stats.Recent, err = s.Recent(ctx, 20); err != nil {
		return nil, err
	}

	return stats, nil
}

// fieldTypeCounts tallies optional field types of delivered submissions,
// most used first.
func (s *Store) fieldTypeCounts(ctx context.Context) ([]FieldTypeCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT field_types FROM submissions WHERE outcome = ? AND field_types != ''`, string(contact.OutcomeSent))
	if err != nil {
		return nil, fmt.Errorf("failed to load field types: %w", err)
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var joined string
		if err := rows.Scan(&joined); err != nil {
			return nil, fmt.Errorf("failed to scan field types: %w", err)
		}
		for _, t := range strings.Split(joined, ",") {
			counts[t]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]FieldTypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, FieldTypeCount{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

// Recent returns the latest records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, locale, outcome, field_types, error, created_at
		FROM submissions
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions: %w", err)
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var sub Submission
		var types, created string
		if err := rows.Scan(&sub.ID, &sub.HashedIP, &sub.Locale, &sub.Outcome, &types, &sub.Error, &created); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		if types != "" {
			sub.FieldTypes = strings.Split(types, ",")
		}
		if sub.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("bad created_at %q: %w", created, err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}
