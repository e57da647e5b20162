// Package billstore implements the edit operations on a Bill.
//
// Every operation takes the current bill and returns a new one; inputs are
// never modified, so callers can keep earlier snapshots. Invalid input is not an
// error: the operation logs a warning and returns the bill unchanged, because
// edits come from a live editing session that must not be interrupted.
package billstore

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mmynk/fairshare/internal/models"
)

const (
	// MaxNameLength caps participant names and charge labels, in runes.
	MaxNameLength = 50

	// MaxDescriptionLength caps line item descriptions, in runes.
	MaxDescriptionLength = 200
)

// RejectHook, when set, is called with the operation name each time an edit is
// rejected. The server uses it to count rejections.
var RejectHook func(op string)

func reject(op, reason string, args ...any) {
	slog.Warn("Edit rejected", append([]any{"op", op, "reason", reason}, args...)...)
	if RejectHook != nil {
		RejectHook(op)
	}
}

// sanitize trims s, collapses internal whitespace runs and caps its length.
func sanitize(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:limit]))
}

// newID returns an id with the given prefix that is not in use in b.
func newID(b models.Bill, prefix string) string {
	used := b.IDs()
	for {
		id := prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		if !used[id] && id != models.UnassignedID {
			return id
		}
	}
}

// AddParticipant appends a participant with a fresh id. A blank name gets the
// default "Person n".
func AddParticipant(b models.Bill, name string) models.Bill {
	out := b.Clone()
	name = sanitize(name, MaxNameLength)
	if name == "" {
		name = fmt.Sprintf("Person %d", len(b.Participants)+1)
	}
	out.Participants = append(out.Participants, models.Participant{
		ID:   newID(b, "p"),
		Name: name,
	})
	return out
}

// RenameParticipant changes a participant's display name.
func RenameParticipant(b models.Bill, id, name string) models.Bill {
	name = sanitize(name, MaxNameLength)
	if name == "" {
		reject("rename_participant", "empty name", "participant_id", id)
		return b
	}
	if _, ok := b.Participant(id); !ok {
		reject("rename_participant", "unknown participant", "participant_id", id)
		return b
	}

	out := b.Clone()
	for i := range out.Participants {
		if out.Participants[i].ID == id {
			out.Participants[i].Name = name
		}
	}
	return out
}

// DeleteParticipant removes a participant and every allocation that references
// it. The last remaining participant cannot be deleted.
func DeleteParticipant(b models.Bill, id string) models.Bill {
	if _, ok := b.Participant(id); !ok {
		reject("delete_participant", "unknown participant", "participant_id", id)
		return b
	}
	if len(b.Participants) <= 1 {
		reject("delete_participant", "last participant", "participant_id", id)
		return b
	}

	out := b.Clone()
	out.Participants = out.Participants[:0]
	for _, p := range b.Participants {
		if p.ID != id {
			out.Participants = append(out.Participants, p)
		}
	}
	for i := range out.SplitLogic {
		allocs := out.SplitLogic[i].Allocations[:0]
		for _, a := range out.SplitLogic[i].Allocations {
			if a.ParticipantID != id {
				allocs = append(allocs, a)
			}
		}
		out.SplitLogic[i].Allocations = allocs
	}
	return out
}
