// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mitchellh/copystructure"

	"github.com/AccelByte/extend-trio-queue/pkg/models"
)

// Registry owns every session's QueueSet plus the system-wide indexes used to
// reject duplicate joins. All fields are guarded by mu except releases.
type Registry struct {
	mu       sync.Mutex
	sessions map[models.SessionID]*QueueSet
	// queued maps a waiting participant to the session whose lane holds it.
	queued map[models.ParticipantID]models.SessionID
	// pending maps a drafted participant to its draft id until the match is
	// committed or the draft abandoned.
	pending map[models.ParticipantID]string
	// forming holds the ids of drafts a Form call has claimed.
	forming map[string]struct{}
	// releases is bumped each time pending entries are dropped, so a join that
	// checked the membership store before the release knows to check again.
	releases atomic.Uint64
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[models.SessionID]*QueueSet),
		queued:   make(map[models.ParticipantID]models.SessionID),
		pending:  make(map[models.ParticipantID]string),
		forming:  make(map[string]struct{}),
	}
}

// queueSetLocked lazily creates the session's QueueSet. Caller holds mu.
func (r *Registry) queueSetLocked(session models.SessionID) *QueueSet {
	q, ok := r.sessions[session]
	if !ok {
		q = NewQueueSet()
		r.sessions[session] = q
	}
	return q
}

func (r *Registry) epoch() uint64 {
	return r.releases.Load()
}

// draftPendingLocked reports whether every member of draft is still pending under its id.
func (r *Registry) draftPendingLocked(draft models.Draft) bool {
	for _, participant := range draft.Participants {
		if id, ok := r.pending[participant]; !ok || id != draft.ID {
			return false
		}
	}
	return true
}

// claimDraftLocked marks draft as being formed. It fails when the draft is no
// longer pending or another caller already holds it.
func (r *Registry) claimDraftLocked(draft models.Draft) bool {
	if _, ok := r.forming[draft.ID]; ok || !r.draftPendingLocked(draft) {
		return false
	}
	r.forming[draft.ID] = struct{}{}
	return true
}

// releaseLocked drops the draft's pending entries and its claim. Only the
// holder of the claim calls it.
func (r *Registry) releaseLocked(draft models.Draft) {
	for _, participant := range draft.Participants {
		delete(r.pending, participant)
	}
	delete(r.forming, draft.ID)
	r.releases.Add(1)
}

// Snapshot returns a deep copy of every session's lanes.
func (r *Registry) Snapshot() (map[models.SessionID]*QueueSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied, err := copystructure.Copy(r.sessions)
	if err != nil {
		return nil, fmt.Errorf("copy queue sets: %w", err)
	}
	return copied.(map[models.SessionID]*QueueSet), nil
}

// SessionOf returns the session a participant is waiting in.
func (r *Registry) SessionOf(participant models.ParticipantID) (models.SessionID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.queued[participant]
	return session, ok
}

// Pending reports whether participant is in a draft that has not been committed yet.
func (r *Registry) Pending(participant models.ParticipantID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.pending[participant]
	return ok
}
