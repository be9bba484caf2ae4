// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"gopkg.in/typ.v4/slices"

	"github.com/AccelByte/extend-trio-queue/pkg/models"
)

// QueueSet holds the three FIFO lanes of one session. It is not safe for
// concurrent use; the Registry lock guards it.
type QueueSet struct {
	Lanes map[models.Role][]models.ParticipantID
}

func NewQueueSet() *QueueSet {
	lanes := make(map[models.Role][]models.ParticipantID, len(models.Roles))
	for _, role := range models.Roles {
		lanes[role] = make([]models.ParticipantID, 0, models.GroupSize)
	}
	return &QueueSet{Lanes: lanes}
}

func (q *QueueSet) Len(role models.Role) int {
	return len(q.Lanes[role])
}

// RoleOf returns the lane holding participant.
func (q *QueueSet) RoleOf(participant models.ParticipantID) (models.Role, bool) {
	for _, role := range models.Roles {
		if indexOf(q.Lanes[role], participant) != -1 {
			return role, true
		}
	}
	return 0, false
}

func (q *QueueSet) Contains(participant models.ParticipantID) bool {
	_, ok := q.RoleOf(participant)
	return ok
}

func (q *QueueSet) Push(role models.Role, participant models.ParticipantID) {
	q.Lanes[role] = append(q.Lanes[role], participant)
}

// Remove deletes participant from whichever lane holds it.
func (q *QueueSet) Remove(participant models.ParticipantID) bool {
	role, ok := q.RoleOf(participant)
	if !ok {
		return false
	}
	q.Lanes[role] = slices.Filter(q.Lanes[role], func(id models.ParticipantID) bool {
		return id != participant
	})
	return true
}

// popFront removes and returns the n longest-waiting entries of a lane.
func (q *QueueSet) popFront(role models.Role, n int) []models.ParticipantID {
	lane := q.Lanes[role]
	if n > len(lane) {
		n = len(lane)
	}
	head := make([]models.ParticipantID, n)
	copy(head, lane[:n])
	q.Lanes[role] = append(lane[:0:0], lane[n:]...)
	return head
}

// pushFront puts participants back at the head of a lane, keeping their order.
func (q *QueueSet) pushFront(role models.Role, participants ...models.ParticipantID) {
	if len(participants) == 0 {
		return
	}
	lane := make([]models.ParticipantID, 0, len(participants)+len(q.Lanes[role]))
	lane = append(lane, participants...)
	q.Lanes[role] = append(lane, q.Lanes[role]...)
}

func indexOf(lane []models.ParticipantID, participant models.ParticipantID) int {
	return slices.IndexFunc(lane, func(id models.ParticipantID) bool {
		return id == participant
	})
}
