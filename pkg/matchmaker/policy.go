// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"github.com/AccelByte/extend-trio-queue/pkg/models"
)

type FormationPolicy interface {
	Mode() models.Mode
	Ready(q *QueueSet) bool
	// Draft removes the group from q. Only call it after Ready returned true.
	Draft(q *QueueSet) (models.Group, [models.GroupSize]models.Role)
}

// GetFormationPolicy returns the policy of the role's family, we have 2 policies:
// 1) symmetric for lane A, three of a kind,
// 2) asymmetric for lanes B and C, two from B then one from C.
func GetFormationPolicy(role models.Role) FormationPolicy {
	if role.Mode() == models.ModeSymmetric {
		return symmetric{}
	}
	return asymmetric{}
}

type symmetric struct{}

func (symmetric) Mode() models.Mode {
	return models.ModeSymmetric
}

func (symmetric) Ready(q *QueueSet) bool {
	return q.Len(models.RoleA) >= models.GroupSize
}

func (symmetric) Draft(q *QueueSet) (group models.Group, roles [models.GroupSize]models.Role) {
	copy(group[:], q.popFront(models.RoleA, models.GroupSize))
	roles = [models.GroupSize]models.Role{models.RoleA, models.RoleA, models.RoleA}
	return group, roles
}

const (
	asymmetricFromB = 2
	asymmetricFromC = 1
)

type asymmetric struct{}

func (asymmetric) Mode() models.Mode {
	return models.ModeAsymmetric
}

func (asymmetric) Ready(q *QueueSet) bool {
	return q.Len(models.RoleB) >= asymmetricFromB && q.Len(models.RoleC) >= asymmetricFromC
}

// Draft keeps the [B, B, C] order; slot 2 is the distinguished reward slot.
func (asymmetric) Draft(q *QueueSet) (group models.Group, roles [models.GroupSize]models.Role) {
	fromB := q.popFront(models.RoleB, asymmetricFromB)
	fromC := q.popFront(models.RoleC, asymmetricFromC)
	group = models.Group{fromB[0], fromB[1], fromC[0]}
	roles = [models.GroupSize]models.Role{models.RoleB, models.RoleB, models.RoleC}
	return group, roles
}
