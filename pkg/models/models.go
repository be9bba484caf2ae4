// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package models holds the identifiers, enums and value types shared by the queue,
// membership and settlement packages.
package models

import (
	"fmt"
	"time"

	"github.com/AccelByte/extend-trio-queue/pkg/utils"
)

// GroupSize is the number of participants drafted into every match.
const GroupSize = 3

// ParticipantID is the stable handle of a person.
type ParticipantID string

// SessionID names one deployed queue, i.e. the message hosting its controls.
type SessionID string

// MatchID is the identifier of the channel opened for a formed group.
type MatchID string

// Role is a queue lane.
type Role int

const (
	RoleA Role = iota + 1
	RoleB
	RoleC
)

// Roles lists every lane in display order.
var Roles = []Role{RoleA, RoleB, RoleC}

func (r Role) Valid() bool {
	return r >= RoleA && r <= RoleC
}

// Mode is the formation family a role belongs to.
func (r Role) Mode() Mode {
	if r == RoleA {
		return ModeSymmetric
	}
	return ModeAsymmetric
}

func (r Role) String() string {
	switch r {
	case RoleA:
		return "A"
	case RoleB:
		return "B"
	case RoleC:
		return "C"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// ParseRole maps a lane name ("A", "B", "C") to its Role.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// Mode tags a match with the rule used to settle it.
type Mode int

const (
	ModeSymmetric Mode = iota + 1
	ModeAsymmetric
)

func (m Mode) Valid() bool {
	return m == ModeSymmetric || m == ModeAsymmetric
}

func (m Mode) String() string {
	switch m {
	case ModeSymmetric:
		return "symmetric"
	case ModeAsymmetric:
		return "asymmetric"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "symmetric":
		return ModeSymmetric, nil
	case "asymmetric":
		return ModeAsymmetric, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// Group is a drafted set of participants in positional order.
// For asymmetric groups slots 0 and 1 come from lane B and slot 2 from lane C.
type Group [GroupSize]ParticipantID

// DistinguishedSlot is the slot that receives the asymmetric reward.
const DistinguishedSlot = 2

func (g Group) Contains(id ParticipantID) bool {
	return utils.Contains(g[:], id)
}

// Others returns the members of g except id, keeping slot order.
func (g Group) Others(id ParticipantID) []ParticipantID {
	others := make([]ParticipantID, 0, GroupSize-1)
	for _, member := range g {
		if member != id {
			others = append(others, member)
		}
	}
	return others
}

func (g Group) Strings() []string {
	out := make([]string, 0, GroupSize)
	for _, member := range g {
		out = append(out, string(member))
	}
	return out
}

// Match is a committed group persisted in the membership store until settlement.
type Match struct {
	ID           MatchID
	Participants Group
	Mode         Mode
	FormedAt     time.Time
}

// Draft is a group removed from the queues whose match has not been committed yet.
type Draft struct {
	ID           string
	Session      SessionID
	Participants Group
	Roles        [GroupSize]Role
	Mode         Mode
	DraftedAt    time.Time
}

// Delta is a signed reputation change for one participant.
type Delta struct {
	Participant ParticipantID
	Amount      int
}
