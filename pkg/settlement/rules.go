// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package settlement

import (
	"github.com/AccelByte/extend-trio-queue/pkg/constants"
	"github.com/AccelByte/extend-trio-queue/pkg/models"
	"github.com/AccelByte/extend-trio-queue/pkg/storage"
)

// Rewards are the per-mode settlement amounts.
type Rewards struct {
	Symmetric  int
	Asymmetric int
}

// Deltas returns the non-zero reputation changes for a group settled under mode.
// Symmetric rewards every member, asymmetric rewards only the distinguished slot.
func Deltas(mode models.Mode, group models.Group, rewards Rewards) []models.Delta {
	deltas := make([]models.Delta, 0, models.GroupSize)
	switch mode {
	case models.ModeSymmetric:
		if rewards.Symmetric == 0 {
			return deltas
		}
		for _, member := range group {
			deltas = append(deltas, models.Delta{Participant: member, Amount: rewards.Symmetric})
		}
	case models.ModeAsymmetric:
		if rewards.Asymmetric == 0 {
			return deltas
		}
		deltas = append(deltas, models.Delta{Participant: group[models.DistinguishedSlot], Amount: rewards.Asymmetric})
	}
	return deltas
}

// Rule picks the delta rule for a trigger. Archival follows the recorded mode
// unless archiveRule is ArchiveRuleSymmetric, which rewards every member of
// every archived match.
func Rule(trigger models.Trigger, archiveRule string, rewards Rewards) storage.DeltaRule {
	return func(match models.Match) []models.Delta {
		mode := match.Mode
		if trigger == models.TriggerArchival && archiveRule == constants.ArchiveRuleSymmetric {
			mode = models.ModeSymmetric
		}
		return Deltas(mode, match.Participants, rewards)
	}
}
