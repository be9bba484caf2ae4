// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package testsetup

import (
	"testing"

	"github.com/AccelByte/extend-trio-queue/pkg/config"
	"github.com/AccelByte/extend-trio-queue/pkg/envelope"
	"github.com/onsi/gomega"
)

// GomegaWithScope bundles what most engine tests need: assertions, a scope and
// a default configuration the test may change freely.
type GomegaWithScope struct {
	TestScope *envelope.Scope
	Config    *config.Config
	*gomega.GomegaWithT
}

func ParallelWithGomega(t *testing.T) GomegaWithScope {
	t.Parallel()
	return WithGomega(t)
}

func WithGomega(t *testing.T) GomegaWithScope {
	return GomegaWithScope{NewTestScope(), config.Default(), gomega.NewGomegaWithT(t)}
}
