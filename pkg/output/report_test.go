package output

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depgate/depgate/pkg/defaults"
	"github.com/depgate/depgate/pkg/policy"
)

func TestNewReport(t *testing.T) {
	v := &policy.Verdict{
		Pass: false,
		Actions: []policy.RuleAction{
			{Label: "a", Action: policy.ActionAbort, Pass: false},
			{Label: "b", Action: policy.ActionWarn, Pass: true},
			{Label: "c", Action: policy.ActionWarn, Pass: false},
		},
	}
	set := &policy.RuleSet{Files: []string{"rules.yaml"}, Fingerprint: "abc"}

	r := NewReport(v, 12, WithRuleSet(set), WithEcosystem("npm"), WithDuration(1500*time.Microsecond))

	_, err := uuid.Parse(r.RunID)
	require.NoError(t, err)
	assert.Equal(t, defaults.ToolName, r.Tool)
	assert.Equal(t, defaults.Version, r.Version)
	assert.Equal(t, []string{"rules.yaml"}, r.RuleFiles)
	assert.Equal(t, "abc", r.Fingerprint)
	assert.Equal(t, "npm", r.Ecosystem)
	assert.Equal(t, 1.5, r.DurationMs)
	assert.Equal(t, Summary{
		Packages: 12,
		Rules:    3,
		Passed:   1,
		Failed:   2,
		ByAction: map[string]int{"abort": 1, "warn": 1},
	}, r.Summary)
	assert.Same(t, v, r.Verdict)
}

func TestNewReport_UniqueRunIDs(t *testing.T) {
	a := NewReport(nil, 0)
	b := NewReport(nil, 0)
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.True(t, a.Verdict.Pass)
	assert.Nil(t, a.Summary.ByAction)
}
