package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/depgate/depgate/pkg/policy"
)

func init() {
	SetNoColor(true)
}

func TestPrintVerdict_Pass(t *testing.T) {
	var buf bytes.Buffer
	PrintVerdict(&buf, &policy.Verdict{Pass: true})
	assert.Equal(t, "[depgate] All Packages Pass Policy.\n", buf.String())
}

func TestPrintVerdict_Fail(t *testing.T) {
	v := &policy.Verdict{
		Pass: false,
		Actions: []policy.RuleAction{
			{Pass: false, Label: "block-gpl", Description: "no gpl", Action: policy.ActionAbort, Message: "m1\nm2"},
			{Pass: true, Label: "fine", Description: "ok", Action: policy.ActionAbort},
			{Pass: false, Label: "stale", Description: "old", Action: policy.ActionWarn, Message: "w"},
			{Pass: false, Label: "note", Description: "fyi", Action: policy.ActionLog, Message: "l"},
			{Pass: false, Label: "muted", Description: "shh", Action: policy.ActionIgnore, Message: "i"},
		},
	}

	var buf bytes.Buffer
	PrintVerdict(&buf, v)
	assert.Equal(t, `---------
[depgate] FAIL > block-gpl: no gpl
m1
m2
---------
[depgate] WARN > stale: old
w
---------
[depgate] LOG > note: fyi
l
---------
`, buf.String())
}

func TestPrintVerdict_SilentSkipsLog(t *testing.T) {
	SetSilent(true)
	defer SetSilent(false)

	var buf bytes.Buffer
	PrintVerdict(&buf, &policy.Verdict{Actions: []policy.RuleAction{
		{Label: "note", Description: "fyi", Action: policy.ActionLog, Message: "l"},
	}})
	assert.NotContains(t, buf.String(), "note")
	assert.Empty(t, buf.String())
	assert.True(t, IsSilent())
}

func TestPrintVerdict_NoBlocksNoSeparator(t *testing.T) {
	var buf bytes.Buffer
	PrintVerdict(&buf, &policy.Verdict{Actions: []policy.RuleAction{
		{Label: "muted", Description: "shh", Action: policy.ActionIgnore, Message: "i"},
	}})
	assert.Empty(t, buf.String())
}

func TestPrintRules(t *testing.T) {
	r, err := policy.NewRule("block-gpl", "no gpl", policy.ActionAbort, policy.NewLicenseFilter([]string{"GPL-3.0"}, nil))
	assert.NoError(t, err)

	var buf bytes.Buffer
	PrintRules(&buf, &policy.RuleSet{Rules: []policy.Rule{r}, Files: []string{"a.yaml"}, Fingerprint: "ff"})

	out := buf.String()
	assert.Contains(t, out, "1 rules from 1 files (ff)")
	assert.Contains(t, out, "abort  block-gpl: no gpl [1 filters]")
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, errors.New("boom"))
	assert.Equal(t, "[depgate] Error: boom\n", buf.String())
}

func TestNoColor(t *testing.T) {
	assert.True(t, IsNoColor())
	assert.Equal(t, "x", FailStyle.Render("x"))
}

func TestWidthHasFallback(t *testing.T) {
	assert.Positive(t, Width())
}
