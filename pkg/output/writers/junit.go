package writers

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/depgate/depgate/pkg/defaults"
	"github.com/depgate/depgate/pkg/output"
	"github.com/depgate/depgate/pkg/policy"
)

var _ output.Writer = (*JUnitWriter)(nil)

// JUnitWriter writes one test case per rule, for CI systems that render
// JUnit XML (Jenkins, GitLab CI, GitHub Actions, Azure DevOps).
//
// Mapping:
//   - passing rule → success (no child element)
//   - failing abort or warn rule → <failure>
//   - failing log rule → success with <system-out>
//   - ignore rule → <skipped>
type JUnitWriter struct {
	w    io.Writer
	opts JUnitOptions
}

// JUnitOptions configures the JUnit XML writer.
type JUnitOptions struct {
	// SuiteName is the name of the test suite (default: "depgate").
	SuiteName string

	// Package is the classname prefix (default: "depgate").
	Package string
}

type junitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	TestSuites []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []junitProperty `xml:"properties>property,omitempty"`
	TestCases  []junitTestCase `xml:"testcase"`
}

type junitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type junitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

type junitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// NewJUnitWriter creates a JUnit XML writer that writes to w.
func NewJUnitWriter(w io.Writer, opts JUnitOptions) *JUnitWriter {
	if opts.SuiteName == "" {
		opts.SuiteName = defaults.ToolName
	}
	if opts.Package == "" {
		opts.Package = defaults.ToolName
	}
	return &JUnitWriter{w: w, opts: opts}
}

// Write renders r as a complete JUnit document.
func (jw *JUnitWriter) Write(r *output.Report) error {
	suite := junitTestSuite{
		Name:      jw.opts.SuiteName,
		Time:      r.DurationMs / 1000,
		Timestamp: r.GeneratedAt.Format("2006-01-02T15:04:05"),
		Properties: []junitProperty{
			{Name: "run_id", Value: r.RunID},
			{Name: "version", Value: r.Version},
		},
	}
	if r.Fingerprint != "" {
		suite.Properties = append(suite.Properties, junitProperty{Name: "ruleset_fingerprint", Value: r.Fingerprint})
	}

	for _, a := range r.Verdict.Actions {
		tc := junitTestCase{
			Name:      a.Label,
			ClassName: jw.opts.Package + "." + string(a.Action),
		}
		switch {
		case a.Action == policy.ActionIgnore:
			tc.Skipped = &junitSkipped{Message: a.Description}
			suite.Skipped++
		case a.Pass:
		case a.Action == policy.ActionLog:
			tc.SystemOut = a.Message
		default:
			tc.Failure = &junitFailure{
				Message: a.Description,
				Type:    string(a.Action),
				Content: a.Message,
			}
			suite.Failures++
		}
		suite.TestCases = append(suite.TestCases, tc)
	}
	suite.Tests = len(suite.TestCases)

	doc := junitTestSuites{TestSuites: []junitTestSuite{suite}}
	if _, err := io.WriteString(jw.w, xml.Header); err != nil {
		return fmt.Errorf("writing junit header: %w", err)
	}
	enc := xml.NewEncoder(jw.w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding junit: %w", err)
	}
	_, err := io.WriteString(jw.w, "\n")
	return err
}
