// Package finding provides the shared vocabulary for analysis findings:
// issue severities and risk domains.
//
// Both types are lowercase strings matching the wire format of the
// analysis service, so they decode directly from JSON and compare directly
// against values written in rule files.
package finding
