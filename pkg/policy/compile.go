package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/depgate/depgate/pkg/finding"
	"github.com/depgate/depgate/pkg/ruledoc"
)

const (
	fieldDescription = "description"
	fieldAction      = "action"
)

// Compile compiles every top-level entry of doc into a Rule, in document
// order. Duplicate labels produce independent rules.
func Compile(doc *ruledoc.Map) ([]Rule, error) {
	rules := make([]Rule, 0, doc.Len())
	for _, e := range doc.Entries() {
		r, err := CompileRule(e.Key, e.Value)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// CompileRule compiles one rule body. Errors are *CompileError values
// naming label.
func CompileRule(label string, v ruledoc.Value) (Rule, error) {
	r, err := compileRule(label, v)
	if err != nil {
		var ce *CompileError
		if errors.As(err, &ce) {
			ce.Rule = label
			return Rule{}, ce
		}
		return Rule{}, &CompileError{Rule: label, Path: label, Err: err}
	}
	return r, nil
}

func compileRule(label string, v ruledoc.Value) (Rule, error) {
	body, ok := v.AsMap()
	if !ok {
		return Rule{}, compileErr(label, fmt.Errorf("%w: rule must be a mapping, got %s", ErrInvalidSpec, v.Kind()))
	}

	desc, err := requiredString(body, fieldDescription, label)
	if err != nil {
		return Rule{}, err
	}
	act, err := requiredString(body, fieldAction, label)
	if err != nil {
		return Rule{}, err
	}
	action, err := ParseAction(act)
	if err != nil {
		return Rule{}, compileErr(label+"."+fieldAction, err)
	}

	var filters []Filter
	for _, e := range body.Entries() {
		if e.Key == fieldDescription || e.Key == fieldAction {
			continue
		}
		fs, err := compileKey(e.Key, e.Value, label+"."+e.Key)
		if err != nil {
			return Rule{}, err
		}
		filters = append(filters, fs...)
	}
	return Rule{Label: label, Description: desc, Action: action, filters: filters}, nil
}

func requiredString(m *ruledoc.Map, key, label string) (string, error) {
	v, ok := m.Get(key)
	if !ok || v.IsNull() {
		return "", compileErr(label, fmt.Errorf("%w: %s", ErrMissingField, key))
	}
	s, ok := v.AsString()
	if !ok {
		return "", compileErr(label+"."+key, fmt.Errorf("%w: %s must be a string, got %s", ErrInvalidSpec, key, v.Kind()))
	}
	if strings.TrimSpace(s) == "" {
		return "", compileErr(label, fmt.Errorf("%w: %s", ErrMissingField, key))
	}
	return s, nil
}

// compileKey compiles one filter entry. if yields any number of filters;
// every other kind yields exactly one.
func compileKey(key string, v ruledoc.Value, path string) ([]Filter, error) {
	kind, ok := ParseKind(key)
	if !ok {
		return nil, compileErr(path, fmt.Errorf("%w: %q", ErrUnknownKind, key))
	}

	switch kind {
	case KindIf:
		if v.IsNull() {
			return nil, nil
		}
		m, ok := v.AsMap()
		if !ok {
			return nil, compileErr(path, fmt.Errorf("%w: if must be a mapping, got %s", ErrInvalidSpec, v.Kind()))
		}
		var out []Filter
		for _, e := range m.Entries() {
			fs, err := compileKey(e.Key, e.Value, path+"."+e.Key)
			if err != nil {
				return nil, err
			}
			out = append(out, fs...)
		}
		return out, nil

	case KindAny, KindAll:
		children, err := compileList(kind, v, path)
		if err != nil {
			return nil, err
		}
		if kind == KindAny {
			return []Filter{NewAnyFilter(children...)}, nil
		}
		return []Filter{NewAllFilter(children...)}, nil

	case KindIssue:
		f, err := compileIssue(v, path)
		if err != nil {
			return nil, err
		}
		return []Filter{f}, nil

	case KindRisks:
		f, err := compileRisks(v, path)
		if err != nil {
			return nil, err
		}
		return []Filter{f}, nil

	case KindLicense:
		f, err := compileLicense(v, path)
		if err != nil {
			return nil, err
		}
		return []Filter{f}, nil

	case KindAuthor, KindHealth:
		if !v.IsNull() && v.Kind() != ruledoc.KindMap {
			return nil, compileErr(path, fmt.Errorf("%w: %s must be a mapping, got %s", ErrInvalidSpec, kind, v.Kind()))
		}
		return []Filter{NewPlaceholderFilter(kind)}, nil
	}

	return nil, compileErr(path, fmt.Errorf("%w: %q", ErrUnknownKind, key))
}

func compileList(kind Kind, v ruledoc.Value, path string) ([]Filter, error) {
	items, ok := v.AsList()
	if !ok {
		return nil, compileErr(path, fmt.Errorf("%w: %s must be a list, got %s", ErrInvalidSpec, kind, v.Kind()))
	}
	var out []Filter
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		m, ok := item.AsMap()
		if !ok || m.Len() == 0 {
			return nil, compileErr(itemPath, fmt.Errorf("%w: list entry must be a single-key mapping", ErrInvalidSpec))
		}
		if m.Len() > 1 {
			return nil, compileErr(itemPath, fmt.Errorf("%w: keys %s", ErrAmbiguousEntry, strings.Join(m.Keys(), ", ")))
		}
		e := m.Entries()[0]
		fs, err := compileKey(e.Key, e.Value, itemPath+"."+e.Key)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	}
	return out, nil
}

func compileIssue(v ruledoc.Value, path string) (Filter, error) {
	m, err := specMap(KindIssue, v, path, "tag", "severity")
	if err != nil {
		return nil, err
	}
	tag, err := optString(m, "tag", path)
	if err != nil {
		return nil, err
	}
	sev, err := optSeverity(m, "severity", path)
	if err != nil {
		return nil, err
	}
	return NewIssueFilter(IssueSpec{Tag: tag, Severity: sev}), nil
}

func compileRisks(v ruledoc.Value, path string) (Filter, error) {
	m, ok := v.AsMap()
	if !ok {
		return nil, compileErr(path, fmt.Errorf("%w: risks must be a mapping, got %s", ErrInvalidSpec, v.Kind()))
	}
	entries := make([]RiskEntry, 0, m.Len())
	for _, e := range m.Entries() {
		domPath := path + "." + e.Key
		dom, err := ParseRiskDomain(e.Key)
		if err != nil {
			return nil, compileErr(domPath, err)
		}
		cm, err := specMap(KindRisks, e.Value, domPath, "severity", "tag", "score_threshold")
		if err != nil {
			return nil, err
		}
		var c RiskCriteria
		if c.Severity, err = optSeverity(cm, "severity", domPath); err != nil {
			return nil, err
		}
		if c.Tag, err = optString(cm, "tag", domPath); err != nil {
			return nil, err
		}
		if c.Threshold, err = optNumber(cm, "score_threshold", domPath); err != nil {
			return nil, err
		}
		entries = append(entries, RiskEntry{Domain: dom, Criteria: c})
	}
	f, err := NewRiskFilter(entries...)
	if err != nil {
		return nil, compileErr(path, err)
	}
	return f, nil
}

func compileLicense(v ruledoc.Value, path string) (Filter, error) {
	m, err := specMap(KindLicense, v, path, "is", "not")
	if err != nil {
		return nil, err
	}
	deny, err := optStrings(m, "is", path)
	if err != nil {
		return nil, err
	}
	allow, err := optStrings(m, "not", path)
	if err != nil {
		return nil, err
	}
	return NewLicenseFilter(deny, allow), nil
}

// specMap checks that v is a mapping holding only the allowed keys.
func specMap(kind Kind, v ruledoc.Value, path string, allowed ...string) (*ruledoc.Map, error) {
	m, ok := v.AsMap()
	if !ok {
		return nil, compileErr(path, fmt.Errorf("%w: %s spec must be a mapping, got %s", ErrInvalidSpec, kind, v.Kind()))
	}
	for _, k := range m.Keys() {
		known := false
		for _, a := range allowed {
			if k == a {
				known = true
				break
			}
		}
		if !known {
			return nil, compileErr(path+"."+k, fmt.Errorf("%w: unknown field %q (want %s)", ErrInvalidSpec, k, strings.Join(allowed, ", ")))
		}
	}
	return m, nil
}

func optString(m *ruledoc.Map, key, path string) (string, error) {
	v, ok := m.Get(key)
	if !ok || v.IsNull() {
		return "", nil
	}
	s, ok := v.AsString()
	if !ok {
		return "", compileErr(path+"."+key, fmt.Errorf("%w: %s must be a string, got %s", ErrInvalidSpec, key, v.Kind()))
	}
	return s, nil
}

func optSeverity(m *ruledoc.Map, key, path string) (finding.Severity, error) {
	s, err := optString(m, key, path)
	if err != nil || s == "" {
		return "", err
	}
	sev, err := finding.ParseSeverity(s)
	if err != nil {
		return "", compileErr(path+"."+key, err)
	}
	return sev, nil
}

func optNumber(m *ruledoc.Map, key, path string) (*float64, error) {
	v, ok := m.Get(key)
	if !ok || v.IsNull() {
		return nil, nil
	}
	n, ok := v.AsNumber()
	if !ok {
		return nil, compileErr(path+"."+key, fmt.Errorf("%w: %s must be a number, got %s", ErrInvalidSpec, key, v.Kind()))
	}
	return &n, nil
}

func optStrings(m *ruledoc.Map, key, path string) ([]string, error) {
	v, ok := m.Get(key)
	if !ok || v.IsNull() {
		return nil, nil
	}
	ss, ok := v.AsStrings()
	if !ok {
		return nil, compileErr(path+"."+key, fmt.Errorf("%w: %s must be a list of strings", ErrInvalidSpec, key))
	}
	return ss, nil
}
