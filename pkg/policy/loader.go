package policy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spaolacci/murmur3"

	"github.com/depgate/depgate/pkg/iohelper"
	"github.com/depgate/depgate/pkg/ruledoc"
)

// Format is the text encoding of a rule document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks a format from a file extension. Anything but .json is YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// RuleSet is the compiled content of a rules directory.
type RuleSet struct {
	Rules []Rule

	// Files are the base names of the loaded files, in load order.
	Files []string

	// Fingerprint is a murmur3 digest of the file names and contents.
	Fingerprint string
}

// Parse decodes and compiles one rule document.
// Decoding failures are ErrInvalidRuleFile; compile failures are *CompileError.
func Parse(data []byte, format Format) ([]Rule, error) {
	var (
		doc *ruledoc.Map
		err error
	)
	switch format {
	case FormatJSON:
		doc, err = ruledoc.FromJSON(data)
	case FormatYAML, "":
		doc, err = ruledoc.FromYAML(data)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidRuleFile, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRuleFile, err)
	}
	return Compile(doc)
}

// LoadFile reads, decodes and compiles one rule file.
// Returns ErrRulesNotFound if the file doesn't exist.
func LoadFile(path string) ([]Rule, error) {
	data, err := iohelper.ReadFile(path, iohelper.MaxRuleFileSize)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRulesNotFound, path)
		}
		return nil, fmt.Errorf("reading rule file: %w", err)
	}
	rules, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// LoadDir loads every regular file in dir, in name order, and concatenates
// their rules. Subdirectories and dot-files are skipped.
func LoadDir(dir string) (*RuleSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRulesNotFound, dir)
		}
		return nil, fmt.Errorf("reading rules directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	set := &RuleSet{}
	h := murmur3.New128()
	for _, ent := range entries {
		name := ent.Name()
		if !ent.Type().IsRegular() || strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := iohelper.ReadFile(path, iohelper.MaxRuleFileSize)
		if err != nil {
			return nil, fmt.Errorf("reading rule file: %w", err)
		}
		rules, err := Parse(data, FormatOf(name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		_, _ = h.Write([]byte(name))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write(data)
		_, _ = h.Write([]byte{0})

		set.Rules = append(set.Rules, rules...)
		set.Files = append(set.Files, name)
	}
	hi, lo := h.Sum128()
	set.Fingerprint = fmt.Sprintf("%016x%016x", hi, lo)
	return set, nil
}
