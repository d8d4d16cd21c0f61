// Package dict holds the character dictionary used to mark characters in a text.
package dict

import (
	"bufio"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/f3rmion/suiwen/internal/hanzi"
	"github.com/f3rmion/suiwen/internal/pinyin"
	"gopkg.in/yaml.v3"
)

//go:embed data/builtin.yaml
var builtinTable []byte

// Dictionary maps a single character to its entry. A Dictionary is never
// modified after construction and is safe for concurrent readers.
type Dictionary struct {
	entries map[string]*hanzi.DictionaryEntry
	order   []string
	runes   map[rune]struct{}
	notes   []FieldError
}

// Builtin returns the dictionary bundled with the binary.
func Builtin() (*Dictionary, error) {
	return Load()
}

// Load builds the dictionary from the bundled table followed by the given
// extra files. Entries in later files replace earlier ones with the same
// character. Every entry is validated; any invalid entry fails the load.
func Load(extraPaths ...string) (*Dictionary, error) {
	b := newBuilder()

	records, err := parseYAML(builtinTable)
	if err != nil {
		return nil, fmt.Errorf("parsing builtin table: %w", err)
	}
	b.addAll("builtin", records)

	for _, path := range extraPaths {
		records, err := readFile(path)
		if err != nil {
			return nil, err
		}
		b.addAll(filepath.Base(path), records)
	}

	return b.build()
}

// New builds a dictionary from entries already in canonical form.
func New(entries ...hanzi.DictionaryEntry) (*Dictionary, error) {
	b := newBuilder()
	for i, e := range entries {
		b.add(fmt.Sprintf("entry %d", i+1), e)
	}
	return b.build()
}

// Lookup returns the entry for a character, or nil when it is not a key.
// The returned entry must not be modified.
func (d *Dictionary) Lookup(char string) *hanzi.DictionaryEntry {
	return d.entries[char]
}

// Has reports whether char is a dictionary key.
func (d *Dictionary) Has(char string) bool {
	_, ok := d.entries[char]
	return ok
}

// HasRune reports whether the single code point r is a dictionary key.
func (d *Dictionary) HasRune(r rune) bool {
	_, ok := d.runes[r]
	return ok
}

// Size returns the number of entries in the dictionary.
func (d *Dictionary) Size() int {
	return len(d.entries)
}

// Characters returns all keys ordered by level, then by code point.
func (d *Dictionary) Characters() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// ByLevel returns the keys of the given level in Characters order.
func (d *Dictionary) ByLevel(level hanzi.Level) []string {
	var out []string
	for _, c := range d.order {
		if d.entries[c].Level == level {
			out = append(out, c)
		}
	}
	return out
}

// Entries returns every entry in Characters order.
func (d *Dictionary) Entries() []*hanzi.DictionaryEntry {
	out := make([]*hanzi.DictionaryEntry, len(d.order))
	for i, c := range d.order {
		out[i] = d.entries[c]
	}
	return out
}

// Warnings lists entries that loaded but whose reading is not one the
// reading table knows for the character.
func (d *Dictionary) Warnings() []FieldError {
	return d.notes
}

// builder accumulates entries, their validation errors and warnings.
type builder struct {
	entries map[string]*hanzi.DictionaryEntry
	errs    []FieldError
	notes   map[string]FieldError
	parser  *pinyin.Parser
}

func newBuilder() *builder {
	return &builder{
		entries: make(map[string]*hanzi.DictionaryEntry),
		notes:   make(map[string]FieldError),
		parser:  pinyin.NewParser(),
	}
}

func (b *builder) addAll(source string, records []sourcedRecord) {
	for _, r := range records {
		if r.err != nil {
			b.errs = append(b.errs, FieldError{
				Source:  fmt.Sprintf("%s:%d", source, r.line),
				Field:   "json",
				Message: r.err.Error(),
			})
			continue
		}
		b.add(fmt.Sprintf("%s:%d", source, r.line), r.rec.toEntry())
	}
}

func (b *builder) add(source string, e hanzi.DictionaryEntry) {
	if e.Pinyin == "" {
		// Entries added by hand may leave the reading to the reading table.
		e.Pinyin = b.parser.Primary(e.Character)
	}
	if e.StrokeCount == 0 {
		e.StrokeCount = len(e.Strokes)
	}

	errs := validate(e)
	if len(errs) > 0 {
		for _, fe := range errs {
			fe.Source = source
			b.errs = append(b.errs, fe)
		}
		return
	}

	delete(b.notes, e.Character)
	if reading := strings.ToLower(strings.TrimSpace(e.Pinyin)); !b.parser.HasReading(e.Character, reading) {
		b.notes[e.Character] = FieldError{
			Source:    source,
			Character: e.Character,
			Field:     "pinyin",
			Message:   fmt.Sprintf("%q is not a known reading (%s)", e.Pinyin, strings.Join(b.parser.Readings(e.Character), ", ")),
		}
	}

	entry := e
	b.entries[e.Character] = &entry
}

func (b *builder) build() (*Dictionary, error) {
	if len(b.errs) > 0 {
		return nil, &ValidationError{Errors: b.errs}
	}

	d := &Dictionary{
		entries: b.entries,
		order:   make([]string, 0, len(b.entries)),
		runes:   make(map[rune]struct{}, len(b.entries)),
	}
	for c := range b.entries {
		d.order = append(d.order, c)
		r, _ := utf8.DecodeRuneInString(c)
		d.runes[r] = struct{}{}
	}
	sort.Slice(d.order, func(i, j int) bool {
		a, c := d.entries[d.order[i]], d.entries[d.order[j]]
		if a.Level != c.Level {
			return a.Level < c.Level
		}
		return d.order[i] < d.order[j]
	})
	for _, c := range d.order {
		if n, ok := b.notes[c]; ok {
			d.notes = append(d.notes, n)
		}
	}

	return d, nil
}

// validate checks the required fields of a canonical entry.
func validate(e hanzi.DictionaryEntry) []FieldError {
	var errs []FieldError
	fail := func(field, msg string) {
		errs = append(errs, FieldError{Character: e.Character, Field: field, Message: msg})
	}

	if utf8.RuneCountInString(e.Character) != 1 || !utf8.ValidString(e.Character) {
		fail("character", "must be exactly one character")
	}
	if strings.TrimSpace(e.Pinyin) == "" {
		fail("pinyin", "required")
	}
	if strings.TrimSpace(e.Meaning) == "" {
		fail("meaning", "required")
	}
	if len(e.Strokes) == 0 {
		fail("strokes", "at least one stroke required")
	}
	for i, s := range e.Strokes {
		if strings.TrimSpace(s) == "" {
			fail("strokes", fmt.Sprintf("stroke %d is empty", i+1))
		}
	}
	if !e.Level.Valid() {
		fail("level", fmt.Sprintf("must be 1, 2 or 3, got %d", e.Level))
	}
	if !e.Difficulty.Valid() {
		fail("difficulty", fmt.Sprintf("unknown difficulty %q", e.Difficulty))
	}

	return errs
}

// readFile loads records from a JSONL (.jsonl, .json) or YAML (.yaml, .yml) file.
func readFile(path string) ([]sourcedRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading dictionary file: %w", err)
		}
		records, err := parseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return records, nil
	case ".jsonl", ".json":
		return readJSONL(path)
	default:
		return nil, fmt.Errorf("unsupported dictionary file %s: want .jsonl or .yaml", path)
	}
}

// readJSONL reads one JSON entry per line. Blank lines are skipped.
func readJSONL(path string) ([]sourcedRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dictionary file: %w", err)
	}
	defer file.Close()

	var records []sourcedRecord
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			records = append(records, sourcedRecord{line: lineNum, err: err})
			continue
		}
		records = append(records, sourcedRecord{line: lineNum, rec: rec})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dictionary file: %w", err)
	}

	return records, nil
}

func parseYAML(data []byte) ([]sourcedRecord, error) {
	var table struct {
		Version int      `yaml:"version"`
		Entries []record `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, err
	}

	records := make([]sourcedRecord, len(table.Entries))
	for i, rec := range table.Entries {
		records[i] = sourcedRecord{line: i + 1, rec: rec}
	}
	return records, nil
}
