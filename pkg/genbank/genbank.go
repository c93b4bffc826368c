// Reader for GenBank flat files (as written by Prokka, NCBI, antiSMASH)

package genbank

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	featureIndent   = "     "                 // feature key starts at column 6
	qualifierIndent = "                     " // qualifiers start at column 22
)

type Feature struct {
	Type       string
	Location   string
	Qualifiers map[string][]string
}

// Values returns every value stored under a qualifier, or nil.
func (f *Feature) Values(name string) []string {
	return f.Qualifiers[name]
}

// Record is one LOCUS ... // block, typically a contig.
type Record struct {
	Locus    string
	Features []*Feature
}

type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("genbank: line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("genbank: %s:%d: %s", e.File, e.Line, e.Msg)
}

type Reader struct {
	name    string
	scanner *bufio.Scanner
	line    int

	// one line of lookahead
	peeked  string
	hasPeek bool
}

// NewReader reads records from r. name is only used in error messages.
func NewReader(r io.Reader, name string) *Reader {
	scanner := bufio.NewScanner(r)
	// translations of large proteins make for long lines
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &Reader{name: name, scanner: scanner}
}

func (r *Reader) errorf(format string, args ...any) error {
	return &ParseError{File: r.name, Line: r.line, Msg: fmt.Sprintf(format, args...)}
}

func (r *Reader) next() (string, bool, error) {
	if r.hasPeek {
		r.hasPeek = false
		return r.peeked, true, nil
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", false, r.errorf("read failed: %v", err)
		}
		return "", false, nil
	}
	r.line++
	return strings.TrimRight(r.scanner.Text(), "\r"), true, nil
}

func (r *Reader) unread(line string) {
	r.peeked = line
	r.hasPeek = true
}

// Read returns the next record, or io.EOF once the input is exhausted.
func (r *Reader) Read() (*Record, error) {

	// Find the LOCUS line. Blank lines and stray "//" terminators are skipped;
	// anything else, including the NCBI release preamble, is rejected.
	var line string
	for {
		l, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, io.EOF
		}
		if t := strings.TrimSpace(l); t == "" || t == "//" {
			continue
		}
		if !strings.HasPrefix(l, "LOCUS") {
			return nil, r.errorf("expected LOCUS line, got %q", truncate(l))
		}
		line = l
		break
	}

	rec := &Record{}
	if fields := strings.Fields(line); len(fields) > 1 {
		rec.Locus = fields[1]
	}

	for {
		l, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, r.errorf("unexpected end of file in record %q", rec.Locus)
		}

		switch {
		case strings.HasPrefix(l, "//"):
			return rec, nil
		case strings.HasPrefix(l, "FEATURES"):
			features, err := r.readFeatures()
			if err != nil {
				return nil, err
			}
			rec.Features = features
		case strings.HasPrefix(l, "LOCUS"):
			return nil, r.errorf("LOCUS %q starts before record %q is terminated", truncate(l), rec.Locus)
		}
		// Everything else (DEFINITION, REFERENCE, ORIGIN, sequence ...) is skipped
	}
}

// ReadAll drains the reader.
func (r *Reader) ReadAll() ([]*Record, error) {
	var records []*Record
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

// featureBuilder accumulates one feature across its continuation lines.
type featureBuilder struct {
	feature *Feature

	qualifier string
	value     strings.Builder
	open      bool // inside a quoted value
	started   bool // a qualifier has been seen, so no more location lines
}

func (b *featureBuilder) flushQualifier() {
	if b.qualifier == "" {
		return
	}
	v := b.value.String()
	if strings.HasPrefix(v, `"`) {
		v = strings.TrimSuffix(strings.TrimPrefix(v, `"`), `"`)
		v = strings.ReplaceAll(v, `""`, `"`)
	}
	b.feature.Qualifiers[b.qualifier] = append(b.feature.Qualifiers[b.qualifier], v)
	b.qualifier = ""
	b.value.Reset()
	b.open = false
}

func (b *featureBuilder) startQualifier(text string) {
	b.flushQualifier()
	b.started = true

	name, value, hasValue := strings.Cut(text, "=")
	b.qualifier = name
	if !hasValue {
		// e.g. /pseudo
		return
	}
	b.value.WriteString(value)
	b.open = strings.HasPrefix(value, `"`) && !quoteClosed(value)
}

// quoteClosed reports whether a value starting with a quote has seen its
// closing quote. Embedded quotes are doubled, so a complete value carries an
// even number of them and ends with one.
func quoteClosed(v string) bool {
	return len(v) >= 2 && strings.HasSuffix(v, `"`) && strings.Count(v, `"`)%2 == 0
}

func (b *featureBuilder) continueValue(text string) {
	// sequence-like qualifiers wrap without spaces
	if b.qualifier != "translation" {
		b.value.WriteString(" ")
	}
	b.value.WriteString(text)
	if v := b.value.String(); strings.HasPrefix(v, `"`) {
		b.open = !quoteClosed(v)
	}
}

func (r *Reader) readFeatures() ([]*Feature, error) {
	var features []*Feature
	var cur *featureBuilder

	finish := func() error {
		if cur == nil {
			return nil
		}
		if cur.open {
			return r.errorf("unterminated value for qualifier /%s", cur.qualifier)
		}
		cur.flushQualifier()
		features = append(features, cur.feature)
		cur = nil
		return nil
	}

	for {
		l, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, r.errorf("unexpected end of file in feature table")
		}

		// Inside a quoted value every line belongs to it
		if cur != nil && cur.open {
			if !strings.HasPrefix(l, qualifierIndent) {
				return nil, r.errorf("unterminated value for qualifier /%s", cur.qualifier)
			}
			cur.continueValue(strings.TrimSpace(l))
			continue
		}

		switch {
		case strings.HasPrefix(l, qualifierIndent):
			if cur == nil {
				return nil, r.errorf("qualifier line outside of a feature")
			}
			text := strings.TrimSpace(l)
			switch {
			case strings.HasPrefix(text, "/"):
				cur.startQualifier(text[1:])
			case !cur.started:
				cur.feature.Location += text
			case cur.qualifier != "":
				cur.continueValue(text)
			default:
				return nil, r.errorf("unexpected continuation line %q", truncate(text))
			}

		case strings.HasPrefix(l, featureIndent) && len(l) > len(featureIndent) && l[len(featureIndent)] != ' ':
			if err := finish(); err != nil {
				return nil, err
			}
			fields := strings.Fields(l)
			if len(fields) < 2 {
				return nil, r.errorf("feature %q has no location", truncate(strings.TrimSpace(l)))
			}
			cur = &featureBuilder{feature: &Feature{
				Type:       fields[0],
				Location:   strings.Join(fields[1:], ""),
				Qualifiers: make(map[string][]string),
			}}

		case strings.TrimSpace(l) == "":
			continue

		case strings.HasPrefix(l, " "):
			return nil, r.errorf("malformed feature table line %q", truncate(l))

		default:
			// ORIGIN, CONTIG, BASE COUNT or // end the table
			if err := finish(); err != nil {
				return nil, err
			}
			r.unread(l)
			return features, nil
		}
	}
}

func truncate(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
