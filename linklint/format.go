package linklint

import (
	"sort"
	"strings"

	"github.com/arjunmahishi/linklint/doctree"
	"github.com/arjunmahishi/linklint/myst"
	"github.com/arjunmahishi/linklint/rst"
)

// Syntax is the markup a source is written in. It selects the patterns
// used to rewrite references.
type Syntax int

const (
	SyntaxRST Syntax = iota
	SyntaxMyST
)

func (s Syntax) String() string {
	switch s {
	case SyntaxRST:
		return "rst"
	case SyntaxMyST:
		return "myst"
	default:
		return "unknown"
	}
}

// Format defines a supported document format.
type Format interface {
	// Name returns the format identifier (e.g., "rst").
	Name() string

	// Extensions returns file extensions for this format (e.g., [".rst"]).
	Extensions() []string

	// Syntax returns the markup syntax of the format.
	Syntax() Syntax

	// Parse parses source into a document tree.
	Parse(source []byte) (*doctree.Node, error)
}

type parserFormat struct {
	name       string
	extensions []string
	syntax     Syntax
	parse      func([]byte) (*doctree.Node, error)
}

func (f parserFormat) Name() string                               { return f.name }
func (f parserFormat) Extensions() []string                       { return f.extensions }
func (f parserFormat) Syntax() Syntax                             { return f.syntax }
func (f parserFormat) Parse(source []byte) (*doctree.Node, error) { return f.parse(source) }

// NewFormat returns a Format backed by parse.
func NewFormat(name string, syntax Syntax, parse func([]byte) (*doctree.Node, error), extensions ...string) Format {
	return parserFormat{name: name, extensions: extensions, syntax: syntax, parse: parse}
}

// Built-in formats.
var (
	RST  = NewFormat("rst", SyntaxRST, rst.Parse, ".rst", ".txt")
	MyST = NewFormat("myst", SyntaxMyST, myst.Parse, ".md")
)

// Registry holds the formats available for linting.
type Registry struct {
	formats map[string]Format
}

// NewRegistry returns a registry holding formats. A later format replaces
// an earlier one of the same name.
func NewRegistry(formats ...Format) *Registry {
	r := &Registry{formats: make(map[string]Format, len(formats))}
	for _, f := range formats {
		r.formats[f.Name()] = f
	}
	return r
}

// DefaultRegistry returns a registry with the built-in formats.
func DefaultRegistry() *Registry {
	return NewRegistry(RST, MyST)
}

// Get returns a format by name, or nil if not found.
func (r *Registry) Get(name string) Format {
	return r.formats[name]
}

// List returns all registered format names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByExtension finds a format by file extension. The match ignores case.
func (r *Registry) ByExtension(ext string) Format {
	ext = strings.ToLower(ext)
	for _, name := range r.List() {
		f := r.formats[name]
		for _, e := range f.Extensions() {
			if e == ext {
				return f
			}
		}
	}
	return nil
}

// Extensions returns every extension claimed by a format, sorted.
func (r *Registry) Extensions() []string {
	var exts []string
	for _, f := range r.formats {
		exts = append(exts, f.Extensions()...)
	}
	sort.Strings(exts)
	return exts
}
