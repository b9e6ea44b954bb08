package myst

import (
	"fmt"
	"slices"
	"testing"

	"github.com/arjunmahishi/linklint/doctree"
	"github.com/stretchr/testify/require"
)

func refs(doc *doctree.Node) []string {
	var out []string
	for n := range doc.FindAll(doctree.KindPendingXref) {
		out = append(out, fmt.Sprintf("%s:%s@%d", n.Get(doctree.AttrRefType), n.Get(doctree.AttrRefTarget), n.Line))
	}
	return out
}

func mustParse(t *testing.T, src string) *doctree.Node {
	t.Helper()
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func TestParseInline(t *testing.T) {
	nodes := ParseInline("See {py:func}`os.walk`, `code {mod}`, [docs](https://docs.python.org \"t\") and \\{mod}`x`.", 2)

	var kinds []string
	for _, n := range nodes {
		kinds = append(kinds, n.Kind)
	}
	require.Equal(t, []string{
		doctree.KindText, doctree.KindPendingXref,
		doctree.KindText, doctree.KindLiteral,
		doctree.KindText, doctree.KindReference,
		doctree.KindText, doctree.KindLiteral,
		doctree.KindText,
	}, kinds)
	require.Equal(t, "os.walk", nodes[1].Get(doctree.AttrRefTarget))
	require.Equal(t, "code {mod}", nodes[3].AsText())
	require.Equal(t, "https://docs.python.org", nodes[5].Get(doctree.AttrRefURI))
	require.Equal(t, " and {mod}", nodes[6].Text)
}

func TestParseInlineUnmatched(t *testing.T) {
	nodes := ParseInline("a ``b` c {mod} d", 1)
	require.Len(t, nodes, 1)
	require.Equal(t, "a ``b` c {mod} d", nodes[0].Text)
}

func TestModuleHeading(t *testing.T) {
	doc := mustParse(t, "# The `mymodule` module\n\n```{module} mymodule\n```\n\nSee {func}`spam`.\n\n## Functions\n\nMore.\n")
	section := doc.Children[0]
	require.Equal(t, doctree.KindSection, section.Kind)
	require.Equal(t, 2, section.Line)
	require.True(t, section.Has(doctree.AttrIDs, "module-mymodule"))
	require.Equal(t, []string{"func:spam@6"}, refs(doc))

	sub := section.Children[len(section.Children)-1]
	require.Equal(t, doctree.KindSection, sub.Kind)
	require.Equal(t, 9, sub.Line)
}

func TestSetextHeading(t *testing.T) {
	doc := mustParse(t, "Title\n=====\n\nSub\n---\n\nText.\n")
	require.Len(t, doc.Children, 1)
	require.Equal(t, "title", doc.Children[0].Get(doctree.AttrIDs))
	require.Equal(t, doctree.KindSection, doc.Children[0].Children[1].Kind)
}

func TestDirectiveContentLines(t *testing.T) {
	doc := mustParse(t, "```{function} spam(a, b)\n:noindex:\n\nCalls {func}`eggs`\nand {mod}`os`.\n```\n\n~~~{note} Also {class}`Foo`.\n~~~\n")
	require.Equal(t, []string{"func:eggs@4", "mod:os@5", "class:Foo@8"}, refs(doc))

	desc := doc.Children[0]
	require.Equal(t, doctree.KindDesc, desc.Kind)
	require.Equal(t, "spam", desc.Children[0].Get(doctree.AttrFullName))
	require.Equal(t, 1, desc.Children[0].Line)
}

func TestNestedDirectives(t *testing.T) {
	doc := mustParse(t, "````{class} Foo\n\n```{method} bar()\n\nUses {meth}`baz`.\n```\n````\n")
	var names []string
	for sig := range doc.FindAll(doctree.KindDescSignature) {
		names = append(names, sig.Get(doctree.AttrFullName))
	}
	require.Equal(t, []string{"Foo", "Foo.bar"}, names)
	require.Equal(t, []string{"meth:baz@5"}, refs(doc))
}

func TestNoFinalNewline(t *testing.T) {
	src := "````{class} Foo\n\n```{method} bar()\nUses {meth}`baz`.\n```\n````"
	doc := mustParse(t, src)
	require.Empty(t, slices.Collect(doc.FindAll(doctree.KindLiteralBlock)))
	require.Equal(t, mustParse(t, src+"\n").String(), doc.String())
	for n := range doc.All() {
		require.LessOrEqual(t, n.Line, 6, n.Kind)
	}
}

func TestTargets(t *testing.T) {
	doc := mustParse(t, "(module-xyzzy)=\n# About xyzzy\n\nText.\n")
	section := doc.Children[0]
	require.True(t, section.Has(doctree.AttrIDs, "module-xyzzy"))
	require.True(t, section.Has(doctree.AttrNames, "module-xyzzy"))
}

func TestLiteralFences(t *testing.T) {
	doc := mustParse(t, "```python\n{mod}`os`\n```\n\n    {mod}`indented`\n\n```{code-block} python\n{mod}`sys`\n```\n")
	require.Empty(t, refs(doc))
	for _, n := range doc.Children {
		require.Equal(t, doctree.KindLiteralBlock, n.Kind)
	}
}

func TestFrontMatter(t *testing.T) {
	doc := mustParse(t, "---\ntitle: x\n---\n\nSee {mod}`os`.\n")
	require.Equal(t, []string{"mod:os@5"}, refs(doc))
	require.Len(t, doc.Children, 1)
}

func TestBlankFrontMatter(t *testing.T) {
	require.Equal(t, "\n\n\nbody\n", string(blankFrontMatter([]byte("---\na: b\n---\nbody\n"))))
	require.Equal(t, "---\nbody\n", string(blankFrontMatter([]byte("---\nbody\n"))))
}

func TestInvalidEncoding(t *testing.T) {
	_, err := Parse([]byte{0xff})
	require.ErrorIs(t, err, ErrInvalidEncoding)
}
