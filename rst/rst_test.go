package rst

import (
	"fmt"
	"strings"
	"testing"

	"github.com/arjunmahishi/linklint/doctree"
	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/require"
)

func TestDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			switch d.Cmd {
			case "tree":
				doc, err := Parse([]byte(d.Input))
				if err != nil {
					return fmt.Sprintf("error: %s", err)
				}
				return doc.String()
			default:
				t.Fatalf("unknown command: %s", d.Cmd)
				return ""
			}
		})
	})
}

// refs lists the cross-references of doc as "role:target@line".
func refs(doc *doctree.Node) []string {
	var out []string
	for n := range doc.FindAll(doctree.KindPendingXref) {
		out = append(out, fmt.Sprintf("%s:%s@%d", n.Get(doctree.AttrRefType), n.Get(doctree.AttrRefTarget), n.Line))
	}
	return out
}

// lines joins source lines, each ending in a newline.
func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

func mustParse(t *testing.T, src string) *doctree.Node {
	t.Helper()
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func TestParseInline(t *testing.T) {
	nodes := ParseInline("A :mod:`os`, ``x :mod:`y` z``, *em*, **strong**, `site <https://example.com>`_ and \\*stars\\*.", 4)

	var kinds []string
	for _, n := range nodes {
		kinds = append(kinds, n.Kind)
	}
	require.Equal(t, []string{
		doctree.KindText, doctree.KindPendingXref,
		doctree.KindText, doctree.KindLiteral,
		doctree.KindText, doctree.KindEmphasis,
		doctree.KindText, doctree.KindStrong,
		doctree.KindText, doctree.KindReference,
		doctree.KindText,
	}, kinds)
	require.Equal(t, "x :mod:`y` z", nodes[3].AsText())
	require.Equal(t, "https://example.com", nodes[9].Get(doctree.AttrRefURI))
	require.Equal(t, " and *stars*.", nodes[10].Text)
}

func TestParseInlineNotMarkup(t *testing.T) {
	for _, text := range []string{
		"2 * 3 * 4",
		"a*b*c",
		"Note: this :is not a role",
		"unterminated :mod:`os",
	} {
		nodes := ParseInline(text, 1)
		require.Len(t, nodes, 1, text)
		require.True(t, nodes[0].IsText(), text)
	}
}

func TestLinesAfterMultilineTargets(t *testing.T) {
	doc := mustParse(t, lines(
		".. function:: fwalk(top)",
		"",
		"   This function supports :ref:`paths relative to directory descriptors",
		"   <dir_fd>` and :ref:`not following symlinks <follow_symlinks>`.  Note however",
		"   that, unlike other functions, the :func:`fwalk` default value for",
		"   can result in a `significant loss of precision",
		"   <https://en.wikipedia.org/wiki/Loss_of_significance>`_; the :func:`fwalk`",
		"   function.",
	))
	require.Equal(t, []string{
		"ref:dir_fd@3",
		"ref:follow_symlinks@4",
		"func:fwalk@5",
		"func:fwalk@7",
	}, refs(doc))
}

func TestSections(t *testing.T) {
	doc := mustParse(t, lines(
		"*****",
		"Title",
		"*****",
		"",
		"Sub",
		"===",
		"",
		"Text.",
		"",
		"*****",
		"Other",
		"*****",
	))
	require.Len(t, doc.Children, 2)
	title := doc.Children[0]
	require.Equal(t, doctree.KindSection, title.Kind)
	require.Equal(t, 3, title.Line, "overline titles are on the second line")
	require.Equal(t, "title", title.Get(doctree.AttrIDs))
	require.Equal(t, doctree.KindSection, title.Children[1].Kind)
	require.Equal(t, "other", doc.Children[1].Get(doctree.AttrIDs))
}

func TestShortUnderline(t *testing.T) {
	doc := mustParse(t, "A long title\n::\n")
	require.Equal(t, doctree.KindParagraph, doc.Children[0].Kind)

	doc = mustParse(t, "A long title\n----\n")
	require.Equal(t, doctree.KindSection, doc.Children[0].Kind)
}

func TestDirectiveArguments(t *testing.T) {
	doc := mustParse(t, lines(
		".. class:: ZipFile(file)",
		"",
		"   Open a file or a :term:`path-like object`.",
		"",
		"   .. versionchanged:: 3.2",
		"      Added :class:`ZipFile` support.",
		"      Also other things.",
		"",
		"   .. note::",
		"      Added :class:`ZipFile` support.",
		"",
		"   .. deprecated:: 3.8",
		"",
		"       Use :class:`ZipFile` instead.",
	))
	require.Equal(t, []string{
		"term:path-like object@3",
		"class:ZipFile@6",
		"class:ZipFile@10",
		"class:ZipFile@14",
	}, refs(doc))

	var versions []string
	for n := range doc.FindAll(doctree.KindVersionModified) {
		versions = append(versions, n.Get(doctree.AttrType)+" "+n.Get(doctree.AttrVersion))
	}
	require.Equal(t, []string{"versionchanged 3.2", "deprecated 3.8"}, versions)
}

func TestDirectiveOptions(t *testing.T) {
	doc := mustParse(t, lines(
		".. module:: html.parser",
		"   :synopsis: A simple parser.",
		"",
		".. class:: HTMLParser(*, convert_charrefs=True)",
		"   :noindex:",
		"",
		"   An :class:`.HTMLParser` instance.",
	))
	sig := doc.Children[1].Children[0]
	require.Equal(t, doctree.KindDescSignature, sig.Kind)
	require.Equal(t, "HTMLParser", sig.Get(doctree.AttrFullName))
	require.Equal(t, "html.parser", sig.Get(doctree.AttrModule))
	require.Equal(t, []string{"class:HTMLParser@7"}, refs(doc))
}

func TestOpaqueDirectives(t *testing.T) {
	doc := mustParse(t, lines(
		".. toctree::",
		"   :maxdepth: 2",
		"",
		"   :mod:`not-a-ref`",
		"",
		".. code-block:: python",
		"",
		"   x = 1",
		"",
		">>> :mod:`nope`",
	))
	require.Empty(t, refs(doc))
	require.Equal(t, doctree.KindComment, doc.Children[0].Kind)
	require.Equal(t, doctree.KindLiteralBlock, doc.Children[1].Kind)
	require.Equal(t, 8, doc.Children[1].Line)
	require.Equal(t, "x = 1", doc.Children[1].AsText())
}

func TestDefinitionList(t *testing.T) {
	doc := mustParse(t, lines(
		"term one",
		"   Definition with :mod:`a`.",
		"",
		"term two",
		"   Another :mod:`b`.",
	))
	require.Equal(t, doctree.KindDefinitionList, doc.Children[0].Kind)
	require.Len(t, doc.Children[0].Children, 2)
	require.Equal(t, []string{"mod:a@2", "mod:b@5"}, refs(doc))
}

func TestExplicitTargets(t *testing.T) {
	doc := mustParse(t, lines(
		".. _module-xyzzy:",
		"",
		"About Xyzzy",
		"-----------",
		"",
		".. _python: https://www.python.org",
		"",
		"See :mod:`xyzzy`.",
	))
	section := doc.Children[0]
	require.Equal(t, []string{"about-xyzzy", "module-xyzzy"}, section.List(doctree.AttrIDs))
	require.True(t, section.Has(doctree.AttrNames, "module-xyzzy"))

	external := section.Children[1]
	require.Equal(t, doctree.KindTarget, external.Kind)
	require.Equal(t, "https://www.python.org", external.Get(doctree.AttrRefURI))
}

func TestTabsAndCRLF(t *testing.T) {
	doc := mustParse(t, "Title\r\n=====\r\n\r\n- item :mod:`a`\r\n\tcontinued :mod:`b`\r\n")
	require.Equal(t, []string{"mod:a@4"}, refs(doc)[:1])
	require.Len(t, refs(doc), 2)
}

func TestInvalidEncoding(t *testing.T) {
	_, err := Parse([]byte{0xff, 0xfe})
	require.ErrorIs(t, err, ErrInvalidEncoding)
}
