// Package markup turns reStructuredText and MyST syntax events into a
// Sphinx-shaped document tree.
//
// The front ends (packages rst and myst) only know their own syntax. Role
// processing, Python signature parsing, the directive table and the tree
// building rules live here so both produce the same tree for the same
// document.
package markup

import (
	"strings"

	"github.com/arjunmahishi/linklint/doctree"
)

// Domains.
const (
	DomainPy  = "py"
	DomainStd = "std"
)

// pyRoles are the Python domain roles. Their reftype is the role name.
var pyRoles = map[string]bool{
	"mod":   true,
	"func":  true,
	"data":  true,
	"const": true,
	"class": true,
	"meth":  true,
	"attr":  true,
	"exc":   true,
	"obj":   true,
	"type":  true,
	"deco":  true,
}

var stdRoles = map[string]bool{
	"ref":      true,
	"term":     true,
	"doc":      true,
	"envvar":   true,
	"option":   true,
	"keyword":  true,
	"token":    true,
	"numref":   true,
	"download": true,
	"program":  true,
	"any":      true,
}

// inlineRoles map formatting roles to the node kind they produce.
var inlineRoles = map[string]string{
	"emphasis":      doctree.KindEmphasis,
	"strong":        doctree.KindStrong,
	"literal":       doctree.KindLiteral,
	"code":          doctree.KindLiteral,
	"samp":          doctree.KindLiteral,
	"file":          doctree.KindLiteral,
	"kbd":           doctree.KindLiteral,
	"makevar":       doctree.KindLiteral,
	"mailheader":    doctree.KindEmphasis,
	"dfn":           doctree.KindEmphasis,
	"command":       doctree.KindStrong,
	"title":         doctree.KindTitleReference,
	"abbr":          doctree.KindInline,
	"guilabel":      doctree.KindInline,
	"menuselection": doctree.KindInline,
	"math":          doctree.KindInline,
	"sub":           doctree.KindInline,
	"sup":           doctree.KindInline,
}

// SplitRole splits a possibly domain-qualified role such as "py:meth" into
// its domain and name. Unqualified roles return an empty domain.
func SplitRole(role string) (domain, name string) {
	if i := strings.LastIndexByte(role, ':'); i >= 0 {
		return role[:i], role[i+1:]
	}
	return "", role
}

// Role builds the node for interpreted text :role:`content` found on line.
func Role(role, content string, line int) *doctree.Node {
	domain, name := SplitRole(role)
	switch {
	case domain == "" && pyRoles[name], domain == DomainPy:
		return crossReference(DomainPy, name, content, line)
	case domain == "" && stdRoles[name], domain == DomainStd:
		return crossReference(DomainStd, name, content, line)
	case domain != "":
		return crossReference(domain, name, content, line)
	case name == "rfc" || name == "pep":
		return pepReference(name, content, line)
	}
	if kind, ok := inlineRoles[name]; ok {
		return doctree.NewElement(kind, line, doctree.NewText(Unescape(content))).
			Set(doctree.AttrClasses, name)
	}
	return doctree.NewElement(doctree.KindInline, line, doctree.NewText(Unescape(content))).
		Set(doctree.AttrClasses, name)
}

func crossReference(domain, reftype, content string, line int) *doctree.Node {
	classes := []string{"xref", domain, domain + "-" + reftype}
	inner := doctree.KindLiteral
	if domain == DomainStd {
		inner = doctree.KindInline
	}

	// A leading "!" suppresses the link and keeps only the label.
	if strings.HasPrefix(content, "!") {
		return doctree.NewElement(inner, line, doctree.NewText(Unescape(content[1:]))).
			Set(doctree.AttrClasses, classes...)
	}

	title, target, explicit := SplitExplicitTitle(content)
	title, target = Unescape(title), Unescape(target)

	ref := doctree.NewElement(doctree.KindPendingXref, line)
	if domain == DomainPy {
		if !explicit {
			title = strings.TrimLeft(title, ".")
			target = strings.TrimLeft(target, "~")
			if strings.HasPrefix(title, "~") {
				title = title[1:]
				if dot := strings.LastIndexByte(title, '.'); dot >= 0 {
					title = title[dot+1:]
				}
			}
		}
		if strings.HasPrefix(target, ".") {
			target = target[1:]
			ref.Set(doctree.AttrRefSpecific, "true")
		}
	}
	ref.Set(doctree.AttrRefDomain, domain).
		Set(doctree.AttrRefType, reftype).
		Set(doctree.AttrRefTarget, target)
	if explicit {
		ref.Set(doctree.AttrRefExplicit, "true")
	}
	ref.Append(doctree.NewElement(inner, line, doctree.NewText(title)).Set(doctree.AttrClasses, classes...))
	return ref
}

func pepReference(name, content string, line int) *doctree.Node {
	title, target, explicit := SplitExplicitTitle(content)
	num, anchor, _ := strings.Cut(target, "#")
	var uri string
	if name == "rfc" {
		uri = "https://datatracker.ietf.org/doc/html/rfc" + num
		if !explicit {
			title = "RFC " + num
		}
	} else {
		uri = "https://peps.python.org/pep-" + strings.Repeat("0", max(0, 4-len(num))) + num + "/"
		if !explicit {
			title = "PEP " + num
		}
	}
	if anchor != "" {
		uri += "#" + anchor
	}
	return doctree.NewElement(doctree.KindReference, line, doctree.NewText(Unescape(title))).
		Set(doctree.AttrRefURI, uri)
}

// SplitExplicitTitle splits "title <target>" into its parts. The title keeps
// its whitespace, including any newline before the target, so that newline
// counting over the tree stays aligned with the source. Without an explicit
// title both results are content.
func SplitExplicitTitle(content string) (title, target string, explicit bool) {
	if !strings.HasSuffix(content, ">") {
		return content, content, false
	}
	i := strings.LastIndexByte(content, '<')
	if i <= 0 || content[i-1] == '\\' || strings.TrimSpace(content[:i]) == "" {
		return content, content, false
	}
	return content[:i], content[i+1 : len(content)-1], true
}

// Unescape removes reStructuredText backslash escapes. An escaped space
// disappears entirely.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			if s[i] == ' ' {
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
