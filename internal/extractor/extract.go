// Package extractor implements the placeholder pipeline for equation
// handling. Math nodes are pulled out of the word-processing markup and
// replaced with opaque text placeholders before the structural converter
// ever sees the container, then converted in one batch call and spliced
// back as delimited LaTeX. The structural converter is never trusted to
// emit math delimiters on its own.
package extractor

import (
	"fmt"
	"path/filepath"

	"github.com/beevik/etree"

	"docx2md/internal/container"
	"docx2md/internal/logger"
	"docx2md/internal/types"
)

const mathNamespace = "m"

// Extract unpacks the container at containerPath into workDir, strips all
// math nodes from the main document part, and repacks a math-free copy.
// Display blocks (oMathPara) are collected first in document order, then
// inline nodes (oMath) that are not nested inside a display block. The
// returned records keep the serialized markup of every removed node so it
// can be converted later.
//
// A container without equations still produces a repacked copy and an
// empty registry. Malformed markup is fatal for the document.
func Extract(containerPath, workDir string) (string, []types.EquationRecord, error) {
	unpackDir := filepath.Join(workDir, "unpack")
	if err := container.Unpack(containerPath, unpackDir); err != nil {
		return "", nil, err
	}

	docPath := filepath.Join(unpackDir, "word", "document.xml")
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(docPath); err != nil {
		return "", nil, types.NewAppErrorWithDetails(types.ErrXML,
			"cannot parse document markup", docPath, err)
	}
	root := doc.Root()
	if root == nil {
		return "", nil, types.NewAppErrorWithDetails(types.ErrXML,
			"document part has no root element", docPath, nil)
	}

	var displays, inlines []*etree.Element
	walkElements(root, func(el *etree.Element) {
		if el.Space != mathNamespace {
			return
		}
		switch el.Tag {
		case "oMathPara":
			displays = append(displays, el)
		case "oMath":
			if !insideMathPara(el) {
				inlines = append(inlines, el)
			}
		}
	})

	var records []types.EquationRecord
	idx := 0
	for _, el := range displays {
		rec, err := replaceWithPlaceholder(el, types.KindDisplay, idx)
		if err != nil {
			return "", nil, err
		}
		records = append(records, rec)
		idx++
	}
	for _, el := range inlines {
		rec, err := replaceWithPlaceholder(el, types.KindInline, idx)
		if err != nil {
			return "", nil, err
		}
		records = append(records, rec)
		idx++
	}

	if err := doc.WriteToFile(docPath); err != nil {
		return "", nil, types.NewAppErrorWithDetails(types.ErrXML,
			"cannot write modified document part", docPath, err)
	}

	sanitizedPath := filepath.Join(workDir, "sanitized.docx")
	if err := container.Pack(unpackDir, sanitizedPath); err != nil {
		return "", nil, err
	}

	display := len(displays)
	logger.Info("extracted equations",
		logger.Int("total", len(records)),
		logger.Int("display", display),
		logger.Int("inline", len(records)-display))

	return sanitizedPath, records, nil
}

// walkElements visits el and its descendants in document order.
func walkElements(el *etree.Element, visit func(*etree.Element)) {
	visit(el)
	for _, child := range el.ChildElements() {
		walkElements(child, visit)
	}
}

// insideMathPara reports whether el has an oMathPara ancestor. Inline
// nodes nested in a display block belong to that block's record.
func insideMathPara(el *etree.Element) bool {
	for p := el.Parent(); p != nil; p = p.Parent() {
		if p.Space == mathNamespace && p.Tag == "oMathPara" {
			return true
		}
	}
	return false
}

// replaceWithPlaceholder serializes the math node, then swaps it for a
// plain text run carrying the placeholder at the same child position.
func replaceWithPlaceholder(el *etree.Element, kind types.EquationKind, idx int) (types.EquationRecord, error) {
	placeholder := placeholderFor(kind, idx)

	raw, err := serializeElement(el)
	if err != nil {
		return types.EquationRecord{}, types.NewAppErrorWithDetails(types.ErrXML,
			"cannot serialize math node", placeholder, err)
	}
	rec := types.EquationRecord{
		Index:       idx,
		Kind:        kind,
		RawMarkup:   raw,
		Placeholder: placeholder,
	}

	parent := el.Parent()
	if parent == nil {
		return rec, nil
	}
	pos := el.Index()
	parent.RemoveChildAt(pos)
	parent.InsertChildAt(pos, placeholderRun(placeholder))
	return rec, nil
}

func placeholderFor(kind types.EquationKind, idx int) string {
	if kind == types.KindDisplay {
		return fmt.Sprintf("@@MATH_DISPLAY_%04d@@", idx)
	}
	return fmt.Sprintf("@@MATH_INLINE_%04d@@", idx)
}

// placeholderRun builds <w:r><w:t xml:space="preserve">text</w:t></w:r>.
func placeholderRun(text string) *etree.Element {
	run := etree.NewElement("w:r")
	t := run.CreateElement("w:t")
	t.CreateAttr("xml:space", "preserve")
	t.SetText(text)
	return run
}

func serializeElement(el *etree.Element) (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	return doc.WriteToString()
}
