package library

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// docxBody mirrors just enough of word/document.xml's structure to pull out
// paragraph text runs. No third-party OOXML parser appears anywhere in the
// example pack, so this is a deliberately narrow stdlib reader rather than a
// full WordprocessingML implementation — see DESIGN.md.
type docxBody struct {
	Paragraphs []docxParagraph `xml:"body>p"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []string `xml:"t"`
}

// extractDOCX unzips the OOXML package and concatenates every paragraph's
// text runs, one paragraph per line.
func extractDOCX(data []byte) (title, content string, err error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", "", fmt.Errorf("open docx zip: %w", err)
	}

	var documentXML []byte
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", "", fmt.Errorf("open document.xml: %w", err)
			}
			documentXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return "", "", fmt.Errorf("read document.xml: %w", err)
			}
			break
		}
	}
	if documentXML == nil {
		return "", "", fmt.Errorf("docx missing word/document.xml")
	}

	var body docxBody
	if err := xml.Unmarshal(documentXML, &body); err != nil {
		return "", "", fmt.Errorf("parse document.xml: %w", err)
	}

	var sb strings.Builder
	for _, p := range body.Paragraphs {
		for _, r := range p.Runs {
			for _, t := range r.Text {
				sb.WriteString(t)
			}
		}
		sb.WriteString("\n")
	}

	return "", sb.String(), nil
}
