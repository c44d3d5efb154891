package report

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders the Markdown form of entries into a simple A4 PDF at
// path. Headings get a bold face and table rows are laid out as two
// columns; everything else is wrapped as plain paragraphs.
func WritePDF(path string, entries []Entry, opts Options) error {
	var md bytes.Buffer
	if err := Markdown(&md, entries, opts); err != nil {
		return err
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	// core fonts are cp1252; anything outside it is rendered as '?'
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	scanner := bufio.NewScanner(&md)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		switch {
		case s == "":
			pdf.Ln(4)
		case strings.HasPrefix(s, "#"):
			level := 0
			for level < len(s) && s[level] == '#' {
				level++
			}
			text := strings.TrimSpace(s[level:])
			if text == "" {
				continue
			}
			size := 16.0
			if level == 2 {
				size = 13
			} else if level > 2 {
				size = 11
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
		case strings.HasPrefix(s, "|"):
			cells := tableCells(s)
			if cells == nil {
				continue
			}
			pdf.CellFormat(80, 6, tr(cells[0]), "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, tr(cells[1]), "1", 1, "R", false, 0, "")
		default:
			pdf.MultiCell(0, 5, tr(s), "", "L", false)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

// tableCells returns the two cells of a Markdown table row, or nil for the
// separator row.
func tableCells(row string) []string {
	row = strings.Trim(row, "|")
	if strings.Trim(row, "-|: ") == "" {
		return nil
	}
	row = strings.ReplaceAll(row, `\|`, "\x00")
	parts := strings.Split(row, "|")
	if len(parts) != 2 {
		return nil
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(strings.ReplaceAll(p, "\x00", "|"))
	}
	return parts
}
