// Package summary renders the complaint list as a PNG table, for sharing the
// current state of the queue outside the dashboard.
package summary

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"
	"sync"
	"time"

	"fixxyadmin/internal/complaint"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Layout constants, in pixels / points.
const (
	cellPaddingX  = 18
	cellPaddingY  = 14
	minRowHeight  = 64
	headerHeight  = 76
	margin        = 40.0
	bodyFontSize  = 22
	titleFontSize = 34
	titlePadding  = 100
	footerPadding = 70
	minColWidth   = 90.0
	maxTextWidth  = 460.0
)

var (
	bgColor         = color.RGBA{R: 245, G: 247, B: 250, A: 255}
	titleColor      = color.RGBA{R: 30, G: 41, B: 59, A: 255}
	headerBgColor   = color.RGBA{R: 37, G: 99, B: 235, A: 255}
	headerTextColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	rowEvenColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	rowOddColor     = color.RGBA{R: 241, G: 245, B: 249, A: 255}
	textColor       = color.RGBA{R: 30, G: 41, B: 59, A: 255}
	resolvedColor   = color.RGBA{R: 22, G: 163, B: 74, A: 255}
	borderColor     = color.RGBA{R: 203, G: 213, B: 225, A: 255}
	footerColor     = color.RGBA{R: 100, G: 116, B: 139, A: 255}
)

// Options controls the rendered table.
type Options struct {
	Title      string              // defaults to "Complaints Summary"
	Now        time.Time           // timestamp in the title, defaults to time.Now()
	FormatDate func(string) string // renders CreatedAt; raw value when nil
}

// column describes one table column. maxWidth 0 means sized to content.
type column struct {
	header   string
	value    func(i int, c *complaint.Complaint) string
	maxWidth float64
}

func columns(formatDate func(string) string) []column {
	return []column{
		{"#", func(i int, _ *complaint.Complaint) string { return strconv.Itoa(i + 1) }, 0},
		{"Name", func(_ int, c *complaint.Complaint) string { return string(c.Name) }, 0},
		{"Room", func(_ int, c *complaint.Complaint) string { return string(c.RoomNumber) }, 0},
		{"Floor", func(_ int, c *complaint.Complaint) string { return string(c.Floor) }, 0},
		{"Complaint", func(_ int, c *complaint.Complaint) string { return string(c.Body) }, maxTextWidth},
		{"Status", func(_ int, c *complaint.Complaint) string { return string(c.Status) }, 0},
		{"Posted At", func(_ int, c *complaint.Complaint) string { return formatDate(string(c.CreatedAt)) }, 0},
	}
}

var (
	fontsOnce   sync.Once
	regularTTF  *truetype.Font
	boldTTF     *truetype.Font
	fontLoadErr error
)

// loadFonts parses the embedded Go fonts once.
func loadFonts() error {
	fontsOnce.Do(func() {
		if regularTTF, fontLoadErr = truetype.Parse(goregular.TTF); fontLoadErr != nil {
			return
		}
		boldTTF, fontLoadErr = truetype.Parse(gobold.TTF)
	})
	return fontLoadErr
}

func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

// wrapText splits text into lines no wider than maxWidth with the current
// font face of dc.
func wrapText(dc *gg.Context, text string, maxWidth float64) []string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))

	if w, _ := dc.MeasureString(text); maxWidth <= 0 || w <= maxWidth {
		return []string{text}
	}

	words := strings.Fields(text)
	lines := make([]string, 0, 2)
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if w, _ := dc.MeasureString(candidate); w > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	return append(lines, current)
}

// table holds the measured geometry of one render.
type table struct {
	cols       []column
	cells      [][]string
	colWidths  []float64
	rowHeights []float64
	lineH      float64
}

func (t *table) width() float64 {
	var w float64
	for _, cw := range t.colWidths {
		w += cw
	}
	return w
}

func (t *table) bodyHeight() float64 {
	var h float64
	for _, rh := range t.rowHeights {
		h += rh
	}
	return h
}

// measure sizes every column and row. Column widths come from the header in
// bold and the cells in regular, capped by maxWidth.
func measure(complaints []complaint.Complaint, cols []column) *table {
	t := &table{cols: cols, colWidths: make([]float64, len(cols))}

	dc := gg.NewContext(1, 1)
	dc.SetFontFace(face(boldTTF, bodyFontSize))
	for i, col := range cols {
		w, _ := dc.MeasureString(col.header)
		t.colWidths[i] = max(w+cellPaddingX*2+4, minColWidth)
	}

	dc.SetFontFace(face(regularTTF, bodyFontSize))
	t.cells = make([][]string, len(complaints))
	for r := range complaints {
		row := make([]string, len(cols))
		for i, col := range cols {
			row[i] = col.value(r, &complaints[r])
			w, _ := dc.MeasureString(row[i])
			t.colWidths[i] = max(t.colWidths[i], w+cellPaddingX*2+4)
		}
		t.cells[r] = row
	}
	for i, col := range cols {
		if col.maxWidth > 0 && t.colWidths[i] > col.maxWidth {
			t.colWidths[i] = col.maxWidth
		}
	}

	_, lineH := dc.MeasureString("Ay")
	t.lineH = lineH
	t.rowHeights = make([]float64, len(complaints))
	for r, row := range t.cells {
		lines := 1
		for i, text := range row {
			lines = max(lines, len(wrapText(dc, text, t.colWidths[i]-cellPaddingX*2)))
		}
		t.rowHeights[r] = max(float64(lines)*(lineH+4)+cellPaddingY*2, minRowHeight)
	}
	return t
}

// RenderTable draws complaints, in the order given, as a PNG table.
//
// Returns an error for an empty list; there is nothing useful to share.
func RenderTable(complaints []complaint.Complaint, opts Options) ([]byte, error) {
	if len(complaints) == 0 {
		return nil, fmt.Errorf("no complaints to render")
	}
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("failed to load fonts: %w", err)
	}

	if opts.Title == "" {
		opts.Title = "Complaints Summary"
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.FormatDate == nil {
		opts.FormatDate = func(s string) string { return s }
	}

	t := measure(complaints, columns(opts.FormatDate))
	tableW := t.width()
	tableH := float64(headerHeight) + t.bodyHeight()
	canvasW := tableW + margin*2
	canvasH := float64(titlePadding) + tableH + float64(footerPadding)

	dc := gg.NewContext(int(canvasW), int(canvasH))
	dc.SetColor(bgColor)
	dc.Clear()

	dc.SetFontFace(face(boldTTF, titleFontSize))
	dc.SetColor(titleColor)
	title := fmt.Sprintf("%s  |  %s", opts.Title, opts.Now.Format("02 Jan 2006, 03:04 PM"))
	dc.DrawStringAnchored(title, canvasW/2, float64(titlePadding)/2, 0.5, 0.5)

	tableX, tableY := margin, float64(titlePadding)

	dc.SetColor(headerBgColor)
	dc.DrawRoundedRectangle(tableX, tableY, tableW, headerHeight, 14)
	dc.Fill()

	dc.SetFontFace(face(boldTTF, bodyFontSize))
	dc.SetColor(headerTextColor)
	x := tableX
	for i, col := range t.cols {
		dc.DrawStringAnchored(col.header, x+t.colWidths[i]/2, tableY+headerHeight/2, 0.5, 0.5)
		x += t.colWidths[i]
	}

	dc.SetFontFace(face(regularTTF, bodyFontSize))
	lineSpacing := t.lineH + 4
	y := tableY + headerHeight
	for r, row := range t.cells {
		rh := t.rowHeights[r]

		dc.SetColor(rowEvenColor)
		if r%2 == 1 {
			dc.SetColor(rowOddColor)
		}
		dc.DrawRectangle(tableX, y, tableW, rh)
		dc.Fill()

		dc.SetColor(borderColor)
		dc.SetLineWidth(0.5)
		dc.DrawLine(tableX, y+rh, tableX+tableW, y+rh)
		dc.Stroke()

		x := tableX
		for i, text := range row {
			dc.SetColor(textColor)
			if t.cols[i].header == "Status" && strings.EqualFold(text, complaint.StatusResolved) {
				dc.SetColor(resolvedColor)
			}
			lines := wrapText(dc, text, t.colWidths[i]-cellPaddingX*2)
			startY := y + (rh-float64(len(lines))*lineSpacing)/2 + t.lineH
			for l, line := range lines {
				dc.DrawString(line, x+cellPaddingX, startY+float64(l)*lineSpacing)
			}
			x += t.colWidths[i]
		}
		y += rh
	}

	dc.SetColor(borderColor)
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(tableX, tableY, tableW, tableH, 14)
	dc.Stroke()

	dc.SetLineWidth(0.5)
	x = tableX
	for i := 0; i < len(t.cols)-1; i++ {
		x += t.colWidths[i]
		dc.DrawLine(x, tableY+headerHeight, x, tableY+tableH)
		dc.Stroke()
	}

	dc.SetFontFace(face(regularTTF, 20))
	dc.SetColor(footerColor)
	dc.DrawStringAnchored(fmt.Sprintf("Total: %d complaints", len(complaints)), canvasW/2, canvasH-30, 0.5, 0.5)

	return encodeImage(dc.Image())
}

func encodeImage(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
