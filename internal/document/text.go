package document

import (
	"fmt"
	"math"
	"sort"
	"strings"

	rpdf "rsc.io/pdf"
)

// PageText returns the native text layer of page i (0-based). Pages without a
// content dictionary yield "".
func (d *Document) PageText(i int) (text string, err error) {
	if i < 0 || i >= d.pages {
		return "", fmt.Errorf("%w: page %d out of range [0,%d)", ErrPage, i, d.pages)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: page %d: %v", ErrPage, i, r)
		}
	}()

	if d.mode == TextLayout {
		p := d.layout.Page(i + 1)
		if p.V.IsNull() {
			return "", nil
		}
		return layoutText(p.Content().Text), nil
	}

	p := d.plain.Page(i + 1)
	if p.V.IsNull() {
		return "", nil
	}
	text, err = p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("%w: page %d: %v", ErrPage, i, err)
	}
	return text, nil
}

type textLine struct {
	y    float64
	size float64
	runs []rpdf.Text
}

// layoutText groups glyph runs into lines by baseline, orders lines top to
// bottom and runs left to right, and inserts a space where the horizontal gap
// between runs is wider than a fraction of the font size.
func layoutText(runs []rpdf.Text) string {
	if len(runs) == 0 {
		return ""
	}

	var lines []*textLine
	for _, t := range runs {
		var line *textLine
		for _, l := range lines {
			if math.Abs(l.y-t.Y) <= lineTolerance(l.size, t.FontSize) {
				line = l
				break
			}
		}
		if line == nil {
			line = &textLine{y: t.Y, size: t.FontSize}
			lines = append(lines, line)
		}
		line.runs = append(line.runs, t)
	}

	// PDF user space grows upwards.
	sort.SliceStable(lines, func(a, b int) bool { return lines[a].y > lines[b].y })

	var sb strings.Builder
	for _, l := range lines {
		sort.SliceStable(l.runs, func(a, b int) bool { return l.runs[a].X < l.runs[b].X })
		end := math.Inf(-1)
		for _, t := range l.runs {
			if !math.IsInf(end, -1) && t.X-end > 0.15*t.FontSize && !strings.HasPrefix(t.S, " ") {
				sb.WriteByte(' ')
			}
			sb.WriteString(t.S)
			end = t.X + t.W
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func lineTolerance(a, b float64) float64 {
	size := math.Max(a, b)
	if size <= 0 {
		size = 1
	}
	return size / 2
}
