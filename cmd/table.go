package cmd

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/starpath/internal/ui/theme"
)

// table prints rows in aligned columns. Widths are terminal cells, so
// wide runes and styled cells line up.
type table struct {
	headers []string
	rows    [][]string // nil row is a rule
	caps    map[int]int
	right   map[int]bool
}

func newTable(headers ...string) *table {
	return &table{headers: headers, caps: map[int]int{}, right: map[int]bool{}}
}

// limit truncates column col to n cells.
func (t *table) limit(col, n int) *table {
	t.caps[col] = n
	return t
}

func (t *table) alignRight(cols ...int) *table {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

func (t *table) add(cells ...any) {
	row := make([]string, len(cells))
	for i, c := range cells {
		s := fmt.Sprint(c)
		if n, ok := t.caps[i]; ok {
			s = ansi.Truncate(s, n, "…")
		}
		row[i] = s
	}
	t.rows = append(t.rows, row)
}

func (t *table) rule() {
	t.rows = append(t.rows, nil)
}

func (t *table) len() int {
	n := 0
	for _, r := range t.rows {
		if r != nil {
			n++
		}
	}
	return n
}

func (t *table) print() {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = ansi.StringWidth(h)
	}
	for _, r := range t.rows {
		for i, c := range r {
			if i < len(widths) {
				widths[i] = max(widths[i], ansi.StringWidth(c))
			}
		}
	}
	total := 0
	for _, w := range widths {
		total += w + 2
	}
	line := strings.Repeat("─", max(total-2, 0))

	lipgloss.Println(theme.Section.Render(t.format(t.headers, widths)))
	lipgloss.Println(line)
	for _, r := range t.rows {
		if r == nil {
			lipgloss.Println(line)
			continue
		}
		lipgloss.Println(t.format(r, widths))
	}
}

func (t *table) format(cells []string, widths []int) string {
	var b strings.Builder
	for i, c := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		pad := ""
		if i < len(widths) {
			pad = strings.Repeat(" ", max(widths[i]-ansi.StringWidth(c), 0))
		}
		if t.right[i] {
			b.WriteString(pad + c)
		} else if i < len(cells)-1 {
			b.WriteString(c + pad)
		} else {
			b.WriteString(c)
		}
	}
	return b.String()
}
