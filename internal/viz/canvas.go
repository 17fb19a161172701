package viz

import (
	"math"
	"strings"
)

const brailleBlank = 0x2800

// dot bits of a braille cell indexed by [row][col], 4 rows by 2 columns
var brailleDots = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells addressed in dots. A canvas of
// Width x Height cells has Width*2 x Height*4 dots.
type Canvas struct {
	Width, Height int
	cells         [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, cells: make([][]rune, h)}
	for i := range c.cells {
		c.cells[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights one dot. Out-of-range dots are dropped.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.cells[row][col] |= brailleDots[y%4][x%2]
}

func (c *Canvas) Clear() {
	for _, row := range c.cells {
		for j := range row {
			row[j] = brailleBlank
		}
	}
}

// Line draws from (x0,y0) to (x1,y1) with Bresenham stepping.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x1 < x0 {
		sx = -1
	}
	if y1 < y0 {
		sy = -1
	}
	e := dx + dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps world coordinates onto canvas dots, keeping a square
// aspect and a minimum span so a hovering vehicle does not fill the view.
type Viewport struct {
	minX, maxX, minY, maxY float64
}

func NewViewport(minSpan float64) Viewport {
	h := minSpan / 2
	return Viewport{minX: -h, maxX: h, minY: -h, maxY: h}
}

// Include grows the viewport to contain (x, y). Non-finite points are
// ignored.
func (v *Viewport) Include(x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return
	}
	v.minX, v.maxX = math.Min(v.minX, x), math.Max(v.maxX, x)
	v.minY, v.maxY = math.Min(v.minY, y), math.Max(v.maxY, y)
}

// Project returns dot coordinates with y increasing upward in world space.
func (v Viewport) Project(c *Canvas, x, y float64) (int, int) {
	w, h := c.Dots()
	span := math.Max(v.maxX-v.minX, v.maxY-v.minY)
	scale := float64(min(w, h)-4) / span
	cx, cy := (v.minX+v.maxX)/2, (v.minY+v.maxY)/2
	px := float64(w)/2 + (x-cx)*scale
	py := float64(h)/2 - (y-cy)*scale
	return int(math.Round(px)), int(math.Round(py))
}
