package tui

import (
	"math"
	"strings"
)

// Braille patterns pack a 2x4 dot grid into one rune (offset 0x2800).
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille pixel buffer. Cell (x, y) coordinates are in
// sub-pixels: the drawable area is (Width*2) x (Height*4).
type Canvas struct {
	Width, Height int
	grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		grid:   make([][]rune, h),
	}
	for i := range c.grid {
		c.grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Clear() {
	for y := range c.grid {
		for x := range c.grid[y] {
			c.grid[y][x] = 0x2800
		}
	}
}

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Line draws with Bresenham's algorithm in sub-pixel coordinates.
func (c *Canvas) Line(x1, y1, x2, y2 int) {
	dx, dy := abs(x2-x1), abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		c.Set(x1, y1)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// Circle draws a rim centered at (cx, cy). The y radius is halved to
// compensate for terminal cell aspect ratio.
func (c *Canvas) Circle(cx, cy int, r float64) {
	steps := int(r * 8)
	if steps < 24 {
		steps = 24
	}
	for i := 0; i < steps; i++ {
		a := float64(i) / float64(steps) * 2 * math.Pi
		c.Set(cx+int(r*math.Cos(a)), cy+int(r*math.Sin(a)/2))
	}
}

// Spoke draws a radial segment from the inner fraction of r out to r,
// at the given angle. Angle 0 points up (the needle position) and
// increases clockwise, matching how the wheel is rendered.
func (c *Canvas) Spoke(cx, cy int, r, angle, innerFrac float64) {
	sin, cos := math.Sin(angle), -math.Cos(angle)
	x1 := cx + int(r*innerFrac*sin)
	y1 := cy + int(r*innerFrac*cos/2)
	x2 := cx + int(r*sin)
	y2 := cy + int(r*cos/2)
	c.Line(x1, y1, x2, y2)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
