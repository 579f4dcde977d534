package imaging

import "github.com/anthonynsimon/bild/parallel"

// forEachRow runs fn once per row, spreading rows over the available CPUs.
// fn must only write to memory owned by its row.
func forEachRow(height int, fn func(y int)) {
	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			fn(y)
		}
	})
}
