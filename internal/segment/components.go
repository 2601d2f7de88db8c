package segment

import (
	"container/list"

	"github.com/MeKo-Tech/idscan/internal/utils"
)

// component holds the pixel count and bounding box of one connected
// region of the binary mask.
type component struct {
	count int
	minX  int
	minY  int
	maxX  int
	maxY  int
}

func (c component) boundingRect() utils.Rect {
	return utils.NewRect(c.minX, c.minY, c.maxX-c.minX+1, c.maxY-c.minY+1)
}

// connectedComponents finds 4-connected regions in the mask.
func connectedComponents(mask []bool, w, h int) []component {
	visited := make([]bool, w*h)
	var comps []component

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if mask[idx] && !visited[idx] {
				comps = append(comps, componentBFS(mask, visited, w, h, x, y))
			}
		}
	}
	return comps
}

func componentBFS(mask []bool, visited []bool, w, h, startX, startY int) component {
	startIdx := startY*w + startX
	st := component{minX: startX, minY: startY, maxX: startX, maxY: startY}

	q := list.New()
	q.PushBack(startIdx)
	visited[startIdx] = true

	dirs := [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	for q.Len() > 0 {
		e := q.Front()
		q.Remove(e)
		ci, ok := e.Value.(int)
		if !ok {
			continue
		}
		cx, cy := ci%w, ci/w

		st.count++
		if cx < st.minX {
			st.minX = cx
		}
		if cy < st.minY {
			st.minY = cy
		}
		if cx > st.maxX {
			st.maxX = cx
		}
		if cy > st.maxY {
			st.maxY = cy
		}

		for _, d := range dirs {
			nx, ny := cx+d[0], cy+d[1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			ni := ny*w + nx
			if mask[ni] && !visited[ni] {
				visited[ni] = true
				q.PushBack(ni)
			}
		}
	}
	return st
}
