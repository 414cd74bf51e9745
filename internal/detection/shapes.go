package detection

import (
	"image"
	"math"
	"sort"
)

// Bounds is an axis-aligned box in pixel coordinates. (X1, Y1) is the
// top-left corner; (X2, Y2) is the bottom-right corner.
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Point is a pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rectangle is a box outline found by DetectRectangles.
type Rectangle struct {
	Bounds Bounds `json:"bounds"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Area   int    `json:"area"`

	// Confidence is how closely the contour length matches the perimeter of
	// its bounding box, from 0 to 1.
	Confidence float64 `json:"confidence"`
}

// RectanglesResult holds the rectangles found in one image, largest first.
type RectanglesResult struct {
	Rectangles []Rectangle `json:"rectangles"`
	Count      int         `json:"count"`
}

// minContourPixels is the smallest connected edge group treated as a contour.
const minContourPixels = 10

// edgeThreshold is the gray level difference that marks an edge pixel.
const edgeThreshold = 30.0

// DetectRectangles finds axis-aligned boxes in img.
//
// Edge pixels are grouped into 8-connected contours. A contour is kept when
// the area of its bounding box is at least minArea and its rectangularity,
//
//	1 - |contour length - 2*(w+h)| / (2*(w+h))
//
// is at least tolerance. Nested boxes are reported separately.
func DetectRectangles(img image.Image, minArea int, tolerance float64) (*RectanglesResult, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	edges := detectEdges(img, width, height)
	contours := findContours(edges, width, height)

	rectangles := make([]Rectangle, 0, len(contours))
	for _, contour := range contours {
		box := contourBounds(contour, width, height)
		rectWidth := box.X2 - box.X1
		rectHeight := box.Y2 - box.Y1
		area := rectWidth * rectHeight
		if area < minArea || area == 0 {
			continue
		}

		perimeter := 2 * (rectWidth + rectHeight)
		rectangularity := 1.0 - math.Abs(float64(len(contour)-perimeter))/float64(perimeter)
		if rectangularity < tolerance {
			continue
		}

		rectangles = append(rectangles, Rectangle{
			Bounds: Bounds{
				X1: box.X1 + bounds.Min.X,
				Y1: box.Y1 + bounds.Min.Y,
				X2: box.X2 + bounds.Min.X,
				Y2: box.Y2 + bounds.Min.Y,
			},
			Width:      rectWidth,
			Height:     rectHeight,
			Area:       area,
			Confidence: rectangularity,
		})
	}

	sort.SliceStable(rectangles, func(i, j int) bool {
		return rectangles[i].Area > rectangles[j].Area
	})

	return &RectanglesResult{
		Rectangles: rectangles,
		Count:      len(rectangles),
	}, nil
}

func contourBounds(contour []Point, width, height int) Bounds {
	b := Bounds{X1: width, Y1: height}
	for _, p := range contour {
		b.X1 = min(b.X1, p.X)
		b.Y1 = min(b.Y1, p.Y)
		b.X2 = max(b.X2, p.X)
		b.Y2 = max(b.Y2, p.Y)
	}
	return b
}

// detectEdges marks pixels whose gray level differs from the right or lower
// neighbour by more than edgeThreshold. The outermost ring of pixels is
// never an edge.
func detectEdges(img image.Image, width, height int) [][]bool {
	bounds := img.Bounds()
	edges := make([][]bool, height)

	for y := 0; y < height; y++ {
		edges[y] = make([]bool, width)
		if y == 0 || y == height-1 {
			continue
		}
		for x := 1; x < width-1; x++ {
			c := float64(grayValue(img, x+bounds.Min.X, y+bounds.Min.Y))
			cx := float64(grayValue(img, x+1+bounds.Min.X, y+bounds.Min.Y))
			cy := float64(grayValue(img, x+bounds.Min.X, y+1+bounds.Min.Y))

			if math.Abs(c-cx) > edgeThreshold || math.Abs(c-cy) > edgeThreshold {
				edges[y][x] = true
			}
		}
	}

	return edges
}

// findContours groups edge pixels into 8-connected components, dropping
// components smaller than minContourPixels.
func findContours(edges [][]bool, width, height int) [][]Point {
	visited := make([][]bool, height)
	for y := range visited {
		visited[y] = make([]bool, width)
	}

	var contours [][]Point
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !edges[y][x] || visited[y][x] {
				continue
			}
			contour := floodFill(edges, visited, x, y, width, height)
			if len(contour) >= minContourPixels {
				contours = append(contours, contour)
			}
		}
	}

	return contours
}

// floodFill collects the component containing (startX, startY). It uses an
// explicit stack so large outlines do not overflow the goroutine stack.
func floodFill(edges, visited [][]bool, startX, startY, width, height int) []Point {
	var contour []Point
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !edges[p.Y][p.X] {
			continue
		}

		visited[p.Y][p.X] = true
		contour = append(contour, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx != 0 || dy != 0 {
					stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
				}
			}
		}
	}

	return contour
}

// grayValue returns the BT.601 luma of the pixel at (x, y).
func grayValue(img image.Image, x, y int) uint8 {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(float64(r>>8)*0.299 + float64(g>>8)*0.587 + float64(b>>8)*0.114)
}
