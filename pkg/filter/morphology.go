package filter

import (
	"spineridge/internal/models"
)

// Erode shrinks the mask by the given number of iterations of a 3x3 cross
// structuring element. Pixels outside the grid count as background, so the
// mask also recedes from the image border.
func Erode(mask *models.Mask, iterations int) *models.Mask {
	cur := mask.Clone()
	for it := 0; it < iterations; it++ {
		next := models.NewMask(cur.Width, cur.Height)
		for r := 0; r < cur.Height; r++ {
			for c := 0; c < cur.Width; c++ {
				next.Set(r, c, cur.At(r, c) &&
					cur.At(r-1, c) && cur.At(r+1, c) &&
					cur.At(r, c-1) && cur.At(r, c+1))
			}
		}
		cur = next
	}
	return cur
}
