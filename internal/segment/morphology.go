package segment

import (
	"github.com/MeKo-Tech/idscan/internal/mempool"
)

// Binary morphology on boolean masks with a square kernel. The closing
// pass connects nearby glyphs so a whole document body forms one
// component.

func dilate(mask []bool, w, h, kernelSize int) []bool {
	if kernelSize <= 1 {
		return mask
	}
	half := kernelSize / 2
	out := mempool.GetBool(w * h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			found := false
			for ky := -half; ky <= half && !found; ky++ {
				ny := y + ky
				if ny < 0 || ny >= h {
					continue
				}
				for kx := -half; kx <= half; kx++ {
					nx := x + kx
					if nx >= 0 && nx < w && mask[ny*w+nx] {
						found = true
						break
					}
				}
			}
			out[y*w+x] = found
		}
	}
	return out
}

func erode(mask []bool, w, h, kernelSize int) []bool {
	if kernelSize <= 1 {
		return mask
	}
	half := kernelSize / 2
	out := mempool.GetBool(w * h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			all := true
			for ky := -half; ky <= half && all; ky++ {
				ny := y + ky
				if ny < 0 || ny >= h {
					all = false
					break
				}
				for kx := -half; kx <= half; kx++ {
					nx := x + kx
					if nx < 0 || nx >= w || !mask[ny*w+nx] {
						all = false
						break
					}
				}
			}
			out[y*w+x] = all
		}
	}
	return out
}

// closeMask fills gaps: dilate then erode. The input mask is returned
// to the pool; the caller owns the result.
func closeMask(mask []bool, w, h, kernelSize int) []bool {
	if len(mask) == 0 || kernelSize <= 1 {
		return mask
	}
	dilated := dilate(mask, w, h, kernelSize)
	mempool.PutBool(mask)
	eroded := erode(dilated, w, h, kernelSize)
	mempool.PutBool(dilated)
	return eroded
}
