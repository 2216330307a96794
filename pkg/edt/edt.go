// Package edt implements a separable anisotropic squared Euclidean
// distance transform over 3D binary masks, following the lower-envelope
// algorithm of Felzenszwalb and Huttenlocher. Each axis is processed
// independently with its own physical pitch, so the resulting map holds
// squared physical distances rather than squared voxel counts.
package edt

// inf is large enough to dominate any real squared distance while staying
// safely away from float64 overflow in the envelope intersections.
const inf = 1e20

// Transform3D computes, for every voxel, the squared physical distance to
// the nearest foreground voxel of the mask. mask is row-major with x
// fastest (length width*height*depth); pitch is the voxel size per axis.
// Volumes with no foreground voxel yield a map of very large values.
func Transform3D(mask []bool, width, height, depth int, pitch [3]float64) []float64 {
	dist := make([]float64, len(mask))
	for i, fg := range mask {
		if fg {
			dist[i] = 0
		} else {
			dist[i] = inf
		}
	}
	TransformInPlace(dist, width, height, depth, pitch)
	return dist
}

// TransformInPlace runs the transform on a pre-seeded squared-distance
// field (0 at sources, a large value elsewhere), overwriting it with the
// squared distance to the nearest source.
func TransformInPlace(dist []float64, width, height, depth int, pitch [3]float64) {
	maxDim := width
	if height > maxDim {
		maxDim = height
	}
	if depth > maxDim {
		maxDim = depth
	}

	// Scratch buffers shared by all scan lines.
	f := make([]float64, maxDim)
	d := make([]float64, maxDim)
	v := make([]int, maxDim)
	z := make([]float64, maxDim+1)

	plane := width * height

	// Along x.
	for zi := 0; zi < depth; zi++ {
		for y := 0; y < height; y++ {
			base := zi*plane + y*width
			for x := 0; x < width; x++ {
				f[x] = dist[base+x]
			}
			transform1D(f[:width], d, v, z, pitch[0])
			for x := 0; x < width; x++ {
				dist[base+x] = d[x]
			}
		}
	}

	// Along y.
	for zi := 0; zi < depth; zi++ {
		for x := 0; x < width; x++ {
			base := zi*plane + x
			for y := 0; y < height; y++ {
				f[y] = dist[base+y*width]
			}
			transform1D(f[:height], d, v, z, pitch[1])
			for y := 0; y < height; y++ {
				dist[base+y*width] = d[y]
			}
		}
	}

	// Along z.
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			base := y*width + x
			for zi := 0; zi < depth; zi++ {
				f[zi] = dist[base+zi*plane]
			}
			transform1D(f[:depth], d, v, z, pitch[2])
			for zi := 0; zi < depth; zi++ {
				dist[base+zi*plane] = d[zi]
			}
		}
	}
}

// transform1D computes d[q] = min_p ((q-p)*pitch)^2 + f[p] for one scan
// line by maintaining the lower envelope of the parabolas rooted at each
// sample. v holds the parabola roots, z the intersection points.
func transform1D(f, d []float64, v []int, z []float64, pitch float64) {
	n := len(f)
	if n == 1 {
		d[0] = f[0]
		return
	}

	k := 0
	v[0] = 0
	z[0] = -inf
	z[1] = inf

	for q := 1; q < n; q++ {
		s := intersect(f, v[k], q, pitch)
		for s <= z[k] {
			k--
			s = intersect(f, v[k], q, pitch)
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = inf
	}

	k = 0
	for q := 0; q < n; q++ {
		x := float64(q) * pitch
		for z[k+1] < x {
			k++
		}
		dx := x - float64(v[k])*pitch
		d[q] = dx*dx + f[v[k]]
	}
}

// intersect returns the abscissa where the parabolas rooted at p and q
// cross. q > p is required.
func intersect(f []float64, p, q int, pitch float64) float64 {
	xp := float64(p) * pitch
	xq := float64(q) * pitch
	return ((f[q] + xq*xq) - (f[p] + xp*xp)) / (2*xq - 2*xp)
}
