package frame

// SelectNext picks the next image to display from images.
//
// It returns false when images is empty. A single image is returned
// unconditionally. Otherwise current is excluded from the candidates and one
// of the rest is drawn uniformly from rng, so with two or more images the
// result never equals current. A current value not in images excludes nothing.
func SelectNext(images []string, current string, rng Random) (string, bool) {
	switch len(images) {
	case 0:
		return "", false
	case 1:
		return images[0], true
	}

	candidates := make([]string, 0, len(images))
	for _, name := range images {
		if name != current {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		// Only reachable with duplicate entries all equal to current.
		candidates = images
	}

	return candidates[rng.IntN(len(candidates))], true
}
