package pcx

import "github.com/bodgit/spritefile/stream"

func flushRun(dst []byte, c byte, n int) []byte {
	if n > 1 || c&runFlag == runFlag {
		dst = append(dst, runFlag|byte(n))
	}
	return append(dst, c)
}

// appendRLE run-length encodes src onto the end of dst. Runs never extend
// past the end of src, so src should be exactly one scanline.
func appendRLE(dst, src []byte) []byte {
	if len(src) == 0 {
		return dst
	}

	c, n := src[0], 1
	for _, b := range src[1:] {
		if b != c || n >= maxRun {
			dst = flushRun(dst, c, n)
			c, n = b, 1
			continue
		}
		n++
	}
	return flushRun(dst, c, n)
}

// readRLE fills line from r. A run that overshoots the end of line is
// clipped.
func readRLE(r *stream.Reader, line []byte) error {
	for x := 0; x < len(line); {
		c := r.U8()
		n := 1
		if c&runFlag == runFlag {
			n = int(c & maxRun)
			c = r.U8()
		}
		if err := r.Err(); err != nil {
			return err
		}

		for ; n > 0 && x < len(line); n-- {
			line[x] = c
			x++
		}
	}
	return nil
}
