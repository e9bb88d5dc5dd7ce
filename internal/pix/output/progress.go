package output

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// UploadBar wraps a reader with a byte progress bar. In quiet or JSON mode
// the reader is returned untouched.
func (p *Printer) UploadBar(r io.Reader, size int64, description string) io.Reader {
	if p.quiet || p.json {
		return r
	}

	bar := progressbar.DefaultBytes(size, description)
	return io.TeeReader(r, bar)
}
