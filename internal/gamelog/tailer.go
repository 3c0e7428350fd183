package gamelog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// ReadNewLines opens Path, returns the complete lines appended since the last
// call and keeps any unterminated tail for the next call. A file smaller than
// the read offset, or a different file at Path on filesystems that report
// identity, was rotated; reading restarts from offset 0.
func (t *Tailer) ReadNewLines() ([]string, error) {
	file, err := t.fs().Open(t.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", t.Path)
	}

	size := info.Size()
	replaced := t.replacedBy(info)
	t.identity = info
	if replaced || size < t.Offset {
		t.Offset = 0
		t.Pending = nil
		t.rotated = true
	}
	if size == t.Offset {
		return nil, nil
	}
	if _, err := file.Seek(t.Offset, io.SeekStart); err != nil {
		return nil, err
	}

	chunk, err := io.ReadAll(io.LimitReader(file, size-t.Offset))
	if err != nil {
		return nil, err
	}
	t.Offset += int64(len(chunk))

	data := chunk
	if len(t.Pending) > 0 {
		data = append(t.Pending, chunk...)
		t.Pending = nil
	}
	last := bytes.LastIndexByte(data, '\n')
	if last < 0 {
		t.Pending = data
		return nil, nil
	}
	if last+1 < len(data) {
		t.Pending = append([]byte(nil), data[last+1:]...)
	}

	raw := strings.Split(string(data[:last]), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		lines = append(lines, NormalizeLogLine(line))
	}
	return lines, nil
}

// replacedBy reports whether info is a different file from the one read last.
// In-memory filesystems carry no identity and never report a replacement.
func (t *Tailer) replacedBy(info os.FileInfo) bool {
	if t.identity == nil || t.identity.Sys() == nil || info.Sys() == nil {
		return false
	}
	return !os.SameFile(t.identity, info)
}

// Rotated reports whether a rotation was seen since the previous call.
func (t *Tailer) Rotated() bool {
	rotated := t.rotated
	t.rotated = false
	return rotated
}

func (t *Tailer) fs() afero.Fs {
	if t.Fs == nil {
		return afero.NewOsFs()
	}
	return t.Fs
}
