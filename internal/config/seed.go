package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strconv"

	"github.com/spf13/afero"
)

var seedIntervalPattern = regexp.MustCompile(`\(\s*"FG\.AutosaveInterval"\s*,\s*([-+0-9.eE]+)\s*\)`)

// LoadAutosaveInterval reads the seed autosave interval from a
// GameUserSettings.ini. A missing file or key is reported with ok=false.
func LoadAutosaveInterval(fsys afero.Fs, path string) (float64, bool, error) {
	f, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		match := seedIntervalPattern.FindStringSubmatch(scanner.Text())
		if match == nil {
			continue
		}
		value, parseErr := strconv.ParseFloat(match[1], 64)
		if parseErr != nil || value < 0 {
			return 0, false, fmt.Errorf("autosave interval %q in %s: invalid value", match[1], path)
		}
		return value, true, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, false, err
	}
	return 0, false, nil
}
