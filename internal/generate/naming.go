package generate

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/partition"
)

const (
	allLabel   = "_ALL_"
	blankLabel = "_BLANK_"
	dateLayout = "02-01-2006"
)

var unsafeName = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_", `"`, "_", "<", "_", ">", "_", "|", "_",
)

func unitLabel(u partition.Unit) (label, seq string) {
	if u.Chunked {
		return allLabel, fmt.Sprint(u.Sequence)
	}
	return GroupLabel(u.Label), ""
}

func fileName(label, seq, input string, day time.Time) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return fmt.Sprintf("%s_%s__[%s]_%s.xlsx", label, seq, base, day.Format(dateLayout))
}

// namer hands out output paths for one run:
//
//	{label}___[{base}]_{DD-MM-YYYY}.xlsx   grouped
//	_ALL__{n}__[{base}]_{DD-MM-YYYY}.xlsx  chunked
//
// Distinct group values that sanitise to the same label get a ~2, ~3, ...
// suffix.
type namer struct {
	dir   string
	input string
	day   time.Time
	used  map[string]bool
}

func newNamer(dir, input string, day time.Time) *namer {
	return &namer{dir: dir, input: input, day: day, used: make(map[string]bool)}
}

func (n *namer) path(u partition.Unit) string {
	label, seq := unitLabel(u)
	name := fileName(label, seq, n.input, n.day)
	for i := 2; n.used[strings.ToLower(name)]; i++ {
		name = fileName(fmt.Sprintf("%s~%d", label, i), seq, n.input, n.day)
	}
	n.used[strings.ToLower(name)] = true
	return filepath.Join(n.dir, name)
}

// GroupLabel makes a group value safe to use in a file name.
func GroupLabel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return blankLabel
	}
	return unsafeName.Replace(value)
}
