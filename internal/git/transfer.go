package git

import (
	"regexp"
	"strconv"
	"strings"
)

// Matches lines like:
// Receiving objects:  67% (35484/52960), 236.76 MiB | 78.92 MiB/s
// Resolving deltas: 100% (412/412), done.
var transferRegex = regexp.MustCompile(`(Receiving objects|Resolving deltas):\s*\d+%\s*\((\d+)/(\d+)\)`)

// transferStats holds the last object and delta counters git printed.
type transferStats struct {
	objects, objectsTotal int64
	deltas, deltasTotal   int64
}

// parseTransfer scans clone or fetch output for git's progress counters. The
// pty delivers progress updates separated by carriage returns.
func parseTransfer(output string) (transferStats, bool) {
	var stats transferStats
	found := false

	lines := strings.FieldsFunc(output, func(r rune) bool { return r == '\n' || r == '\r' })
	for _, line := range lines {
		line = strings.TrimPrefix(line, "remote: ")
		m := transferRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		current, err1 := strconv.ParseInt(m[2], 10, 64)
		total, err2 := strconv.ParseInt(m[3], 10, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		if m[1] == "Receiving objects" {
			stats.objects, stats.objectsTotal = current, total
		} else {
			stats.deltas, stats.deltasTotal = current, total
		}
		found = true
	}
	return stats, found
}

// reportTransfer forwards the received object counts of a network step to the
// progress tracker.
func (s *Session) reportTransfer(output string) {
	if stats, ok := parseTransfer(output); ok && stats.objectsTotal > 0 {
		s.progress.Update(stats.objects, stats.objectsTotal)
	}
}
