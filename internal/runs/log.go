package runs

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Log is the plain-text trace written next to the reports of a run.
type Log struct {
	Tool            string
	Sources         []string
	HeaderInfo      map[string]string
	Units           map[string]string
	TimeStepMinutes int
	Quality         []string
	Warnings        []string
	Extra           map[string]string
}

// Render formats the log. Map entries are sorted by key.
func (l Log) Render(now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "tool: %s\n", l.Tool)
	fmt.Fprintf(&b, "generated: %s\n", now.UTC().Format(time.RFC3339))
	b.WriteString("sources:\n")
	for _, s := range l.Sources {
		fmt.Fprintf(&b, "  - %s\n", s)
	}
	writeMap(&b, "header", l.HeaderInfo)
	writeMap(&b, "units", l.Units)
	if l.TimeStepMinutes > 0 {
		fmt.Fprintf(&b, "time_step_minutes: %d\n", l.TimeStepMinutes)
	}
	if len(l.Quality) > 0 {
		b.WriteString("quality:\n")
		for _, q := range l.Quality {
			fmt.Fprintf(&b, "  %s\n", q)
		}
	}
	writeMap(&b, "results", l.Extra)
	if len(l.Warnings) == 0 {
		b.WriteString("warnings: none\n")
	} else {
		b.WriteString("warnings:\n")
		for _, w := range l.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}
	return b.String()
}

// WriteLog renders the log into the run's logs folder.
func (p Paths) WriteLog(name string, l Log, now time.Time) (string, error) {
	return WriteFile(p.LogsDir, name, []byte(l.Render(now)))
}

func writeMap(b *strings.Builder, title string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	keys := lo.Keys(m)
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "  %s: %s\n", k, m[k])
	}
}
