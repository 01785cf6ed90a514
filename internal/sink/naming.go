package sink

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"go-jobsearch-automation/utils"
)

// TimeLayout names output and log files by run hour, e.g. 20240131H09.
const TimeLayout = "20060102H15"

func initials(ws []string) string {
	var b strings.Builder
	for _, w := range ws {
		r := []rune(w)
		b.WriteRune(unicode.ToLower(r[0]))
	}
	return b.String()
}

// LocationCode is the lowercased location when it is one word, otherwise the
// initials of its words: "Seattle, WA" -> "sw", "Remote" -> "remote".
func LocationCode(location string) string {
	ws := utils.Words(location)
	switch len(ws) {
	case 0:
		return "any"
	case 1:
		return strings.ToLower(ws[0])
	}
	return initials(ws)
}

// JobTypeCode is the initials of the keywords: "Machine Learning Engineer" -> "mle".
func JobTypeCode(keywords string) string {
	ws := utils.Words(keywords)
	if len(ws) == 0 {
		return "all"
	}
	return initials(ws)
}

// OutputPath is <dir>/<time>_<site>_<location code>_<job type>.<ext>.
func OutputPath(dir string, at time.Time, site, location, keywords, ext string) string {
	name := fmt.Sprintf("%s_%s_%s_%s.%s",
		at.Format(TimeLayout), site, LocationCode(location), JobTypeCode(keywords), ext)
	return filepath.Join(dir, name)
}
