package reporting

import (
	"fmt"
	"io"
	"strings"
)

// WriteText renders the dotted console listing of a run.
func WriteText(w io.Writer, r Report) error {
	urls := make([]string, 0, len(r.Endpoints))
	for _, ep := range r.Endpoints {
		urls = append(urls, ep.BaseURL())
	}

	maxNameLen := 0
	for _, res := range r.Results {
		if len(res.Name) > maxNameLen {
			maxNameLen = len(res.Name)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nPrinting test results for suite '%s' using API(s) '%s'\n", r.Suite, strings.Join(urls, ", "))
	b.WriteString("----------------------------\n")
	for _, res := range r.Results {
		dots := strings.Repeat(".", maxNameLen-len(res.Name)+3)
		fmt.Fprintf(&b, "%s %s %s\n", res.Name, dots, res.Outcome)
	}
	b.WriteString("----------------------------\n")
	fmt.Fprintf(&b, "Ran %d tests in %.3fs\n", len(r.Results), r.Summary.Duration.Seconds())

	_, err := io.WriteString(w, b.String())
	return err
}
