package registry

import "fmt"

// Selection expresses which cases of a suite to run: everything, only the
// specification-derived group, or an explicit set of names, optionally minus
// an ignore list.
type Selection struct {
	All    bool
	Auto   bool
	Names  []string
	Ignore []string
}

// ParseSelection interprets the CLI selection expression. "all" and "auto"
// are keywords; anything else is an explicit case name. Keywords cannot be
// mixed with names.
func ParseSelection(terms, ignore []string) (Selection, error) {
	sel := Selection{Ignore: ignore}
	if len(terms) == 0 {
		sel.All = true
		return sel, nil
	}
	for _, term := range terms {
		switch term {
		case "all":
			sel.All = true
		case "auto":
			sel.Auto = true
		default:
			sel.Names = append(sel.Names, term)
		}
	}
	if (sel.All || sel.Auto) && len(sel.Names) > 0 {
		return Selection{}, fmt.Errorf("selection cannot mix %q keywords with explicit case names", terms)
	}
	if sel.All && sel.Auto {
		// "all" already includes the auto group.
		sel.Auto = false
	}
	return sel, nil
}
