package lead

import "strings"

// Filter returns the leads whose full name, company or position contains
// term, ignoring case. A blank term keeps every lead. The input slice is
// never modified.
func Filter(leads []Lead, term string) []Lead {
	needle := strings.ToLower(term)
	out := make([]Lead, 0, len(leads))
	for _, l := range leads {
		if needle == "" || matches(l, needle) {
			out = append(out, l)
		}
	}
	return out
}

func matches(l Lead, needle string) bool {
	for _, hay := range []string{l.FullName, l.Company, l.Position} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

// IndexOf returns the position of the lead with id, or -1.
func IndexOf(leads []Lead, id int64) int {
	for i := range leads {
		if leads[i].ID == id {
			return i
		}
	}
	return -1
}
