// Package templates holds the starter bodies offered when capturing a note.
package templates

import (
	"fmt"
	"strings"
)

// Names lists the templates in the order they are offered.
var Names = []string{"blank", "todo", "standup", "reading"}

var bodies = map[string]string{
	"blank": "",

	"todo": `- [ ] 
- [ ] 
- [ ] 
`,

	"standup": `{{date}}

yesterday:
- 

today:
- 

blocked on:
- 
`,

	"reading": `source: 
captured: {{date}}

> 

thoughts:
`,
}

// Has reports whether name is a known template.
func Has(name string) bool {
	_, ok := bodies[name]
	return ok
}

// Validate returns an error naming the choices when name is unknown.
func Validate(name string) error {
	if name == "" || Has(name) {
		return nil
	}
	return fmt.Errorf("unknown template %q (choose from %s)", name, strings.Join(Names, ", "))
}

// Get returns the body for name with {{date}} filled in. Unknown names give
// the blank template.
func Get(name, date string) string {
	body, ok := bodies[name]
	if !ok {
		body = bodies["blank"]
	}
	return strings.ReplaceAll(body, "{{date}}", date)
}
