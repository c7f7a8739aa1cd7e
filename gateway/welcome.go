package gateway

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Live in an Instant!</title></head>
<body><p>{{.}}</p></body>
</html>
`))

var welcomePolicy = bluemonday.StrictPolicy()

// renderWelcome renders model output as the welcome page. Markup in the
// output is stripped, text is escaped and line breaks become <br/>.
func renderWelcome(text string) ([]byte, error) {
	safe := welcomePolicy.Sanitize(text)
	safe = strings.ReplaceAll(safe, "\r\n", "\n")
	safe = strings.ReplaceAll(safe, "\n", "<br/>")

	var buf bytes.Buffer
	if err := welcomeTemplate.Execute(&buf, template.HTML(safe)); err != nil { //nolint:gosec // sanitized above
		return nil, fmt.Errorf("rendering welcome page: %w", err)
	}
	return buf.Bytes(), nil
}
