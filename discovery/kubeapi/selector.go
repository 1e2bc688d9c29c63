package kubeapi

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
)

// SelectorTemplate renders a label selector for a service name, e.g.
// `app={{ .ServiceName }}`. Sprig functions are available, so selectors
// like `app={{ .ServiceName | lower }}` work too.
type SelectorTemplate struct {
	tmpl *template.Template
}

type selectorData struct {
	ServiceName string
}

func CompileSelectorTemplate(text string) (*SelectorTemplate, error) {
	tmpl, err := template.New("labelSelector").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid label selector template %q: %w", text, err)
	}
	return &SelectorTemplate{tmpl: tmpl}, nil
}

func (s *SelectorTemplate) Render(serviceName string) (string, error) {
	var buf strings.Builder
	if err := s.tmpl.Execute(&buf, selectorData{ServiceName: serviceName}); err != nil {
		return "", fmt.Errorf("rendering label selector for %q: %w", serviceName, err)
	}
	return buf.String(), nil
}
