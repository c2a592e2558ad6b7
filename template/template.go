package template

import (
	"bytes"
	"fmt"
	"log/slog"
	"text/template"

	"gopkg.in/yaml.v3"
)

// FileReader reads whole files. filesystem.DefaultFileSystem satisfies it.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// PlanRenderer renders plan files as text/template documents
type PlanRenderer struct {
	logger *slog.Logger
	reader FileReader
}

// TemplateData contains all variables available in templates
type TemplateData struct {
	Var map[string]interface{} // Variables loaded from the values file
}

func New(logger *slog.Logger, reader FileReader) *PlanRenderer {
	return &PlanRenderer{
		logger: logger,
		reader: reader,
	}
}

// RenderFile reads planPath and renders it with the variables from valuesPath.
func (pr *PlanRenderer) RenderFile(planPath, valuesPath string) ([]byte, error) {
	content, err := pr.reader.ReadFile(planPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file %s: %w", planPath, err)
	}
	return pr.Render(content, valuesPath)
}

// Render renders content with the variables from valuesPath. Missing keys
// are an error.
func (pr *PlanRenderer) Render(content []byte, valuesPath string) ([]byte, error) {
	variables, err := pr.loadVariables(valuesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load variables from %s: %w", valuesPath, err)
	}

	tmpl, err := template.New("plan").Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, &TemplateData{Var: variables}); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// loadVariables loads variables from a YAML file into a map[string]interface{}
func (pr *PlanRenderer) loadVariables(valuesPath string) (map[string]interface{}, error) {
	valuesContent, err := pr.reader.ReadFile(valuesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read values file: %w", err)
	}

	var variables map[string]interface{}
	if err := yaml.Unmarshal(valuesContent, &variables); err != nil {
		return nil, fmt.Errorf("failed to parse values file as YAML: %w", err)
	}

	pr.logger.Debug("loaded variables from values file",
		"valuesPath", valuesPath,
		"variableCount", len(variables))

	return variables, nil
}

// HasTemplateVars reports whether content looks like it contains template actions.
func HasTemplateVars(content []byte) bool {
	return bytes.Contains(content, []byte("{{")) && bytes.Contains(content, []byte("}}"))
}
