// Package dashboard renders Grafana dashboards for the GreptimeDB telemetry table.
package dashboard

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"droneops-telemetry/internal/telemetry"
)

//go:embed templates/*.json.tmpl
var templates embed.FS

func funcMap() template.FuncMap {
	return template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
		"envOr": func(key, def string) string {
			if v := os.Getenv(key); v != "" {
				return v
			}
			return def
		},
	}
}

// Render parses the embedded dashboard templates and writes rendered dashboards to outDir.
func Render(outDir string) error {
	names, err := fs.Glob(templates, "templates/*.json.tmpl")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	data := struct{ Table string }{Table: telemetry.TelemetryTableName}
	for _, name := range names {
		t, err := template.New(filepath.Base(name)).Funcs(funcMap()).ParseFS(templates, name)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(name), ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := t.Execute(f, data); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
