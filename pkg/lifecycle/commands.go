package lifecycle

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/systemstart/gaia-node-manager/pkg/api"
)

const (
	defaultInstallTemplate = `curl -sSfL {{ .InstallScriptURL | shellquote }} | bash`
	defaultUpgradeTemplate = `curl -sSfL {{ .InstallScriptURL | shellquote }} | bash -s -- --upgrade`
	// Each step runs in its own shell, so sourcing the profile does not
	// change PATH for the steps after it.
	defaultProfileTemplate = `source {{ .ShellProfile }}`
	defaultInitTemplate    = `{{ .Binary }} init`
	defaultStartTemplate   = `{{ .Binary }} start`
	defaultStopTemplate    = `{{ .Binary }} stop`
	defaultConfigTemplate  = `{{ .Binary }} config --{{ .Key }} {{ .Value | shellquote }}`
)

// commandData is what command templates are rendered against.
type commandData struct {
	Binary           string
	InstallScriptURL string
	ShellProfile     string
	BaseDir          string
	Key              string
	Value            string
}

type commandSet struct {
	install *template.Template
	upgrade *template.Template
	profile *template.Template
	init    *template.Template
	start   *template.Template
	stop    *template.Template
	config  *template.Template
}

func newCommandSet(overrides api.CommandTemplates) (*commandSet, error) {
	var (
		cs  commandSet
		err error
	)
	parse := func(name, override, def string) *template.Template {
		if err != nil {
			return nil
		}
		text := def
		if strings.TrimSpace(override) != "" {
			text = override
		}
		var t *template.Template
		t, err = template.New(name).
			Funcs(sprig.TxtFuncMap()).
			Funcs(template.FuncMap{"shellquote": shellQuote}).
			Option("missingkey=error").
			Parse(text)
		if err != nil {
			err = fmt.Errorf("parsing %s command template: %w", name, err)
		}
		return t
	}

	cs.install = parse("install", overrides.Install, defaultInstallTemplate)
	cs.upgrade = parse("upgrade", overrides.Upgrade, defaultUpgradeTemplate)
	cs.profile = parse("profile", overrides.Profile, defaultProfileTemplate)
	cs.init = parse("init", overrides.Init, defaultInitTemplate)
	cs.start = parse("start", overrides.Start, defaultStartTemplate)
	cs.stop = parse("stop", overrides.Stop, defaultStopTemplate)
	cs.config = parse("config", overrides.Config, defaultConfigTemplate)
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

func render(t *template.Template, data commandData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s command: %w", t.Name(), err)
	}
	cmd := strings.TrimSpace(buf.String())
	if cmd == "" {
		return "", fmt.Errorf("%s command rendered empty", t.Name())
	}
	return cmd, nil
}

// shellQuote wraps s in single quotes so a POSIX shell passes it through as
// one literal word.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
