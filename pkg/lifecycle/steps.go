package lifecycle

import (
	"text/template"

	"github.com/systemstart/gaia-node-manager/pkg/api"
)

type stepTemplate struct {
	name string
	tmpl *template.Template
}

func (o *Operations) data() commandData {
	return commandData{
		Binary:           o.node.Binary,
		InstallScriptURL: o.node.InstallScriptURL,
		ShellProfile:     o.node.ShellProfile,
		BaseDir:          o.node.BaseDir,
	}
}

func (o *Operations) build(data commandData, templates ...stepTemplate) ([]api.Step, error) {
	steps := make([]api.Step, 0, len(templates))
	for _, st := range templates {
		cmd, err := render(st.tmpl, data)
		if err != nil {
			return nil, err
		}
		steps = append(steps, api.Step{Name: st.name, Command: cmd})
	}
	return steps, nil
}

// InstallSteps returns install-binary, apply-shell-profile, initialize, start.
func (o *Operations) InstallSteps() ([]api.Step, error) {
	return o.build(o.data(),
		stepTemplate{api.StepInstallBinary, o.commands.install},
		stepTemplate{api.StepApplyShellProfile, o.commands.profile},
		stepTemplate{api.StepInitialize, o.commands.init},
		stepTemplate{api.StepStart, o.commands.start},
	)
}

// StopSteps returns the single stop step.
func (o *Operations) StopSteps() ([]api.Step, error) {
	return o.build(o.data(), stepTemplate{api.StepStop, o.commands.stop})
}

// UpgradeSteps returns stop, upgrade-binary, initialize, start.
func (o *Operations) UpgradeSteps() ([]api.Step, error) {
	return o.build(o.data(),
		stepTemplate{api.StepStop, o.commands.stop},
		stepTemplate{api.StepUpgradeBinary, o.commands.upgrade},
		stepTemplate{api.StepInitialize, o.commands.init},
		stepTemplate{api.StepStart, o.commands.start},
	)
}

// ConfigureSteps validates updates as a batch and returns one update_<key>
// step per pair, in input order, followed by initialize and start.
func (o *Operations) ConfigureSteps(updates []api.ConfigUpdate) ([]api.Step, error) {
	if err := o.rules.ValidateBatch(updates); err != nil {
		return nil, err
	}

	steps := make([]api.Step, 0, len(updates)+2)
	for _, u := range updates {
		data := o.data()
		data.Key = u.Key
		data.Value = u.Value
		cmd, err := render(o.commands.config, data)
		if err != nil {
			return nil, err
		}
		steps = append(steps, api.Step{Name: api.UpdateStepPrefix + u.Key, Command: cmd})
	}

	tail, err := o.build(o.data(),
		stepTemplate{api.StepInitialize, o.commands.init},
		stepTemplate{api.StepStart, o.commands.start},
	)
	if err != nil {
		return nil, err
	}
	return append(steps, tail...), nil
}
