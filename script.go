package fsm

import (
	"errors"
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/enetx/g"
)

// Variables shared between a state script and the player.
//
//	state  - path-qualified name of the running state (read)
//	delta  - tick delta (read)
//	params - every visible parameter, local values shadowing global ones (read)
//	set    - map of parameter writes applied after the script returns
//	fire   - array of trigger names set after the script returns
const (
	scriptState  = "state"
	scriptDelta  = "delta"
	scriptParams = "params"
	scriptSet    = "set"
	scriptFire   = "fire"
)

func compileScript(src g.String) (*tengo.Compiled, error) {
	script := tengo.NewScript([]byte(src.Std()))
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	vars := map[string]any{
		scriptState:  "",
		scriptDelta:  0.0,
		scriptParams: map[string]any{},
		scriptSet:    map[string]any{},
		scriptFire:   []any{},
	}

	for name, v := range vars {
		if err := script.Add(name, v); err != nil {
			return nil, err
		}
	}

	return script.Compile()
}

// runScript executes the update script of def for one tick and applies its writes.
// Every write goes through the store, so kind violations surface as errors
// and leave the parameter unchanged.
func (p *Player) runScript(def StateDef, delta float64) error {
	compiled, ok := p.scripts[def.Name]
	if !ok {
		compiled = def.compiled.Clone()
		p.scripts[def.Name] = compiled
	}

	params := make(map[string]any)
	for name, v := range p.store.merged() {
		params[name.Std()] = v.Any()
	}

	inputs := map[string]any{
		scriptState:  string(join(p.path, p.current)),
		scriptDelta:  delta,
		scriptParams: params,
		scriptSet:    map[string]any{},
		scriptFire:   []any{},
	}

	for name, v := range inputs {
		if err := compiled.Set(name, v); err != nil {
			return err
		}
	}

	if err := compiled.Run(); err != nil {
		return err
	}

	var errs []error

	for name, raw := range compiled.Get(scriptSet).Map() {
		if err := p.applyScriptWrite(g.String(name), raw); err != nil {
			errs = append(errs, err)
		}
	}

	for _, raw := range compiled.Get(scriptFire).Array() {
		name, ok := raw.(string)
		if !ok {
			errs = append(errs, fmt.Errorf("fsm: script fired non-string trigger %v", raw))
			continue
		}

		p.store.SetTrigger(Trigger(name))
	}

	return errors.Join(errs...)
}

func (p *Player) applyScriptWrite(name g.String, raw any) error {
	kind, declared := p.store.Kind(name)

	var (
		v   Value
		err error
	)

	if declared {
		v, err = valueAs(kind, raw)
	} else {
		v, err = ValueOf(raw)
	}

	if err != nil {
		return fmt.Errorf("fsm: script write to %q: %w", name, err)
	}

	if p.store.isLocal(name) {
		_, err = p.store.SetLocalParameter(name, v)
	} else {
		_, err = p.store.SetParameter(name, v)
	}

	return err
}
