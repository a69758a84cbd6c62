//go:build js && wasm

// This is a light wasm wrapper around just the alter script compiler, so that a browser-based
// modeling host can call it directly.
package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/sqldef/deltadef/config"
	"github.com/sqldef/deltadef/schema"
)

// compile(deltaJSON, configYAML, callback) calls back with (error, scriptsJSON).
func compile(this js.Value, args []js.Value) any {
	document := args[0].String()
	configYAML := args[1].String()
	callback := args[2]

	generatorConfig, err := config.ParseGeneratorConfigString(configYAML)
	if err != nil {
		callback.Invoke(err.Error(), js.Null())
		return false
	}

	scripts, err := schema.GenerateAlterScripts(document, generatorConfig)
	if err != nil {
		callback.Invoke(err.Error(), js.Null())
		return false
	}

	out, err := json.Marshal(scripts)
	if err != nil {
		callback.Invoke(err.Error(), js.Null())
		return false
	}
	callback.Invoke(js.Null(), string(out))
	return true
}

func main() {
	c := make(chan bool)
	js.Global().Set("_DELTADEF", js.FuncOf(compile))
	<-c
}
