// Package script implements the body's python_interpreter tool (spec §6
// "python_interpreter.function_execute(script_code, function_params,
// function_name) → any"). Grounded on
// engine/runtime/scripts/test_runtime.go and interface_test.go's
// ExecuteTool/ExecuteToolWithTimeout/GetGlobalTimeout shape, adapted from
// shelling out to bun (the teacher's JS/TS sandbox) to shelling out to
// python3, since this spec's scripts are Python functions (S3/S4 "a
// function main(x) returning x*2").
package script

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Config mirrors the teacher's runtime.Config trimmed to what
// function_execute needs: an overall timeout and the interpreter binary.
type Config struct {
	Timeout    time.Duration
	Executable string // default "python3"
}

// DefaultConfig returns a 30s timeout against the python3 on PATH, mirroring
// the teacher's GetGlobalTimeout default magnitude (seconds, not minutes,
// since this spec's scripts are single pure functions, not long tool runs).
func DefaultConfig() Config {
	return Config{Timeout: 30 * time.Second, Executable: "python3"}
}

// Interpreter is the python_interpreter tool.
type Interpreter struct {
	cfg Config
}

// New builds an Interpreter. A zero Config falls back to DefaultConfig.
func New(cfg Config) *Interpreter {
	if cfg.Executable == "" {
		cfg.Executable = DefaultConfig().Executable
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Interpreter{cfg: cfg}
}

// runnerTemplate is appended to the user's script so it becomes directly
// executable: it calls functionName with the JSON-decoded params and prints
// the JSON-encoded return value on its own output line, bracketed by a
// sentinel so stdout produced by the script body itself (print statements)
// doesn't get misread as the result.
const resultSentinel = "__NORMCODE_RESULT__"

const runnerTemplate = `
import json as _normcode_json
_normcode_params = _normcode_json.loads(%q)
_normcode_result = %s(**_normcode_params)
print(%q + _normcode_json.dumps(_normcode_result))
`

// FunctionExecute implements python_interpreter.function_execute: it writes
// scriptCode plus a small runner footer to a temp file, executes it with
// functionParams JSON-encoded as the function's kwargs, and decodes the
// printed JSON result.
func (i *Interpreter) FunctionExecute(
	ctx context.Context,
	scriptCode string,
	functionParams map[string]any,
	functionName string,
) (any, error) {
	paramsJSON, err := json.Marshal(functionParams)
	if err != nil {
		return nil, fmt.Errorf("script: encoding function params: %w", err)
	}

	dir, err := os.MkdirTemp("", "normcode-script-")
	if err != nil {
		return nil, fmt.Errorf("script: creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	scriptPath := filepath.Join(dir, "script.py")
	footer := fmt.Sprintf(runnerTemplate, string(paramsJSON), functionName, resultSentinel)
	full := scriptCode + "\n" + footer
	if err := os.WriteFile(scriptPath, []byte(full), 0o644); err != nil {
		return nil, fmt.Errorf("script: writing script file: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, i.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, i.cfg.Executable, scriptPath)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("script: function %q failed: %w", functionName, err)
	}

	line, err := lastSentinelLine(string(out))
	if err != nil {
		return nil, err
	}
	var result any
	if err := json.Unmarshal([]byte(line), &result); err != nil {
		return nil, fmt.Errorf("script: decoding result of %q: %w", functionName, err)
	}
	return result, nil
}

func lastSentinelLine(output string) (string, error) {
	idx := -1
	for i := 0; i+len(resultSentinel) <= len(output); i++ {
		if output[i:i+len(resultSentinel)] == resultSentinel {
			idx = i
		}
	}
	if idx < 0 {
		return "", fmt.Errorf("script: no result sentinel found in output")
	}
	rest := output[idx+len(resultSentinel):]
	for i, c := range rest {
		if c == '\n' {
			return rest[:i], nil
		}
	}
	return rest, nil
}

// Invoke implements composition.Invokable: the only affordance method is
// "function_execute", taking kwargs {script_code, function_params,
// function_name}.
func (i *Interpreter) Invoke(method string, kwargs map[string]any, _ []any) (any, error) {
	if method != "function_execute" {
		return nil, fmt.Errorf("script: unknown method %q", method)
	}
	scriptCode, _ := kwargs["script_code"].(string)
	functionName, _ := kwargs["function_name"].(string)
	params, _ := kwargs["function_params"].(map[string]any)
	return i.FunctionExecute(context.Background(), scriptCode, params, functionName)
}
