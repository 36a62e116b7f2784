// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package settings

import (
	"errors"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ErrHCLBlocks is returned when an HCL configuration uses blocks. Only
// top-level attributes are supported.
var ErrHCLBlocks = errors.New("blocks are not supported, use attributes")

// hclToJSON evaluates every top-level attribute of an HCL file and renders the
// resulting object as JSON.
func hclToJSON(name string, content []byte) ([]byte, error) {
	file, diags := hclsyntax.ParseConfig(content, name, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if ok && len(body.Blocks) > 0 {
		b := body.Blocks[0]
		return nil, errors.Join(ErrHCLBlocks, errors.New(b.Type+" at "+b.DefRange().String()))
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	evalCtx := EvalContext()
	values := make(map[string]cty.Value, len(attrs))

	for k, attr := range attrs {
		v, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, diags
		}

		values[k] = v
	}

	obj := cty.EmptyObjectVal
	if len(values) > 0 {
		obj = cty.ObjectVal(values)
	}

	return ctyjson.Marshal(obj, obj.Type())
}

// EvalContext is the context HCL configuration is evaluated in. It exposes
// env.<NAME> for the process environment, home for the user's home
// directory, and a handful of string functions.
func EvalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" || !hclsyntax.ValidIdentifier(k) {
			continue
		}

		env[k] = cty.StringVal(v)
	}

	envVal := cty.EmptyObjectVal
	if len(env) > 0 {
		envVal = cty.ObjectVal(env)
	}

	home, err := HomeDir()
	if err != nil {
		home = ""
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env":  envVal,
			"home": cty.StringVal(home),
		},
		Functions: map[string]function.Function{
			"upper":     stdlib.UpperFunc,
			"lower":     stdlib.LowerFunc,
			"join":      stdlib.JoinFunc,
			"format":    stdlib.FormatFunc,
			"trimspace": stdlib.TrimSpaceFunc,
		},
	}
}
