/*
 * file.go, part of pyxtalstep.
 *
 * Copyright 2024 The pyxtalstep Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package params

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// StepType is the label of the step block in a parameter file.
const StepType = "pyxtal"

// File is the content of a parameter file:
//
//	variables {
//	  n = 4
//	}
//
//	step "pyxtal" {
//	  build_type     = "molecules"
//	  dimensionality = "2-D layer"
//	  symmetry       = "p1"
//	  n_molecules    = "$n"
//	  thickness      = 0.6
//
//	  units {
//	    thickness = "nm"
//	  }
//	}
type File struct {
	Title     string
	Variables map[string]cty.Value
	Params    *Set
}

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "variables"},
		{Type: "step", LabelNames: []string{"type"}},
	},
	Attributes: []hcl.AttributeSchema{
		{Name: "title"},
	},
}

var stepSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{{Type: "units"}},
}

// LoadFile reads a parameter file.
func LoadFile(path string, schema Schema) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(src, path, schema)
}

// Load parses the parameter file in src. Parameters not given keep their defaults.
func Load(src []byte, filename string, schema Schema) (*File, error) {
	f, diags := hclsyntax.ParseConfig(src, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, diags
	}
	content, diags := f.Body.Content(fileSchema)
	if diags.HasErrors() {
		return nil, diags
	}
	F := &File{Variables: map[string]cty.Value{}, Params: NewSet(schema)}
	if attr, ok := content.Attributes["title"]; ok {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		title, err := literalText(v)
		if err != nil {
			return nil, fmt.Errorf("%s: title: %w", filename, err)
		}
		F.Title = title
	}
	nsteps := 0
	for _, block := range content.Blocks {
		switch block.Type {
		case "variables":
			attrs, diags := block.Body.JustAttributes()
			if diags.HasErrors() {
				return nil, diags
			}
			for name, attr := range attrs {
				v, diags := attr.Expr.Value(nil)
				if diags.HasErrors() {
					return nil, diags
				}
				F.Variables[name] = v
			}
		case "step":
			if block.Labels[0] != StepType {
				return nil, fmt.Errorf("%s: unsupported step type %q", filename, block.Labels[0])
			}
			nsteps++
			if nsteps > 1 {
				return nil, fmt.Errorf("%s: more than one step block", filename)
			}
			if err := loadStep(block.Body, F.Params); err != nil {
				return nil, fmt.Errorf("%s: %w", filename, err)
			}
		}
	}
	return F, nil
}

func loadStep(body hcl.Body, set *Set) error {
	content, remain, diags := body.PartialContent(stepSchema)
	if diags.HasErrors() {
		return diags
	}
	attrs, diags := remain.JustAttributes()
	if diags.HasErrors() {
		return diags
	}
	for name, attr := range attrs {
		canon, ok := set.schema.canonical(name)
		if !ok {
			return fmt.Errorf("unknown parameter %q", name)
		}
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return diags
		}
		text, err := literalText(v)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", name, err)
		}
		if err := set.SetText(canon, text); err != nil {
			return err
		}
	}
	for _, block := range content.Blocks {
		attrs, diags := block.Body.JustAttributes()
		if diags.HasErrors() {
			return diags
		}
		for name, attr := range attrs {
			canon, ok := set.schema.canonical(name)
			if !ok {
				return fmt.Errorf("units for unknown parameter %q", name)
			}
			v, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return diags
			}
			u, err := literalText(v)
			if err != nil {
				return fmt.Errorf("units of %q: %w", name, err)
			}
			if _, _, err := parseUnit(u); err != nil {
				return fmt.Errorf("units of %q: %w", name, err)
			}
			val := set.Get(canon)
			val.Units = u
			set.values[canon] = val
		}
	}
	return nil
}

func literalText(v cty.Value) (string, error) {
	if v.IsNull() {
		return "", nil
	}
	switch v.Type() {
	case cty.String:
		return v.AsString(), nil
	case cty.Number:
		return v.AsBigFloat().Text('g', -1), nil
	case cty.Bool:
		return strconv.FormatBool(v.True()), nil
	}
	return "", fmt.Errorf("%w: %s is not a scalar", ErrValue, v.Type().FriendlyName())
}

// Save writes F in the format read by Load.
func (F *File) Save(w io.Writer) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()
	if F.Title != "" {
		root.SetAttributeValue("title", cty.StringVal(F.Title))
		root.AppendNewline()
	}
	if len(F.Variables) > 0 {
		vb := root.AppendNewBlock("variables", nil).Body()
		names := make([]string, 0, len(F.Variables))
		for n := range F.Variables {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			vb.SetAttributeValue(n, F.Variables[n])
		}
		root.AppendNewline()
	}
	sb := root.AppendNewBlock("step", []string{StepType}).Body()
	var withUnits []string
	for _, d := range F.Params.schema {
		v := F.Params.Get(d.Name)
		sb.SetAttributeValue(attrName(d.Name), literalValue(d, v))
		if v.Units != "" && v.Units != d.DefaultUnits {
			withUnits = append(withUnits, d.Name)
		}
	}
	if len(withUnits) > 0 {
		sb.AppendNewline()
		ub := sb.AppendNewBlock("units", nil).Body()
		for _, n := range withUnits {
			ub.SetAttributeValue(attrName(n), cty.StringVal(F.Params.Get(n).Units))
		}
	}
	_, err := w.Write(f.Bytes())
	return err
}

// SaveFile writes F to path.
func (F *File) SaveFile(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := F.Save(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func attrName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// literalValue writes numbers and booleans as such, and everything else,
// expressions included, as strings.
func literalValue(d Descriptor, v Value) cty.Value {
	if v.IsExpr() {
		return cty.StringVal(v.Text)
	}
	switch d.Kind {
	case Integer:
		if i, err := strconv.ParseInt(v.Text, 10, 64); err == nil {
			return cty.NumberIntVal(i)
		}
	case Float:
		if f, err := strconv.ParseFloat(v.Text, 64); err == nil {
			return cty.NumberFloatVal(f)
		}
	case Boolean:
		if b, err := strconv.ParseBool(v.Text); err == nil {
			return cty.BoolVal(b)
		}
	}
	return cty.StringVal(v.Text)
}
