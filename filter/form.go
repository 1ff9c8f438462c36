// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/penny-vault/pvscreen/data"
)

// FieldsPerGroup is the number of tracked fields shown on one form page
const FieldsPerGroup = 4

// Input holds the form state for one tracked field. Threshold is kept as
// text so the form can validate it while the user types.
type Input struct {
	Field     *data.Field
	Threshold string
	Operator  Operator

	// Fixed hides the operator selection
	Fixed bool
}

// Inputs is the state of the whole filter form
type Inputs []*Input

// NewInputs returns one input per field with a zero threshold and the
// greater-than comparison
func NewInputs(fields []*data.Field) Inputs {
	inputs := make(Inputs, 0, len(fields))
	for _, field := range fields {
		inputs = append(inputs, &Input{Field: field, Threshold: "0", Operator: GreaterThan})
	}
	return inputs
}

// NewSimpleInputs returns the free and operating cash flow inputs, both fixed
// to less-than
func NewSimpleInputs() Inputs {
	inputs := make(Inputs, 0, 2)
	for _, cond := range Simple(0, 0) {
		inputs = append(inputs, &Input{Field: cond.Field, Threshold: "0", Operator: cond.Operator, Fixed: true})
	}
	return inputs
}

// ValidateThreshold accepts any number, with or without thousands separators
func ValidateThreshold(s string) error {
	_, err := parseThreshold(s)
	return err
}

func parseThreshold(s string) (float64, error) {
	val, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return val, nil
}

// Criteria converts the form state into conditions, in form order
func (inputs Inputs) Criteria() (Criteria, error) {
	criteria := make(Criteria, 0, len(inputs))
	for _, input := range inputs {
		threshold, err := parseThreshold(input.Threshold)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCondition, input.Field.Key, err)
		}
		criteria = append(criteria, Condition{Field: input.Field, Operator: input.Operator, Threshold: threshold})
	}
	return criteria, nil
}

// OperatorLabel is the text shown for an operator in the form
func OperatorLabel(op Operator) string {
	return strings.ReplaceAll(string(op), "_", " ")
}

func (input *Input) fields() []huh.Field {
	out := []huh.Field{
		huh.NewInput().
			Title(input.Field.Label).
			Value(&input.Threshold).
			Validate(ValidateThreshold),
	}

	if input.Fixed {
		return out
	}

	options := make([]huh.Option[Operator], 0, len(Operators))
	for _, op := range Operators {
		options = append(options, huh.NewOption(OperatorLabel(op), op))
	}

	return append(out, huh.NewSelect[Operator]().
		Title(fmt.Sprintf("Filter %s", input.Field.Label)).
		Options(options...).
		Value(&input.Operator))
}

// Groups lays the inputs out FieldsPerGroup to a page
func (inputs Inputs) Groups() []*huh.Group {
	groups := make([]*huh.Group, 0, len(inputs)/FieldsPerGroup+1)
	for start := 0; start < len(inputs); start += FieldsPerGroup {
		end := min(start+FieldsPerGroup, len(inputs))

		fields := make([]huh.Field, 0, 2*FieldsPerGroup)
		for _, input := range inputs[start:end] {
			fields = append(fields, input.fields()...)
		}
		groups = append(groups, huh.NewGroup(fields...))
	}
	return groups
}

// Form builds the filter form. The final page asks whether to dump the whole
// table into showAll.
func (inputs Inputs) Form(showAll *bool) *huh.Form {
	groups := inputs.Groups()
	groups = append(groups, huh.NewGroup(
		huh.NewConfirm().
			Title("Show database contents?").
			Value(showAll),
	))
	return huh.NewForm(groups...)
}
