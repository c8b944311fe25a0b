// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianRoute/pkg/validation"
	"github.com/AleutianAI/AleutianRoute/services/dispatch/selection"
)

// manifestValidate is the validator instance for manifest datatypes.
var manifestValidate *validator.Validate

func init() {
	manifestValidate = validator.New()
}

// Manifest is the parsed form of an action manifest file.
type Manifest struct {
	// Actions lists the declared actions in file order. Order matters: it
	// determines result order inside a selection match group.
	Actions []ManifestAction `yaml:"actions" validate:"required,min=1,dive"`
}

// ManifestAction is one action declaration.
//
// An action is either value-routed (Route holds its route key/value
// constraints) or attribute-routed (Path holds an explicit pattern handled
// by the path router). Attribute-routed actions are carried through the
// catalog but excluded from the selection table.
type ManifestAction struct {
	// Name uniquely identifies the action within the manifest.
	Name string `yaml:"name" validate:"required,max=128"`

	// Handler names the code unit to invoke. Defaults to Name.
	Handler string `yaml:"handler" validate:"max=256"`

	// Path, when set, marks the action attribute-routed.
	Path string `yaml:"path" validate:"max=512"`

	// Route maps route key names to the declared string values. A key
	// declared with an empty value is equivalent to not declaring it.
	Route map[string]string `yaml:"route" validate:"max=32"`
}

// ParseManifest parses and validates raw manifest bytes.
//
// Validation covers YAML shape (via struct tags), action name and route key
// syntax (via pkg/validation), and name uniqueness. Errors wrap the
// package sentinels so callers can branch with errors.Is.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the action manifest: %w", err)
	}
	if len(m.Actions) == 0 {
		return nil, ErrNoActions
	}
	if err := manifestValidate.Struct(&m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAction, err)
	}

	seen := make(map[string]struct{}, len(m.Actions))
	for i := range m.Actions {
		a := &m.Actions[i]
		if err := validation.ValidateActionName(a.Name); err != nil {
			return nil, fmt.Errorf("%w: action %d: %w", ErrInvalidAction, i, err)
		}
		if _, dup := seen[a.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAction, a.Name)
		}
		seen[a.Name] = struct{}{}
		// Route keys are matched case-insensitively downstream, so two
		// spellings of one key within a single action would leave the
		// declared value ambiguous. Reject rather than pick a winner.
		folded := make(map[string]string, len(a.Route))
		for k := range a.Route {
			if err := validation.ValidateRouteKey(k); err != nil {
				return nil, fmt.Errorf("%w: action %q: %w", ErrInvalidAction, a.Name, err)
			}
			f := strings.ToLower(k)
			if prev, dup := folded[f]; dup {
				return nil, fmt.Errorf("%w: action %q: route keys %q and %q collide ignoring case",
					ErrInvalidAction, a.Name, prev, k)
			}
			folded[f] = k
		}
	}
	return &m, nil
}

// Stamp computes the opaque version stamp for raw manifest bytes: the
// lowercase hex SHA-256 of the content. Identical content always yields
// the same stamp, so a rewrite-in-place with no changes triggers no
// rebuild downstream.
func Stamp(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Collection converts the manifest into a selection snapshot carrying the
// given version stamp.
func (m *Manifest) Collection(stamp string) *selection.Collection {
	actions := make([]*selection.Action, 0, len(m.Actions))
	for i := range m.Actions {
		a := &m.Actions[i]
		handler := a.Handler
		if handler == "" {
			handler = a.Name
		}
		route := make(map[string]string, len(a.Route))
		for k, v := range a.Route {
			route[k] = v
		}
		actions = append(actions, &selection.Action{
			Name:            a.Name,
			Handler:         handler,
			RouteValues:     route,
			AttributeRouted: a.Path != "",
		})
	}
	return &selection.Collection{Version: stamp, Actions: actions}
}

// FromBytes parses raw manifest bytes into a stamped selection snapshot.
func FromBytes(data []byte) (*selection.Collection, error) {
	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	return m.Collection(Stamp(data)), nil
}

// LoadFile reads, parses, and stamps a manifest file.
func LoadFile(path string) (*selection.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the action manifest %s: %w", path, err)
	}
	col, err := FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return col, nil
}
