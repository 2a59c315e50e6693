package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"go.aimuz.me/quill/internal/types"
)

// NoToneID is the preset that keeps the original tone.
const NoToneID = "default-none"

// DefaultTonePresets returns the built-in presets.
func DefaultTonePresets() []types.TonePreset {
	return []types.TonePreset{
		{ID: NoToneID, Name: "No tone", Description: "Keep the tone of the original text.", IsDefault: true},
		{ID: "default-eager-newbie", Name: "Eager new hire", Description: "Bright, polite and enthusiastic, like a keen new employee.", IsDefault: true},
		{ID: "default-cat", Name: "Cat", Description: "Answer like a cat, with meows sprinkled in.", IsDefault: true},
		{ID: "default-friendly", Name: "Friendly", Description: "Warm and casual instead of stiff and formal.", IsDefault: true},
		{ID: "default-ieungBatchim", Name: "Ieung batchim", Description: "Attach an ieung final consonant to every word.", IsDefault: true},
		{ID: "default-shyDisposition", Name: "Shy", Description: "A very timid seven-year-old who hesitates over every word.", IsDefault: true},
		{ID: "default-exclamationMark", Name: "Exclamation marks", Description: "Always end sentences with an exclamation mark.", IsDefault: true},
	}
}

// InitTonePresets installs the defaults when no presets exist and repairs a
// selection that points at a missing preset.
func (s *Settings) InitTonePresets() {
	if len(s.TonePresets) == 0 {
		s.TonePresets = DefaultTonePresets()
		s.SelectedTonePresetID = NoToneID
	}
	if s.findTone(s.SelectedTonePresetID) == -1 {
		s.SelectedTonePresetID = NoToneID
	}
}

// SelectedTonePreset returns the active preset, or nil when none matches.
func (s *Settings) SelectedTonePreset() *types.TonePreset {
	idx := s.findTone(s.SelectedTonePresetID)
	if idx == -1 {
		return nil
	}
	p := s.TonePresets[idx]
	return &p
}

// TonePreset returns the preset with id.
func (s *Settings) TonePreset(id string) (types.TonePreset, bool) {
	idx := s.findTone(id)
	if idx == -1 {
		return types.TonePreset{}, false
	}
	return s.TonePresets[idx], true
}

// AddTonePreset creates a user preset and returns it.
func (s *Settings) AddTonePreset(name, description string) (types.TonePreset, error) {
	if err := validateTone(name, description); err != nil {
		return types.TonePreset{}, err
	}
	p := types.TonePreset{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}
	s.TonePresets = append(s.TonePresets, p)
	return p, nil
}

// UpdateTonePreset changes the name and description of a preset.
func (s *Settings) UpdateTonePreset(id, name, description string) error {
	if err := validateTone(name, description); err != nil {
		return err
	}
	idx := s.findTone(id)
	if idx == -1 {
		return fmt.Errorf("tone preset not found: %s", id)
	}
	s.TonePresets[idx].Name = strings.TrimSpace(name)
	s.TonePresets[idx].Description = strings.TrimSpace(description)
	return nil
}

// DeleteTonePreset removes a preset. Deleting the selected preset selects
// NoToneID. The NoToneID preset itself cannot be deleted.
func (s *Settings) DeleteTonePreset(id string) error {
	if id == NoToneID {
		return fmt.Errorf("tone preset %s cannot be deleted", NoToneID)
	}
	idx := s.findTone(id)
	if idx == -1 {
		return fmt.Errorf("tone preset not found: %s", id)
	}

	s.TonePresets = slices.Delete(s.TonePresets, idx, idx+1)
	if s.SelectedTonePresetID == id {
		s.SelectedTonePresetID = NoToneID
	}
	return nil
}

// SelectTonePreset makes id the active preset.
func (s *Settings) SelectTonePreset(id string) error {
	if s.findTone(id) == -1 {
		return fmt.Errorf("tone preset not found: %s", id)
	}
	s.SelectedTonePresetID = id
	return nil
}

func (s *Settings) findTone(id string) int {
	return slices.IndexFunc(s.TonePresets, func(p types.TonePreset) bool {
		return p.ID == id
	})
}

func validateTone(name, description string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("tone name required")
	}
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("tone description required")
	}
	return nil
}
