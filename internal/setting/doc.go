// Package setting provides typed, validated, observable configuration values.
//
// A Setting pairs a name with a default value and a current value. Assigning
// a value runs the validation of the setting's Kind; a rejected assignment
// leaves the current value untouched. Reset restores the default without
// validation.
//
// # Kinds
//
// Behavior specific to a value type lives behind the Kind interface:
//
//   - Generic: any value, no validation
//   - Int, Float: numbers with optional inclusive bounds
//   - Bool: booleans
//   - Enum: one of a fixed, ordered set of options
//   - String, NonEmptyString: text
//   - Reference: a handle to a live host object (image, drawable)
//
// # Streamlining
//
// Settings track which of value, ui_enabled and ui_visible were written since
// the last streamline. A streamline function adjusts a setting and the
// settings it depends on:
//
//	merge := setting.NewBool("merge_groups", false)
//	folders := setting.NewBool("groups_as_folders", false)
//
//	_ = merge.SetStreamlineFunc(func(s *setting.Setting, deps []*setting.Setting) error {
//	    on, _ := s.Value().(bool)
//	    deps[0].SetUIEnabled(!on)
//	    return nil
//	}, folders)
//
//	changes, err := merge.Streamline(false)
//
// Streamline calls the function only when something is dirty (or forced) and
// reports which attributes changed on which settings.
package setting
