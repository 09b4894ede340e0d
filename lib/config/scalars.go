package config

import (
	"strconv"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// IntOrAuto is a topology count that is either an explicit integer or the
// literal string "auto", resolved by the launcher against detected hardware.
type IntOrAuto struct {
	auto  bool
	value int
}

// Auto returns the "auto" sizing value.
func Auto() IntOrAuto {
	return IntOrAuto{auto: true}
}

// Count returns an explicit sizing value.
func Count(n int) IntOrAuto {
	return IntOrAuto{value: n}
}

// IsAuto reports whether the value is the literal "auto".
func (v IntOrAuto) IsAuto() bool {
	return v.auto
}

// Value returns the explicit count. Zero when IsAuto.
func (v IntOrAuto) Value() int {
	return v.value
}

func (v IntOrAuto) String() string {
	if v.auto {
		return "auto"
	}
	return strconv.Itoa(v.value)
}

// ParseIntOrAuto parses "auto" or a base-10 integer.
func ParseIntOrAuto(s string) (IntOrAuto, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "auto") {
		return Auto(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return IntOrAuto{}, oops.Errorf("expected integer or \"auto\", got %q", s)
	}
	return Count(n), nil
}

// MarshalYAML emits the bare integer, or the unquoted scalar auto.
func (v IntOrAuto) MarshalYAML() (interface{}, error) {
	if v.auto {
		return "auto", nil
	}
	return v.value, nil
}

// MarshalJSON emits the integer, or the string "auto".
func (v IntOrAuto) MarshalJSON() ([]byte, error) {
	if v.auto {
		return []byte(`"auto"`), nil
	}
	return []byte(strconv.Itoa(v.value)), nil
}

// UnmarshalJSON accepts a number or the string "auto".
func (v *IntOrAuto) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	parsed, err := ParseIntOrAuto(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// UnmarshalYAML accepts an integer node or the string "auto".
func (v *IntOrAuto) UnmarshalYAML(node *yaml.Node) error {
	var n int
	if err := node.Decode(&n); err == nil {
		*v = Count(n)
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return oops.Errorf("expected integer or \"auto\", got %s", node.ShortTag())
	}
	parsed, err := ParseIntOrAuto(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// YesNo is the 'yes'/'no' string toggle used by the downcast_bf16 key.
// The consuming launcher expects a quoted string here, not a YAML bool,
// so marshaling always emits a single-quoted scalar.
type YesNo string

const (
	Yes YesNo = "yes"
	No  YesNo = "no"
)

// Bool reports the toggle as a boolean.
func (v YesNo) Bool() bool {
	return v == Yes
}

// IsValid reports whether the toggle is exactly "yes" or "no".
func (v YesNo) IsValid() bool {
	return v == Yes || v == No
}

func (v YesNo) String() string {
	return string(v)
}

// MarshalYAML emits the toggle single-quoted so it survives YAML 1.1
// consumers that would otherwise read a bare yes/no as a boolean.
func (v YesNo) MarshalYAML() (interface{}, error) {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Style: yaml.SingleQuotedStyle,
		Value: string(v),
	}, nil
}

// UnmarshalYAML accepts the strings yes/no in any quoting style, plus
// boolean nodes written by YAML 1.1 emitters.
func (v *YesNo) UnmarshalYAML(node *yaml.Node) error {
	var b bool
	if err := node.Decode(&b); err == nil {
		if b {
			*v = Yes
		} else {
			*v = No
		}
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return oops.Errorf("expected 'yes' or 'no', got %s", node.ShortTag())
	}
	parsed := YesNo(strings.ToLower(strings.TrimSpace(s)))
	if !parsed.IsValid() {
		return oops.Errorf("expected 'yes' or 'no', got %q", s)
	}
	*v = parsed
	return nil
}
