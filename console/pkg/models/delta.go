package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Delta is a summary change value: either a signed number or free text.
// The zero value is the number 0.
type Delta struct {
	number float64
	text   string
	isText bool
}

func NumberDelta(v float64) Delta {
	return Delta{number: v}
}

func TextDelta(s string) Delta {
	return Delta{text: s, isText: true}
}

func (d Delta) IsText() bool {
	return d.isText
}

func (d Delta) Number() float64 {
	return d.number
}

func (d Delta) Text() string {
	return d.text
}

func (d *Delta) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = Delta{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode text delta: %w", err)
		}
		*d = TextDelta(s)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("failed to decode numeric delta: %w", err)
	}
	*d = NumberDelta(v)
	return nil
}

func (d Delta) MarshalJSON() ([]byte, error) {
	if d.isText {
		return json.Marshal(d.text)
	}
	return json.Marshal(d.number)
}
