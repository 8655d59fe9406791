package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value：数值点场条目，编码为 [lat, lon, value]
type Value struct {
	Lat, Lon float64
	V        float64
}

// Label：标签点场条目，编码为 [lat, lon, "label"]
type Label struct {
	Lat, Lon float64
	V        string
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{v.Lat, v.Lon, v.V})
}

// UnmarshalJSON：兼容三元组与 {"lat","lon","value"} 对象两种写法
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var o struct {
			Lat   float64 `json:"lat"`
			Lon   float64 `json:"lon"`
			Value float64 `json:"value"`
		}
		if err := json.Unmarshal(b, &o); err != nil {
			return err
		}
		*v = Value{Lat: o.Lat, Lon: o.Lon, V: o.Value}
		return nil
	}
	var a []float64
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a) != 3 {
		return fmt.Errorf("snapshot: value entry has %d elements, want 3", len(a))
	}
	*v = Value{Lat: a[0], Lon: a[1], V: a[2]}
	return nil
}

func (l Label) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]any{l.Lat, l.Lon, l.V})
}

func (l *Label) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var o struct {
			Lat   float64 `json:"lat"`
			Lon   float64 `json:"lon"`
			Value string  `json:"value"`
		}
		if err := json.Unmarshal(b, &o); err != nil {
			return err
		}
		*l = Label{Lat: o.Lat, Lon: o.Lon, V: o.Value}
		return nil
	}
	var a []json.RawMessage
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a) != 3 {
		return fmt.Errorf("snapshot: label entry has %d elements, want 3", len(a))
	}
	var out Label
	if err := json.Unmarshal(a[0], &out.Lat); err != nil {
		return err
	}
	if err := json.Unmarshal(a[1], &out.Lon); err != nil {
		return err
	}
	if err := json.Unmarshal(a[2], &out.V); err != nil {
		return err
	}
	*l = out
	return nil
}
