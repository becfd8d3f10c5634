package model

import (
	"strings"

	"github.com/bytedance/sonic"
)

// MetricInfo describes one entry of a season-dependent metric list.
type MetricInfo struct {
	Name      string `json:"name"`
	Precision int    `json:"precision"`
}

// MetricName normalizes a metric display name into a field name: lowercase,
// spaces become "_", and "+" becomes "plus" prefixed by "_" unless one is
// already there.
func MetricName(name string) string {
	name = strings.ReplaceAll(strings.ToLower(name), " ", "_")

	var b strings.Builder
	b.Grow(len(name) + 8)
	for i, r := range name {
		if r != '+' {
			b.WriteRune(r)
			continue
		}
		if i > 0 && name[i-1] != '_' {
			b.WriteByte('_')
		}
		b.WriteString("plus")
	}
	return b.String()
}

// NamedValues maps normalized metric names to values, keeping the order in
// which the metadata listed them.
type NamedValues struct {
	names  []string
	values map[string]float64
}

// NewNamedValues zips values against info. Extra entries on either side are
// ignored.
func NewNamedValues(values []float64, info []MetricInfo) NamedValues {
	n := min(len(values), len(info))
	nv := NamedValues{
		names:  make([]string, 0, n),
		values: make(map[string]float64, n),
	}
	for i := 0; i < n; i++ {
		name := MetricName(info[i].Name)
		if _, dup := nv.values[name]; !dup {
			nv.names = append(nv.names, name)
		}
		nv.values[name] = values[i]
	}
	return nv
}

// Get returns the value of a normalized metric name.
func (nv NamedValues) Get(name string) (float64, bool) {
	v, ok := nv.values[name]
	return v, ok
}

// Has reports whether the metric exists.
func (nv NamedValues) Has(name string) bool {
	_, ok := nv.values[name]
	return ok
}

// Names returns the metric names in metadata order.
func (nv NamedValues) Names() []string {
	out := make([]string, len(nv.names))
	copy(out, nv.names)
	return out
}

// Len returns the number of metrics.
func (nv NamedValues) Len() int {
	return len(nv.names)
}

// Map returns a copy of the name to value mapping.
func (nv NamedValues) Map() map[string]float64 {
	out := make(map[string]float64, len(nv.values))
	for k, v := range nv.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the metrics as a JSON object.
func (nv NamedValues) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(nv.Map())
}
