package simulation

import (
	"encoding/json"
	"os"

	. "github.com/onsi/gomega"
)

type dumpItem struct {
	Type  string          `json:"t"`
	Value json.RawMessage `json:"v"`
}

// stateDump is one component of a state dump. Every value lives in a flat
// dictionary; structs and slices refer to their members by dictionary ID.
type stateDump struct {
	Root string              `json:"r"`
	Dict map[string]dumpItem `json:"dict"`
}

func readStateDump(path string) map[string]stateDump {
	content, err := os.ReadFile(path)
	Expect(err).NotTo(HaveOccurred())

	var dumps map[string]stateDump
	Expect(json.Unmarshal(content, &dumps)).To(Succeed())

	return dumps
}

// resolve rebuilds the value at id. Structs become maps keyed by field name,
// slices become []any and numbers become float64. Values that were not
// expanded resolve to nil.
func (d stateDump) resolve(id string) any {
	raw := d.Dict[id].Value
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var fields map[string]string
	if json.Unmarshal(raw, &fields) == nil {
		out := make(map[string]any, len(fields))
		for name, fieldID := range fields {
			out[name] = d.resolve(fieldID)
		}

		return out
	}

	var elems []string
	if json.Unmarshal(raw, &elems) == nil {
		out := make([]any, 0, len(elems))
		for _, elemID := range elems {
			out = append(out, d.resolve(elemID))
		}

		return out
	}

	var scalar any
	Expect(json.Unmarshal(raw, &scalar)).To(Succeed())

	return scalar
}
