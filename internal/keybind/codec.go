package keybind

import (
	"errors"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var errMalformed = errors.New("malformed key binding document")

// storedBinding is one persisted (command, keys) pair.
type storedBinding struct {
	Command string
	Param   string
	Keys    string
}

// encodeBindings renders bindings as a JSON array.
func encodeBindings(bs []Binding) (string, error) {
	doc := "[]"
	var err error
	for i, b := range bs {
		idx := strconv.Itoa(i)
		if doc, err = sjson.Set(doc, idx+".command", b.Command); err != nil {
			return "", err
		}
		if b.Param != "" {
			if doc, err = sjson.Set(doc, idx+".param", b.Param); err != nil {
				return "", err
			}
		}
		if doc, err = sjson.Set(doc, idx+".keys", b.Keys); err != nil {
			return "", err
		}
	}
	return doc, nil
}

// decodeBindings parses the JSON array written by encodeBindings. Entries
// without a command or keys are dropped.
func decodeBindings(doc string) ([]storedBinding, error) {
	if !gjson.Valid(doc) {
		return nil, errMalformed
	}
	root := gjson.Parse(doc)
	if !root.IsArray() {
		return nil, errMalformed
	}

	var out []storedBinding
	root.ForEach(func(_, value gjson.Result) bool {
		sb := storedBinding{
			Command: value.Get("command").String(),
			Param:   value.Get("param").String(),
			Keys:    value.Get("keys").String(),
		}
		if sb.Command != "" && sb.Keys != "" {
			out = append(out, sb)
		}
		return true
	})
	return out, nil
}
