package todoist

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// hydrate fills v's named fields from a JSON object and returns any keys the
// schema does not recognize, so an object's attribute set stays a superset
// of the fixed schema when the service adds fields.
func hydrate(data json.RawMessage, v any) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("todoist: failed to decode %T: %w", v, err)
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("todoist: failed to decode %T keys: %w", v, err)
	}
	t := reflect.TypeOf(v).Elem()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.SplitN(tag, ",", 2)[0]
		delete(all, name)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}
