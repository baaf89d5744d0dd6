package kafka

import "encoding/json"

// MustMarshal is for values whose encoding cannot fail (plain structs).
func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
