package util

import "encoding/json"

// ConvertStructToJson marshals v into a JSON string. Marshal failures
// collapse to an empty object, which keeps queue payloads decodable.
func ConvertStructToJson(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
