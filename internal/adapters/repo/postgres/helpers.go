package postgres

import (
	"encoding/json"

	"gorm.io/gorm/clause"
)

func lockForUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// jsonValue serializes a value for a raw jsonb column update. gorm's json
// serializer only runs on full-struct writes, not on Updates maps.
func jsonValue(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
