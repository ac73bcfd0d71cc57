package media

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/akrylov/photosync/internal/models"
)

// cursorKey is the keyset position of the last asset of a page. Encoding
// the full sort key (mediaType, creationTime, id) keeps the order total:
// two assets with equal timestamps are still strictly ordered by id.
type cursorKey struct {
	MediaType    models.MediaType `json:"m"`
	CreationTime int64            `json:"t"` // unix milliseconds
	ID           string           `json:"i"`
}

func encodeCursor(a models.Asset) string {
	k := cursorKey{
		MediaType:    a.MediaType,
		CreationTime: a.CreationTime.UnixMilli(),
		ID:           a.ID,
	}
	b, _ := json.Marshal(k)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeCursor(cursor string) (cursorKey, error) {
	var k cursorKey
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return k, fmt.Errorf("malformed cursor: %w", err)
	}
	if err := json.Unmarshal(b, &k); err != nil {
		return k, fmt.Errorf("malformed cursor: %w", err)
	}
	return k, nil
}
