// internal/app/system/paging/paging.go
package paging

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PageSize is the default number of rows in a "load more" page.
const PageSize = 50

// MaxPageSize caps client-supplied limits.
const MaxPageSize = 200

// ParseLimit reads the "n" query parameter, falling back to def and capping
// at MaxPageSize.
func ParseLimit(r *http.Request, def int) int {
	s := query.Get(r, "n")
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// LimitPlusOne returns n+1 as int64 for look-ahead pagination
// (fetch one extra row to detect a next page).
func LimitPlusOne(n int) int64 { return int64(n + 1) }

// TrimPage trims a slice fetched with LimitPlusOne(n) back to n rows and
// reports whether more rows exist.
func TrimPage[T any](rows *[]T, n int) (hasNext bool) {
	if len(*rows) > n {
		*rows = (*rows)[:n]
		return true
	}
	return false
}

/* -------------------------------------------------------------------------- */
/* Opaque cursors                                                             */
/* -------------------------------------------------------------------------- */

const sep = "\x1f"

// Encode packs cursor parts into an opaque URL-safe token.
func Encode(parts ...string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strings.Join(parts, sep)))
}

// Decode unpacks a token produced by Encode. ok is false when the token is
// malformed or does not have exactly n parts.
func Decode(token string, n int) ([]string, bool) {
	if token == "" {
		return nil, false
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, false
	}
	parts := strings.Split(string(raw), sep)
	if len(parts) != n {
		return nil, false
	}
	return parts, true
}

// TimeCursor identifies a row in a (created_at desc, _id desc) listing.
type TimeCursor struct {
	At time.Time
	ID primitive.ObjectID
}

// EncodeTime builds the cursor for the last row of a page.
func EncodeTime(at time.Time, id primitive.ObjectID) string {
	return Encode(strconv.FormatInt(at.UnixMilli(), 10), id.Hex())
}

// DecodeTime parses a cursor produced by EncodeTime.
func DecodeTime(token string) (TimeCursor, bool) {
	parts, ok := Decode(token, 2)
	if !ok {
		return TimeCursor{}, false
	}
	ms, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return TimeCursor{}, false
	}
	id, err := primitive.ObjectIDFromHex(parts[1])
	if err != nil {
		return TimeCursor{}, false
	}
	return TimeCursor{At: time.UnixMilli(ms).UTC(), ID: id}, true
}

// AfterDesc is the filter clause selecting rows strictly after c in a
// (field desc, _id desc) ordering.
func (c TimeCursor) AfterDesc(field string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{field: bson.M{"$lt": c.At}},
		bson.M{field: c.At, "_id": bson.M{"$lt": c.ID}},
	}}
}
