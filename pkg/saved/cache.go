package saved

import (
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/acvora/acvora/pkg/catalog"
)

// ParseCache extracts the course ids ("_id", else "id") from a cached JSON
// array of saved course objects. ok is false when raw is empty or malformed.
func ParseCache(raw string) (ids []string, ok bool) {
	if raw == "" || !gjson.Valid(raw) {
		return nil, false
	}
	arr := gjson.Parse(raw)
	if !arr.IsArray() {
		return nil, false
	}
	ids = []string{}
	arr.ForEach(func(_, v gjson.Result) bool {
		if id := catalog.RecordID(v); id != "" {
			ids = append(ids, id)
		}
		return true
	})
	return ids, true
}

func validArray(raw string) string {
	if raw == "" || !gjson.Valid(raw) || !gjson.Parse(raw).IsArray() {
		return "[]"
	}
	return raw
}

func appendToCache(raw string, c catalog.Course) string {
	out, err := sjson.Set(validArray(raw), "-1", map[string]string{
		"_id":         c.ID,
		"courseTitle": c.Title,
		"eligibility": c.Eligibility,
	})
	if err != nil {
		return raw
	}
	return out
}

func removeFromCache(raw, id string) string {
	out := validArray(raw)
	// walk backwards so indexes stay valid after each delete
	elems := gjson.Parse(out).Array()
	for i := len(elems) - 1; i >= 0; i-- {
		if catalog.RecordID(elems[i]) != id {
			continue
		}
		next, err := sjson.Delete(out, strconv.Itoa(i))
		if err != nil {
			return out
		}
		out = next
	}
	return out
}

// rebuildCache keeps the cached objects whose id the server still reports and
// adds a bare object for every id the cache did not know about.
func rebuildCache(raw string, ids []string) string {
	want := toSet(ids)
	out := validArray(raw)

	elems := gjson.Parse(out).Array()
	known := map[string]struct{}{}
	for i := len(elems) - 1; i >= 0; i-- {
		id := catalog.RecordID(elems[i])
		if _, ok := want[id]; ok {
			known[id] = struct{}{}
			continue
		}
		if next, err := sjson.Delete(out, strconv.Itoa(i)); err == nil {
			out = next
		}
	}
	for _, id := range ids {
		if _, ok := known[id]; ok || id == "" {
			continue
		}
		if next, err := sjson.Set(out, "-1", map[string]string{"_id": id}); err == nil {
			out = next
		}
		known[id] = struct{}{}
	}
	return out
}
