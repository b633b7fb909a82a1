package mongo

import (
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pagegrid/storelens/internal/db"
	"github.com/pagegrid/storelens/internal/domain/query/filter"
	"github.com/pagegrid/storelens/internal/domain/query/pipeline"
)

// filterDoc converts a sanitized filter tree into driver syntax. Keys are
// emitted in sorted order so the same tree always produces the same wire
// document.
func filterDoc(e filter.Expr) bson.D {
	return asBSONDoc(filter.Encode(e))
}

// pipelineDoc converts sanitized stages into driver syntax.
func pipelineDoc(stages []pipeline.Stage) mongo.Pipeline {
	encoded := pipeline.Encode(stages)
	out := make(mongo.Pipeline, len(encoded))
	for i, stage := range encoded {
		out[i] = asBSONDoc(stage)
	}
	return out
}

func sortDoc(keys []db.SortKey) bson.D {
	out := make(bson.D, len(keys))
	for i, k := range keys {
		out[i] = bson.E{Key: k.Field, Value: k.Order}
	}
	return out
}

func projectionDoc(projection map[string]int) bson.D {
	fields := make([]string, 0, len(projection))
	for f := range projection {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := make(bson.D, 0, len(fields))
	for _, f := range fields {
		out = append(out, bson.E{Key: f, Value: projection[f]})
	}
	return out
}

func asBSONDoc(m map[string]any) bson.D {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(bson.D, 0, len(keys))
	for _, k := range keys {
		out = append(out, bson.E{Key: k, Value: asBSONValue(m[k])})
	}
	return out
}

func asBSONValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return asBSONDoc(t)
	case []any:
		out := make(bson.A, len(t))
		for i, item := range t {
			out[i] = asBSONValue(item)
		}
		return out
	case []map[string]any:
		out := make(bson.A, len(t))
		for i, item := range t {
			out[i] = asBSONDoc(item)
		}
		return out
	default:
		return v
	}
}

func normalizeAll(raw []bson.M) []db.Document {
	out := make([]db.Document, len(raw))
	for i, doc := range raw {
		out[i] = normalizeDocument(doc)
	}
	return out
}

// normalizeDocument flattens driver types into plain Go values so results
// marshal cleanly: ObjectIDs become hex strings, timestamps become UTC
// time values, decimals become strings.
func normalizeDocument(raw bson.M) db.Document {
	out := make(db.Document, len(raw))
	for k, v := range raw {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.Decimal128:
		return t.String()
	case primitive.Binary:
		return t.Data
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalizeValue(e.Value)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeValue(val)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	default:
		return v
	}
}
