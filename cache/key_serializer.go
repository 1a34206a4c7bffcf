package cache

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = ":"

// hashedKeyMarker prefixes the digest of keys that exceeded the length limit.
const hashedKeyMarker = "xxh"

// defaultKeySerializer joins a namespace and its arguments with KeySeparator.
// Pointers are dereferenced, nil becomes "nil", slices are serialized
// element by element. Keys longer than maxLength are replaced by a digest.
type defaultKeySerializer struct {
	maxLength int
}

// NewDefaultKeySerializer creates a serializer that never hashes keys.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// NewHashingKeySerializer creates a serializer that replaces keys longer than
// maxLength with "<namespace>:xxh:<hex digest>". A maxLength of zero disables hashing.
func NewHashingKeySerializer(maxLength int) KeySerializer {
	return &defaultKeySerializer{maxLength: maxLength}
}

// SerializeKey builds a cache key from a namespace and args.
func (s *defaultKeySerializer) SerializeKey(namespace string, args ...any) string {
	if len(args) == 0 {
		return namespace
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, namespace)
	for _, arg := range args {
		parts = append(parts, s.serializeValue(arg))
	}

	key := strings.Join(parts, KeySeparator)
	if s.maxLength > 0 && len(key) > s.maxLength {
		digest := strconv.FormatUint(xxhash.Sum64String(key), 16)
		return namespace + KeySeparator + hashedKeyMarker + KeySeparator + digest
	}
	return key
}

// serializeValue handles individual argument serialization based on type.
func (s *defaultKeySerializer) serializeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case fmt.Stringer:
		return val.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "nil"
		}
		parts := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts[i] = s.serializeValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
