package fit

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/elliotchance/orderedmap/v3"
	"golang.org/x/text/encoding/unicode"

	"github.com/twinfer/fit-plugin/pkg/profile"
)

type memoGlobKey struct {
	mesgNum     string
	parentIndex int64
	fieldNum    int64
}

type memoGlobPart struct {
	partIndex int64
	data      []byte
}

// DecodeMemoGlobs reassembles memo glob parts into strings and writes each
// string into the field of the message it annotates. Parts are grouped by
// target message, parent index and field, ordered by part index. Targets
// that were not decoded are skipped.
func DecodeMemoGlobs(messages map[string][]*Message, p ProfileLookup) {
	memoGlobs := messages["memoGlobMesgs"]
	if len(memoGlobs) == 0 {
		return
	}

	groups := orderedmap.NewOrderedMap[memoGlobKey, []memoGlobPart]()
	for _, mesg := range memoGlobs {
		mesgNum, _ := mesg.Get("mesgNum")
		parentIndex, _ := mesg.Get("parentIndex")
		fieldNum, _ := mesg.Get("fieldNum")
		partIndex, _ := mesg.Get("partIndex")
		data, _ := mesg.Get("data")

		key := memoGlobKey{mesgNum: fmt.Sprint(mesgNum)}
		key.parentIndex, _ = toInt64(parentIndex)
		key.fieldNum, _ = toInt64(fieldNum)

		part := memoGlobPart{data: memoGlobBytes(data)}
		part.partIndex, _ = toInt64(partIndex)

		parts, _ := groups.Get(key)
		groups.Set(key, append(parts, part))
	}

	for key, parts := range groups.AllFromFront() {
		sort.SliceStable(parts, func(i, j int) bool { return parts[i].partIndex < parts[j].partIndex })

		mp := memoGlobTarget(p, key.mesgNum)
		collection := key.mesgNum
		fieldKey := strconv.FormatInt(key.fieldNum, 10)
		if mp != nil {
			collection = mp.MessagesKey
			if f, ok := mp.Fields[uint8(key.fieldNum)]; ok && key.fieldNum >= 0 && key.fieldNum < 256 {
				fieldKey = f.Name
			}
		}

		targets := messages[collection]
		if key.parentIndex < 0 || key.parentIndex >= int64(len(targets)) {
			continue
		}

		var buf bytes.Buffer
		for _, part := range parts {
			buf.Write(part.data)
		}
		targets[key.parentIndex].Set(fieldKey, DecodeMemoGlobBytes(buf.Bytes()))
	}
}

// DecodeMemoGlobBytes decodes UTF-8 text, replacing malformed sequences.
// NUL padding is kept as written.
func DecodeMemoGlobBytes(data []byte) string {
	decoded, err := unicode.UTF8.NewDecoder().Bytes(data)
	if err != nil {
		decoded = data
	}
	return string(decoded)
}

// memoGlobTarget resolves the annotated message from a mesgNum value that
// may have been converted to its name.
func memoGlobTarget(p ProfileLookup, mesgNum string) *profile.Message {
	if n, err := strconv.ParseUint(mesgNum, 10, 16); err == nil {
		if mp, ok := p.MessageByNumber(uint16(n)); ok {
			return mp
		}
		return nil
	}
	names, ok := p.TypeEnumByName("mesgNum")
	if !ok {
		return nil
	}
	for num, name := range names {
		if name == mesgNum {
			if mp, ok := p.MessageByNumber(uint16(num)); ok {
				return mp
			}
		}
	}
	return nil
}

func memoGlobBytes(v any) []byte {
	list := asList(v)
	out := make([]byte, 0, len(list))
	for _, e := range list {
		if b, ok := toInt64(e); ok {
			out = append(out, byte(b))
		}
	}
	return out
}
