package fit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinfer/fit-plugin/testutil"
)

func read(t *testing.T, data []byte, opts ...Option) *Result {
	t.Helper()
	d, err := NewDecoder(data)
	require.NoError(t, err)
	return d.Read(context.Background(), opts...)
}

func TestNewDecoderRequiresInput(t *testing.T) {
	d, err := NewDecoder(nil)
	assert.Nil(t, d)
	assert.ErrorIs(t, err, ErrMissingInput)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, int64(0), decodeErr.Pos)
}

func TestReadShortFile(t *testing.T) {
	result := read(t, fitFileShort())
	require.Empty(t, result.Errors)
	require.Len(t, result.Messages["fileIdMesgs"], 1)

	msg := result.Messages["fileIdMesgs"][0]
	assert.Equal(t, MesgNumFileID, msg.Num)
	assert.Equal(t, "fileId", msg.Name)
	assert.Equal(t, []string{"type", "manufacturer", "timeCreated", "productName"}, msg.Keys())

	v, _ := msg.Get("type")
	assert.Equal(t, "activity", v)
	v, _ = msg.Get("manufacturer")
	assert.Equal(t, "garmin", v)
	v, _ = msg.Get("timeCreated")
	assert.Equal(t, time.Date(2021, 9, 8, 1, 46, 40, 0, time.UTC), v)
	v, _ = msg.Get("productName")
	assert.Equal(t, "abcdefghi", v)
	assert.Nil(t, msg.DeveloperFields)
}

func TestReadShortFileJSON(t *testing.T) {
	result := read(t, fitFileShort(), WithConvertDateTimesToDates(false))
	require.Empty(t, result.Errors)
	msg := result.Messages["fileIdMesgs"][0]

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	want := map[string]any{
		"type":         "activity",
		"manufacturer": "garmin",
		"timeCreated":  1000000000,
		"productName":  "abcdefghi",
	}
	assert.Empty(t, testutil.Diff(want, got))
	assert.True(t, testutil.Equal(want, msg.Map()))
}

func TestReadOptions(t *testing.T) {
	t.Run("types left as numbers", func(t *testing.T) {
		result := read(t, fitFileShort(), WithConvertTypesToStrings(false))
		require.Empty(t, result.Errors)
		msg := result.Messages["fileIdMesgs"][0]
		v, _ := msg.Get("type")
		assert.Equal(t, int64(4), v)
		v, _ = msg.Get("manufacturer")
		assert.Equal(t, int64(1), v)
	})

	t.Run("date times left as seconds", func(t *testing.T) {
		result := read(t, fitFileShort(), WithConvertDateTimesToDates(false))
		require.Empty(t, result.Errors)
		v, _ := result.Messages["fileIdMesgs"][0].Get("timeCreated")
		assert.Equal(t, int64(1000000000), v)
	})

	t.Run("decoder options are defaults for each read", func(t *testing.T) {
		d, err := NewDecoder(fitFileShort(), WithConvertTypesToStrings(false))
		require.NoError(t, err)

		first := d.Read(context.Background())
		v, _ := first.Messages["fileIdMesgs"][0].Get("type")
		assert.Equal(t, int64(4), v)

		second := d.Read(context.Background(), WithConvertTypesToStrings(true))
		v, _ = second.Messages["fileIdMesgs"][0].Get("type")
		assert.Equal(t, "activity", v)
	})
}

func TestReadWrongFieldSize(t *testing.T) {
	result := read(t, fitFileShortWithWrongFieldDefSize())
	require.Empty(t, result.Errors)
	require.Len(t, result.Messages["fileIdMesgs"], 1)

	msg := result.Messages["fileIdMesgs"][0]
	assert.False(t, msg.Has("timeCreated"))
	v, _ := msg.Get("productName")
	assert.Equal(t, "abcdefghi", v)
}

func TestReadCompressedTimestamp(t *testing.T) {
	result := read(t, fitFileShortCompressedTimestamp())
	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors[0], ErrCompressedTimestamp)
	assert.Contains(t, result.Errors[0].Error(), "compressed timestamp messages are not currently supported")
	assert.Empty(t, result.Messages["fileIdMesgs"])
}

func TestReadChainedFiles(t *testing.T) {
	t.Run("two units", func(t *testing.T) {
		result := read(t, fitFileChained())
		require.Empty(t, result.Errors)
		require.Len(t, result.Messages["fileIdMesgs"], 2)

		for _, msg := range result.Messages["fileIdMesgs"] {
			v, _ := msg.Get("type")
			assert.Equal(t, "settings", v)
			v, _ = msg.Get("manufacturer")
			assert.Equal(t, "development", v)
			assert.False(t, msg.Has("timeCreated"))
			assert.False(t, msg.Has("serialNumber"))
		}
		_, ok := result.Messages["211"]
		assert.False(t, ok)
	})

	t.Run("empty first unit", func(t *testing.T) {
		result := read(t, fitFileChainedWeirdVivoki())
		require.Empty(t, result.Errors)
		assert.Len(t, result.Messages["fileIdMesgs"], 1)
	})

	t.Run("trailing garbage", func(t *testing.T) {
		data := append(fitFileShort(), 0x01, 0x02, 0x03)
		result := read(t, data)
		require.Len(t, result.Errors, 1)
		assert.ErrorIs(t, result.Errors[0], ErrNotFIT)
		assert.Len(t, result.Messages["fileIdMesgs"], 1)
	})
}

func TestReadIncludeUnknownData(t *testing.T) {
	result := read(t, fitFileChained(), WithIncludeUnknownData(true))
	require.Empty(t, result.Errors)
	require.Len(t, result.Messages["211"], 2)

	msg := result.Messages["211"][0]
	assert.Equal(t, uint16(211), msg.Num)
	assert.Equal(t, "211", msg.Name)
	assert.Equal(t, []string{"253", "3", "4", "0", "1"}, msg.Keys())
	v, _ := msg.Get("253")
	assert.Equal(t, int64(1000000000), v)
	v, _ = msg.Get("3")
	assert.Equal(t, int64(50), v)
	v, _ = msg.Get("1")
	assert.Equal(t, int64(46), v)
}

func TestReadUnknownFieldOfKnownMessage(t *testing.T) {
	data := (&fitBuilder{}).
		definition(0, MesgNumFileID,
			fieldDef{0, 1, BaseTypeEnum},
			fieldDef{200, 2, BaseTypeUint16}).
		data(0, []byte{4}, le16(1234)).
		bytes()

	result := read(t, data)
	require.Empty(t, result.Errors)
	assert.False(t, result.Messages["fileIdMesgs"][0].Has("200"))

	result = read(t, data, WithIncludeUnknownData(true))
	require.Empty(t, result.Errors)
	v, ok := result.Messages["fileIdMesgs"][0].Get("200")
	require.True(t, ok)
	assert.Equal(t, int64(1234), v)
}

func TestReadDevDataWithoutFieldDescription(t *testing.T) {
	result := read(t, fitFileDevDataWithoutFieldDescription())
	require.Empty(t, result.Errors)
	assert.Len(t, result.Messages["activityMesgs"], 1)
	require.Len(t, result.Messages["recordMesgs"], 4)
	for _, msg := range result.Messages["recordMesgs"] {
		assert.Nil(t, msg.DeveloperFields)
	}
}

func TestReadDeveloperFields(t *testing.T) {
	data := (&fitBuilder{}).
		definition(0, MesgNumDeveloperDataID,
			fieldDef{3, 1, BaseTypeUint8}).
		data(0, []byte{0}).
		definition(1, MesgNumFieldDescription,
			fieldDef{0, 1, BaseTypeUint8},
			fieldDef{1, 1, BaseTypeUint8},
			fieldDef{2, 1, BaseTypeUint8},
			fieldDef{3, 10, BaseTypeString}).
		data(1, []byte{0}, []byte{0}, []byte{byte(BaseTypeUint8)}, cstr("doughnuts", 10)).
		data(1, []byte{0}, []byte{1}, []byte{byte(BaseTypeUint16)}, cstr("hr", 10)).
		devDefinition(2, MesgNumRecord,
			[]fieldDef{{3, 1, BaseTypeUint8}},
			[]devFieldDef{{0, 1, 0}, {1, 2, 0}, {9, 4, 0}}).
		data(2, []byte{150}, []byte{7}, le16(300), le32(99)).
		bytes()

	result := read(t, data)
	require.Empty(t, result.Errors)

	descriptions := result.Messages["fieldDescriptionMesgs"]
	require.Len(t, descriptions, 2)
	key, _ := descriptions[0].Get("key")
	assert.Equal(t, int64(0), key)
	key, _ = descriptions[1].Get("key")
	assert.Equal(t, int64(1), key)
	name, _ := descriptions[0].Get("fieldName")
	assert.Equal(t, "doughnuts", name)
	baseType, _ := descriptions[0].Get("fitBaseTypeId")
	assert.Equal(t, int64(BaseTypeUint8), baseType)

	require.Len(t, result.Messages["recordMesgs"], 1)
	record := result.Messages["recordMesgs"][0]
	hr, _ := record.Get("heartRate")
	assert.Equal(t, int64(150), hr)
	assert.Equal(t, map[int]any{0: int64(7), 1: int64(300)}, record.DeveloperFields)
}

func TestReadMonitoringComponents(t *testing.T) {
	result := read(t, fitFileMonitoring())
	require.Empty(t, result.Errors)
	mesgs := result.Messages["monitoringMesgs"]
	require.Len(t, mesgs, 4)

	expected := []struct {
		activityType any
		intensity    any
	}{
		{int64(1), int64(3)},
		{int64(6), int64(0)},
		{int64(30), int64(0)},
		{nil, nil},
	}
	for i, want := range expected {
		msg := mesgs[i]
		if want.activityType == nil {
			assert.False(t, msg.Has("activityType"), "message %d", i)
			assert.False(t, msg.Has("intensity"), "message %d", i)
			continue
		}
		v, _ := msg.Get("activityType")
		assert.Equal(t, want.activityType, v, "message %d", i)
		v, _ = msg.Get("intensity")
		assert.Equal(t, want.intensity, v, "message %d", i)
	}

	cycles, _ := mesgs[0].Get("cycles")
	assert.True(t, testutil.Equal(10.0, cycles), "cycles = %v", cycles)
}

func TestReadComponentsDisabled(t *testing.T) {
	result := read(t, fitFileMonitoring(), WithExpandComponents(false), WithMergeHeartRates(false))
	require.Empty(t, result.Errors)
	for _, msg := range result.Messages["monitoringMesgs"] {
		assert.False(t, msg.Has("activityType"))
		assert.False(t, msg.Has("intensity"))
	}
}

func TestReadEnhancedFields(t *testing.T) {
	data := (&fitBuilder{}).
		definition(0, MesgNumRecord,
			fieldDef{253, 4, BaseTypeUint32},
			fieldDef{2, 2, BaseTypeUint16},
			fieldDef{6, 2, BaseTypeUint16}).
		data(0, le32(1000), le16(2600), le16(3000)).
		bytes()

	result := read(t, data)
	require.Empty(t, result.Errors)
	record := result.Messages["recordMesgs"][0]

	altitude, _ := record.Get("altitude")
	enhancedAltitude, _ := record.Get("enhancedAltitude")
	assert.True(t, testutil.Equal(20.0, altitude), "altitude = %v", altitude)
	assert.Equal(t, altitude, enhancedAltitude)

	speed, _ := record.Get("speed")
	enhancedSpeed, _ := record.Get("enhancedSpeed")
	assert.True(t, testutil.Equal(3.0, speed), "speed = %v", speed)
	assert.Equal(t, speed, enhancedSpeed)
}

func TestReadAccumulatedComponents(t *testing.T) {
	b := (&fitBuilder{}).
		definition(0, MesgNumRecord, fieldDef{19, 4, BaseTypeUint32}).
		data(0, le32(250)).
		definition(1, MesgNumRecord, fieldDef{18, 1, BaseTypeUint8})
	for _, cycles := range []byte{254, 255, 0, 3} {
		b.data(1, []byte{cycles})
	}

	result := read(t, b.bytes())
	require.Empty(t, result.Errors)
	records := result.Messages["recordMesgs"]
	require.Len(t, records, 5)

	var totals []any
	for _, r := range records[1:] {
		v, _ := r.Get("totalCycles")
		totals = append(totals, v)
	}
	assert.Equal(t, []any{int64(254), int64(255), int64(256), int64(259)}, totals)
}

func TestReadSubFields(t *testing.T) {
	event := func(event byte, data uint32) []byte {
		return (&fitBuilder{}).
			definition(0, 21,
				fieldDef{0, 1, BaseTypeEnum},
				fieldDef{1, 1, BaseTypeEnum},
				fieldDef{3, 4, BaseTypeUint32}).
			data(0, []byte{event}, []byte{3}, le32(data)).
			bytes()
	}

	t.Run("gear change components", func(t *testing.T) {
		result := read(t, event(42, 385815814))
		require.Empty(t, result.Errors)
		msg := result.Messages["eventMesgs"][0]

		want := map[string]any{
			"event":          "frontGearChange",
			"eventType":      "marker",
			"data":           int64(385815814),
			"gearChangeData": int64(385815814),
			"rearGearNum":    int64(6),
			"rearGear":       int64(21),
			"frontGearNum":   int64(255),
			"frontGear":      int64(22),
		}
		assert.Equal(t, want, msg.Map())
	})

	t.Run("disabled", func(t *testing.T) {
		result := read(t, event(42, 385815814), WithExpandSubFields(false))
		require.Empty(t, result.Errors)
		msg := result.Messages["eventMesgs"][0]
		assert.False(t, msg.Has("gearChangeData"))
		assert.False(t, msg.Has("rearGearNum"))
	})

	t.Run("types converted to strings", func(t *testing.T) {
		result := read(t, event(44, 1))
		require.Empty(t, result.Errors)
		v, _ := result.Messages["eventMesgs"][0].Get("riderPosition")
		assert.Equal(t, "standing", v)
	})

	t.Run("scale applied", func(t *testing.T) {
		result := read(t, event(11, 3700))
		require.Empty(t, result.Errors)
		v, _ := result.Messages["eventMesgs"][0].Get("batteryLevel")
		assert.True(t, testutil.Equal(3.7, v), "batteryLevel = %v", v)
	})
}

func TestReadWorkoutSubFieldScale(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"little endian", workout800mRepeatsLittleEndian()},
		{"big endian", workout800mRepeatsBigEndian()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := read(t, tt.data)
			require.Empty(t, result.Errors)

			var distances []any
			for _, step := range result.Messages["workoutStepMesgs"] {
				if v, ok := step.Get("durationDistance"); ok {
					distances = append(distances, v)
				}
			}
			assert.True(t, testutil.Equal([]any{4000.0, 800.0, 200.0, 1000.0}, distances), "durationDistance = %v", distances)

			first := result.Messages["workoutStepMesgs"][0]
			v, _ := first.Get("durationValue")
			assert.Equal(t, int64(400000), v)
			v, _ = first.Get("durationType")
			assert.Equal(t, "distance", v)

			workout := result.Messages["workoutMesgs"]
			require.Len(t, workout, 1)
			v, _ = workout[0].Get("wktName")
			assert.Equal(t, "Running 800m Repeats", v)
		})
	}
}

func TestReadFaults(t *testing.T) {
	t.Run("not a FIT file", func(t *testing.T) {
		result := read(t, []byte("definitely not a FIT file"))
		require.Len(t, result.Errors, 1)
		assert.ErrorIs(t, result.Errors[0], ErrNotFIT)
		assert.Empty(t, result.Messages)
	})

	t.Run("CRC mismatch", func(t *testing.T) {
		data := fitFileShort()
		data[len(data)-1] ^= 0xFF
		result := read(t, data)
		require.Len(t, result.Errors, 1)
		assert.ErrorIs(t, result.Errors[0], ErrCRC)
		assert.Len(t, result.Messages["fileIdMesgs"], 1)
	})

	t.Run("truncated", func(t *testing.T) {
		result := read(t, fitFileShort()[:40])
		require.Len(t, result.Errors, 1)
		assert.ErrorIs(t, result.Errors[0], ErrEndOfStream)
	})

	t.Run("unknown base type", func(t *testing.T) {
		data := (&fitBuilder{}).
			definition(0, MesgNumFileID, fieldDef{0, 1, BaseType(0x55)}).
			bytes()
		result := read(t, data)
		require.Len(t, result.Errors, 1)
		assert.ErrorIs(t, result.Errors[0], ErrUnknownBaseType)
	})

	t.Run("missing definition", func(t *testing.T) {
		data := (&fitBuilder{}).
			definition(0, MesgNumFileID, fieldDef{0, 1, BaseTypeEnum}).
			data(3, []byte{4}).
			bytes()
		result := read(t, data)
		require.Len(t, result.Errors, 1)
		assert.ErrorIs(t, result.Errors[0], ErrMissingDefinition)

		var decodeErr *DecodeError
		require.ErrorAs(t, result.Errors[0], &decodeErr)
		assert.Positive(t, decodeErr.Pos)
	})

	t.Run("definitions do not cross units", func(t *testing.T) {
		first := (&fitBuilder{}).
			definition(0, MesgNumFileID, fieldDef{0, 1, BaseTypeEnum}).
			data(0, []byte{4}).
			bytes()
		second := (&fitBuilder{}).data(0, []byte{4}).bytes()
		result := read(t, append(first, second...))
		require.Len(t, result.Errors, 1)
		assert.ErrorIs(t, result.Errors[0], ErrMissingDefinition)
		assert.Len(t, result.Messages["fileIdMesgs"], 1)
	})
}

func TestReadInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"scale and offset disabled", []Option{WithApplyScaleAndOffset(false)}},
		{"components disabled", []Option{WithExpandComponents(false)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := read(t, fitFileShort(), tt.opts...)
			require.Len(t, result.Errors, 1)
			assert.ErrorIs(t, result.Errors[0], ErrInvalidOptions)
			assert.Empty(t, result.Messages)

			var decodeErr *DecodeError
			require.ErrorAs(t, result.Errors[0], &decodeErr)
			assert.Equal(t, int64(0), decodeErr.Pos)
		})
	}

	result := read(t, fitFileShort(), WithApplyScaleAndOffset(false), WithMergeHeartRates(false))
	assert.Empty(t, result.Errors)
}

func TestReadMesgListener(t *testing.T) {
	t.Run("called for every message", func(t *testing.T) {
		var nums []uint16
		result := read(t, fitFileChained(), WithMesgListener(func(mesgNum uint16, msg *Message) error {
			nums = append(nums, mesgNum)
			assert.Equal(t, "fileId", msg.Name)
			return nil
		}))
		require.Empty(t, result.Errors)
		assert.Equal(t, []uint16{MesgNumFileID, MesgNumFileID}, nums)
	})

	t.Run("error aborts the read", func(t *testing.T) {
		errStop := errors.New("Message Listener was Called!!!")
		calls := 0
		result := read(t, fitFileChained(), WithMesgListener(func(uint16, *Message) error {
			calls++
			return errStop
		}))
		require.Len(t, result.Errors, 1)
		assert.Same(t, errStop, result.Errors[0])
		assert.Equal(t, "Message Listener was Called!!!", result.Errors[0].Error())
		assert.Equal(t, 1, calls)
		assert.Len(t, result.Messages["fileIdMesgs"], 1)
	})
}

func TestReadCancelled(t *testing.T) {
	d, err := NewDecoder(fitFileShort())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := d.Read(ctx)
	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors[0], context.Canceled)
	assert.Equal(t, result.Errors[0], result.Err())
}

func TestReadConcurrent(t *testing.T) {
	d, err := NewDecoder(fitFileChained())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := d.Read(context.Background())
			assert.NoError(t, result.Err())
			assert.Len(t, result.Messages["fileIdMesgs"], 2)
		}()
	}
	wg.Wait()
}

func TestDecoderIntegrity(t *testing.T) {
	d, err := NewDecoder(fitFileShort())
	require.NoError(t, err)
	assert.True(t, d.IsFIT())
	assert.True(t, d.CheckIntegrity())

	corrupt := fitFileShort()
	corrupt[20] ^= 0x01
	d, err = NewDecoder(corrupt)
	require.NoError(t, err)
	assert.True(t, d.IsFIT())
	assert.False(t, d.CheckIntegrity())
}
