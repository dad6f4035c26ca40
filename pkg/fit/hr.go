package fit

import (
	"math"
	"time"
)

// HeartRateSample is one beat-to-beat heart rate reading expanded from hr messages.
type HeartRateSample struct {
	// Timestamp is in seconds since the FIT epoch, with fractional part.
	Timestamp float64 `json:"timestamp"`
	HeartRate int64   `json:"heartRate"`
}

// ExpandHeartRates turns hr messages into timestamped samples. Event
// timestamps are anchored on the most recent message that carries a
// timestamp; messages before the first anchor are ignored.
func ExpandHeartRates(hrMesgs []*Message) []HeartRateSample {
	var (
		samples        []HeartRateSample
		anchor         float64
		anchorEvent    float64
		haveAnchor     bool
		anchorEventSet bool
	)

	for _, mesg := range hrMesgs {
		if ts, ok := mesg.Get("timestamp"); ok {
			if secs, ok := fitSeconds(ts); ok {
				anchor = secs
				if frac, ok := mesg.Get("fractionalTimestamp"); ok {
					if f, ok := toFloat64(frac); ok {
						anchor += f
					}
				}
				haveAnchor = true
				anchorEventSet = false
			}
		}
		if !haveAnchor {
			continue
		}

		eventValue, _ := mesg.Get("eventTimestamp")
		bpmValue, _ := mesg.Get("filteredBpm")
		events := asList(eventValue)
		bpms := asList(bpmValue)

		n := min(len(events), len(bpms))
		for j := 0; j < n; j++ {
			event, ok := toFloat64(events[j])
			if !ok {
				continue
			}
			bpm, ok := toInt64(bpms[j])
			if !ok {
				continue
			}
			if !anchorEventSet {
				anchorEvent = event
				anchorEventSet = true
			}
			samples = append(samples, HeartRateSample{
				Timestamp: anchor + event - anchorEvent,
				HeartRate: bpm,
			})
		}
	}
	return samples
}

// MergeHeartRates sets heartRate on every record to the rounded mean of the
// samples that fall after the previous record and at or before this one.
// Records without samples in their window are left untouched.
func MergeHeartRates(hrMesgs, recordMesgs []*Message) {
	if len(hrMesgs) == 0 || len(recordMesgs) == 0 {
		return
	}
	samples := ExpandHeartRates(hrMesgs)
	if len(samples) == 0 {
		return
	}

	next := 0
	for _, record := range recordMesgs {
		ts, ok := record.Get("timestamp")
		if !ok {
			continue
		}
		end, ok := fitSeconds(ts)
		if !ok {
			continue
		}

		var sum, count int64
		for next < len(samples) && samples[next].Timestamp <= end {
			sum += samples[next].HeartRate
			count++
			next++
		}
		if count > 0 {
			record.Set("heartRate", int64(math.Round(float64(sum)/float64(count))))
		}
	}
}

// fitSeconds reads a timestamp that is either a converted date or raw FIT seconds.
func fitSeconds(v any) (float64, bool) {
	if t, ok := v.(time.Time); ok {
		return float64(t.UnixMilli()-FITEpochMs) / 1000, true
	}
	return toFloat64(v)
}

func asList(v any) []any {
	switch n := v.(type) {
	case nil:
		return nil
	case []any:
		return n
	}
	return []any{v}
}
