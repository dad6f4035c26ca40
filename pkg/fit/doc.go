// Package fit decodes Garmin FIT (Flexible and Interoperable Data Transfer)
// activity files into named, typed messages, and encodes messages back.
//
// # Overview
//
// A FIT file is a header, a sequence of definition and data records, and a
// trailing CRC. Several files may be chained back to back in one buffer.
// The decoder walks every file, resolves each data record against the
// profile database and applies the configured transformations:
//
//   - Sub-field expansion (a field reinterpreted by a reference field)
//   - Component expansion, including accumulated rollover counters
//   - Scale and offset
//   - Enum to string and dateTime to time.Time conversion
//   - Heart rate merging from hr messages into records
//   - Memo glob reassembly
//
// # Quick Start
//
//	decoder, err := fit.NewDecoder(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !decoder.CheckIntegrity() {
//	    log.Println("file failed integrity check")
//	}
//	result := decoder.Read(ctx, fit.WithIncludeUnknownData(true))
//	for _, rec := range result.Messages["recordMesgs"] {
//	    hr, _ := rec.Get("heartRate")
//	    fmt.Println(hr)
//	}
//
// Read never panics on malformed input. Decoding stops at the first fault and
// the messages decoded so far are returned alongside the error.
//
// # Encoding
//
// An Encoder buffers messages and frames them on Close:
//
//	enc, err := fit.NewEncoder()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = enc.OnMesg(fit.MesgNumRecord, map[string]any{"heartRate": 150, "altitude": 116.4})
//	data, err := enc.Close()
//
// Values are given in the units the decoder produces; enum names and
// time.Time values are converted back to raw.
//
// # Configuration
//
// Options may be given as functional options or loaded from YAML with
// LoadConfig:
//
//	expand_sub_fields: true
//	include_unknown_data: false
//	decode_memo_globs: true
package fit
