// Package fitkit provides a high-level API for decoding FIT activity files.
//
// It wraps package fit with profile file caching, CEL message filters,
// JSON rendering and Prometheus metrics.
//
// # Quick Start
//
// The simplest way to decode a file is using the global functions:
//
//	result, err := fitkit.Decode(ctx, data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(result.Messages["recordMesgs"]))
//
// # Filters
//
// A filter is a CEL expression evaluated once per message. The message is
// kept when it yields true:
//
//	decoder := fitkit.NewDecoder(
//	    fitkit.WithFilter(`name == "record" && has(mesg.heartRate) && mesg.heartRate > 150`),
//	)
//
// Besides the standard CEL library the expression may use
// semicirclesToDegrees, degreesToSemicircles, fitDateTime, enumName, mean,
// round, min, max, bitAnd and bitTest.
//
// # Metrics
//
//	decoder := fitkit.NewDecoder(fitkit.WithMetrics(fitkit.NewMetrics(prometheus.DefaultRegisterer)))
package fitkit
