package fitkit_test

import (
	"context"
	"fmt"
	"log"

	"github.com/twinfer/fit-plugin/pkg/fit"
	"github.com/twinfer/fit-plugin/pkg/fitkit"
	"github.com/twinfer/fit-plugin/testutil"
)

// Example decodes a file and prints the heart rate of every record.
func Example() {
	result, err := fitkit.Decode(context.Background(), testutil.RecordsFIT())
	if err != nil {
		log.Fatal(err)
	}

	for _, record := range result.Messages["recordMesgs"] {
		hr, _ := record.Get("heartRate")
		fmt.Println(hr)
	}
	// Output:
	// 120
	// 150
	// 170
}

// Example_withFilter keeps only the records above a threshold.
func Example_withFilter() {
	decoder := fitkit.NewDecoder(
		fitkit.WithFilter("name == 'record' && mesg.heartRate > 140"),
		fitkit.WithReadOptions(fit.WithConvertDateTimesToDates(false)),
	)

	result, err := decoder.Decode(context.Background(), testutil.RecordsFIT())
	if err != nil {
		log.Fatal(err)
	}

	for _, record := range result.Messages["recordMesgs"] {
		ts, _ := record.Get("timestamp")
		hr, _ := record.Get("heartRate")
		fmt.Println(ts, hr)
	}
	// Output:
	// 1000000001 150
	// 1000000002 170
}

// ExampleCheck inspects a file without decoding its messages.
func ExampleCheck() {
	report := fitkit.Check(testutil.ShortActivityFIT())
	fmt.Println(report.IsFIT, report.Integrity, len(report.Headers))
	// Output: true true 1
}
