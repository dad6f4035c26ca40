package fit

type accumulatorKey struct {
	mesgNum  uint16
	fieldNum uint8
}

type accumulatedField struct {
	lastValue        uint64
	accumulatedValue uint64
}

// Accumulator reconstructs wide counters from narrow rolling samples,
// keyed by message and field number.
type Accumulator struct {
	fields map[accumulatorKey]*accumulatedField
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{fields: make(map[accumulatorKey]*accumulatedField)}
}

// CreateAccumulatedField records value as the latest raw sample for the key.
// The first call also seeds the running total; later calls keep it.
func (a *Accumulator) CreateAccumulatedField(mesgNum uint16, fieldNum uint8, value uint64) {
	key := accumulatorKey{mesgNum, fieldNum}
	if f, ok := a.fields[key]; ok {
		f.lastValue = value
		return
	}
	a.fields[key] = &accumulatedField{lastValue: value, accumulatedValue: value}
}

// HasField reports whether state exists for the key.
func (a *Accumulator) HasField(mesgNum uint16, fieldNum uint8) bool {
	_, ok := a.fields[accumulatorKey{mesgNum, fieldNum}]
	return ok
}

// Accumulate folds value, a bits wide sample, into the running total and
// returns it. Without prior state the value is returned unchanged and ok is false.
func (a *Accumulator) Accumulate(mesgNum uint16, fieldNum uint8, value uint64, bits int) (uint64, bool) {
	f, ok := a.fields[accumulatorKey{mesgNum, fieldNum}]
	if !ok {
		return value, false
	}
	return f.accumulate(value, bits), true
}

func (f *accumulatedField) accumulate(value uint64, bits int) uint64 {
	mask := ^uint64(0)
	if bits > 0 && bits < 64 {
		mask = (uint64(1) << bits) - 1
	}
	f.accumulatedValue += (value - f.lastValue) & mask
	f.lastValue = value
	return f.accumulatedValue
}
