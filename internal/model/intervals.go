package model

// Interval is one fixed chart aggregation window.
type Interval struct {
	Label   string
	Seconds int64
}

// ChartIntervals is the full set of supported chart resolutions, iterated in
// order. The set is closed: labels outside this table never occur.
var ChartIntervals = [12]Interval{
	{"1m", 60},
	{"3m", 3 * 60},
	{"5m", 5 * 60},
	{"10m", 10 * 60},
	{"15m", 15 * 60},
	{"30m", 30 * 60},
	{"1h", 60 * 60},
	{"2h", 2 * 60 * 60},
	{"4h", 4 * 60 * 60},
	{"6h", 6 * 60 * 60},
	{"1d", 24 * 60 * 60},
	{"1w", 7 * 24 * 60 * 60},
}

// AccumulationInterval is the fixed bucket used for pool volume and spread
// profit accumulation.
var AccumulationInterval = ChartIntervals[2] // 5m

// BucketStart floors a unix timestamp to the start of its interval bucket.
func (iv Interval) BucketStart(ts int64) int64 {
	return ts - ts%iv.Seconds
}
