package stats

import (
	"bufio"
	"io"
	"math"
	"strconv"
)

// RoundUp rounds x toward positive infinity to one decimal place as
// ceil(x*10)/10, negative values included. A zero result is always +0 so it
// never prints as -0.0.
func RoundUp(x float64) float64 {
	k := math.Ceil(x * 10)
	if k == 0 {
		return 0
	}
	return k / 10
}

// AppendRow appends "key=min/mean/max\n" to dst.
func AppendRow(dst []byte, key string, agg Aggregate) []byte {
	dst = append(dst, key...)
	dst = append(dst, '=')
	dst = strconv.AppendFloat(dst, RoundUp(agg.Min), 'f', 1, 64)
	dst = append(dst, '/')
	dst = strconv.AppendFloat(dst, RoundUp(agg.Mean()), 'f', 1, 64)
	dst = append(dst, '/')
	dst = strconv.AppendFloat(dst, RoundUp(agg.Max), 'f', 1, 64)
	return append(dst, endLine)
}

// WriteTable writes one row per key in ascending key order.
func WriteTable(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	var row []byte
	var err error
	t.Each(func(key string, agg Aggregate) {
		if err != nil {
			return
		}
		row = AppendRow(row[:0], key, agg)
		_, err = bw.Write(row)
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}
