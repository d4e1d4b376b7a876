package percentile

import (
	"fmt"
	"math/rand/v2"
	"testing"
)

var benchPercentiles = []int{10, 50, 90}

func BenchmarkInsert(tb *testing.B) {
	for _, p := range benchPercentiles {
		tb.Run(fmt.Sprintf("p%d", p), func(tb *testing.B) {
			tb.ReportAllocs()

			r := rand.New(rand.NewChaCha8([32]byte{}))

			tr, err := New[int64](p)
			if err != nil {
				tb.Fatal(err)
			}

			for i := 0; i < tb.N; i++ {
				_ = tr.Insert(r.Int64())
			}

			if _, err = tr.Percentile(); err != nil {
				tb.Fatal(err)
			}

			tb.ReportMetric(float64(tr.Buckets()), "buckets")
		})
	}
}

func BenchmarkInsertQuery(tb *testing.B) {
	for _, p := range benchPercentiles {
		tb.Run(fmt.Sprintf("p%d", p), func(tb *testing.B) {
			tb.ReportAllocs()

			r := rand.New(rand.NewChaCha8([32]byte{}))

			tr, err := New[int64](p)
			if err != nil {
				tb.Fatal(err)
			}

			for i := 0; i < tb.N; i++ {
				_ = tr.Insert(r.Int64())

				if _, err = tr.Percentile(); err != nil {
					tb.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkMaxBucketLen(tb *testing.B) {
	for _, m := range []int{16, 64, 256, 1024} {
		tb.Run(fmt.Sprintf("M%d", m), func(tb *testing.B) {
			tb.ReportAllocs()

			r := rand.New(rand.NewChaCha8([32]byte{}))

			tr, err := New[int64](90, MaxBucketLen(m))
			if err != nil {
				tb.Fatal(err)
			}

			for i := 0; i < tb.N; i++ {
				_ = tr.Insert(r.Int64())

				if _, err = tr.Percentile(); err != nil {
					tb.Fatal(err)
				}
			}

			tb.ReportMetric(float64(tr.Buckets()), "buckets")
		})
	}
}

func BenchmarkDistributions(tb *testing.B) {
	r := rand.New(rand.NewChaCha8([32]byte{}))

	for _, bc := range []struct {
		name string
		next func(i int) int64
	}{
		{"uniform", func(int) int64 { return r.Int64() }},
		{"narrow", func(int) int64 { return r.Int64N(100) }},
		{"ascending", func(i int) int64 { return int64(i) }},
		{"descending", func(i int) int64 { return -int64(i) }},
	} {
		tb.Run(bc.name, func(tb *testing.B) {
			tb.ReportAllocs()

			tr, err := New[int64](90)
			if err != nil {
				tb.Fatal(err)
			}

			for i := 0; i < tb.N; i++ {
				_ = tr.Insert(bc.next(i))

				if _, err = tr.Percentile(); err != nil {
					tb.Fatal(err)
				}
			}

			tb.ReportMetric(float64(tr.Buckets()), "buckets")
		})
	}
}
