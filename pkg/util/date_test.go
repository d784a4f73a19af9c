package util

import (
    "strconv"
    "testing"
    "time"
)

func TestParseTimeRFC3339(t *testing.T) {
    s := "2024-10-10T10:10:10Z"
    got, ok := ParseTime(s)
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.UTC().Format(time.RFC3339) != s {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestParseTimeUnix(t *testing.T) {
    ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
    got, ok := ParseTime(strconv.FormatInt(ts, 10))
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.Unix() != ts {
        t.Fatalf("unexpected unix %v", got.Unix())
    }
}

func TestParseTimeDefault(t *testing.T) {
    def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
    got := ParseTimeDefault("", def)
    if !got.Equal(def) {
        t.Fatalf("expected default")
    }
}

func TestAlignPeriodMonth(t *testing.T) {
    in := time.Date(2024, 10, 17, 13, 45, 0, 0, time.UTC)
    got := AlignPeriod(in, "month")
    if !got.Equal(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)) {
        t.Fatalf("unexpected month alignment %v", got)
    }
}

func TestAlignPeriodQuarter(t *testing.T) {
    in := time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC)
    got := AlignPeriod(in, "quarter")
    if !got.Equal(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)) {
        t.Fatalf("unexpected quarter alignment %v", got)
    }
}

func TestAlignPeriodYear(t *testing.T) {
    in := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
    got := AlignPeriod(in, "year")
    if !got.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
        t.Fatalf("unexpected year alignment %v", got)
    }
}
