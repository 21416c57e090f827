package rfc7232

import (
	"testing"
	"time"
)

func TestParseHTTPDateIMF(t *testing.T) {
	date, err := ParseHTTPDate("Sun, 06 Nov 1994 08:49:37 GMT")
	if err != nil {
		t.Fatalf("Error parsing date %+v", err)
	}
	if date.Year() != 1994 || date.Second() != 37 {
		t.Fatalf("Date is %s", date)
	}
}

func TestParseHTTPDateRFC850(t *testing.T) {
	_, err := ParseHTTPDate("Sunday, 06-Nov-94 08:49:37 GMT")
	if err != nil {
		t.Fatalf("Error parsing date %+v", err)
	}
}

func TestParseHTTPDateAsctime(t *testing.T) {
	date, err := ParseHTTPDate("Sun Nov  6 08:49:37 1994")
	if err != nil {
		t.Fatalf("Error parsing date %+v", err)
	}
	if !date.Equal(time.Date(1994, 11, 6, 8, 49, 37, 0, time.UTC)) {
		t.Fatalf("Date is %s", date)
	}
}

func TestParseHTTPDateTZCase(t *testing.T) {
	_, err := ParseHTTPDate("Thu, 18 Aug 2050 02:01:18 gMT")
	if err != nil {
		t.Fatalf("Error parsing date %+v", err)
	}
}

func TestParseHTTPDateInvalid(t *testing.T) {
	if _, err := ParseHTTPDate("not a date"); err == nil {
		t.Fatal("Expected error")
	}
}
